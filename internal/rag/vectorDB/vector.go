package vectorDB

import (
	"context"

	"github.com/avolpe/manualchat/internal/domain/manualModel"
)

// DataProcessor is the contract against the category-partitioned similarity
// store. Each category is an independent namespace: passages added under one
// category are never visible to a search of another. Search drops every hit
// below the similarity threshold before returning - callers never see
// sub-threshold noise, and zero results is a valid outcome, not an error.
type DataProcessor interface {
	EnsureCategory(ctx context.Context, category string) error
	UpsertPassages(ctx context.Context, category string, passages []manualModel.IndexedPassage, vectors [][]float32) error
	Search(ctx context.Context, category string, vector []float32, limit uint64, threshold float64) ([]manualModel.RetrievalResult, error)
	DeleteCategory(ctx context.Context, category string) error
	DeleteManual(ctx context.Context, category string, manualID string) error

	// answer cache, keyed by query embedding
	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error
}

// DistanceToSimilarity converts a cosine distance in [0,2] to a similarity
// in [0,1]. Qdrant's cosine score already is a similarity so its gateway
// does not need this, but the contract for distance-metric stores is
// similarity = 1 - distance/2.
func DistanceToSimilarity(distance float64) float64 {
	s := 1.0 - distance/2.0
	if s < 0 {
		return 0
	}
	return s
}
