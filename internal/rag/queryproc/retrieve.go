package queryproc

import (
	"context"
	"sort"

	"github.com/avolpe/manualchat/internal/config"
	"github.com/avolpe/manualchat/internal/domain/manualModel"
	"github.com/avolpe/manualchat/internal/rag/vectorDB"
)

// Retrieve searches the vector store for passages matching the query
// vector. A known category restricts the search to that partition;
// anything else fans out over every partition and merges by similarity,
// so the caller sees one ranked candidate list either way. A partition
// failing during fan-out is skipped, not fatal - the other categories can
// still answer.
func Retrieve(ctx context.Context, db vectorDB.DataProcessor, vector []float32, category string) ([]manualModel.RetrievalResult, error) {
	if config.IsValidCategory(category) {
		return db.Search(ctx, category, vector, config.TopKChunks, config.SimilarityThreshold)
	}

	var merged []manualModel.RetrievalResult
	var lastErr error
	failed := 0
	for _, cat := range config.Categories {
		hits, err := db.Search(ctx, cat, vector, config.TopKChunks, config.SimilarityThreshold)
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		merged = append(merged, hits...)
	}
	if failed == len(config.Categories) {
		return nil, lastErr
	}

	sort.SliceStable(merged, func(a, b int) bool {
		return merged[a].Similarity > merged[b].Similarity
	})
	if len(merged) > config.TopKChunks {
		merged = merged[:config.TopKChunks]
	}
	return merged, nil
}
