package embedding

import "context"

// Embedder turns text into dense vectors. GetEmbedding is tuned for
// queries, BatchEmbedding for passages being ingested.
type Embedder interface {
	GetEmbedding(ctx context.Context, query string) ([]float32, error)
	BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
