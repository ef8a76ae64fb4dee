// Package embeddings provides vector embedding providers for chunk indexing
// and query retrieval.
package embeddings

import "context"

// Provider turns text into embedding vectors.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
