package driven

import "context"

// EmbeddingService converts text into a unit-normalised fixed-dimension
// vector. The same configuration (model, dimension, normalisation) must be
// used for ingestion and search against the same index, otherwise
// nearest-neighbour distances are meaningless.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small with a dimension override)
//   - Ollama (all-minilm, nomic-embed-text)
//   - Local models via OpenAI-compatible inference servers
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (384 in the default
	// configuration). This must match the vector index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
