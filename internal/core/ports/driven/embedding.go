package driven

import "context"

// EmbeddingService generates dense vector embeddings from text.
//
// Implementations may include:
//   - Ollama (nomic-embed-text, all-minilm)
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	// This is more efficient than calling Embed in a loop for large batches.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g., 384, 768, 1536).
	// This is determined by the model and must match the collection schema.
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request. Used at startup before committing to ingestion.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// SparseEncoder maps text to a sparse term-weight vector. The scheme
// is deterministic and versioned: it must be identical at index and
// query time, or recall degrades silently. A version change requires a
// full reindex.
type SparseEncoder interface {
	// Encode returns term id to weight. Weights are strictly positive;
	// the result may be empty.
	Encode(text string) map[uint32]float32

	// Version returns the tokenisation/weighting scheme version.
	Version() string
}
