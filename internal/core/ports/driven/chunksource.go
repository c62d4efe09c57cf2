package driven

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// ChunkSource yields a lazy sequence of text chunks with provenance
// metadata from raw documents. Implementations must produce chunks in
// a stable order and tag each with its originating file path.
//
// Both channels are closed when the source is exhausted. A value on
// the error channel terminates the sequence.
type ChunkSource interface {
	// Chunks starts producing chunks. The returned channels are owned
	// by the source and closed by it.
	Chunks(ctx context.Context) (<-chan domain.Chunk, <-chan error)
}
