package driven

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// ChunkStore persists chunk text and provenance for result hydration.
// Backed by SQLite. The store is the authority the query engine checks
// search hits against: a hit whose chunk id is absent here is a fusion
// inconsistency, not a silently droppable row.
type ChunkStore interface {
	// SaveChunks stores a batch of chunks. Saving an existing id
	// overwrites it.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetChunk retrieves a chunk by id. Returns domain.ErrNotFound if
	// the id is unknown.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every chunk. Used only for explicit rebuilds.
	DeleteAll(ctx context.Context) error

	// Close releases resources.
	Close() error
}
