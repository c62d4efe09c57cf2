package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidQuery indicates malformed query input. This is a
	// caller bug: it is never retried and propagates as a hard
	// failure rather than degrading to a refusal.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrRetrievalUnavailable indicates the vector store backend is
	// unreachable. The caller may retry once with backoff; afterwards
	// it degrades to an empty context, never a fabricated answer.
	ErrRetrievalUnavailable = errors.New("retrieval backend unavailable")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrCollectionMissing indicates a query was issued against a
	// collection that has not been built.
	ErrCollectionMissing = errors.New("collection does not exist")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGeneratorUnavailable indicates the generation model is not
	// configured.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
)

// IngestionError reports a failed batch write during index
// construction. The build is aborted and the collection is left as-is;
// there is no automatic rollback. Resuming a partial build requires an
// explicit rebuild.
type IngestionError struct {
	// Batch is the zero-based index of the first failed batch.
	Batch int

	// Err is the underlying write failure.
	Err error
}

// Error implements the error interface.
func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at batch %d: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying error.
func (e *IngestionError) Unwrap() error {
	return e.Err
}

// FusionInconsistencyError reports a chunk id returned by the dense or
// sparse search that is absent from the text store. This is defensive:
// it is surfaced to the caller, never silently dropped.
type FusionInconsistencyError struct {
	// ChunkID is the orphaned id.
	ChunkID string
}

// Error implements the error interface.
func (e *FusionInconsistencyError) Error() string {
	return fmt.Sprintf("fusion inconsistency: chunk %s missing from text store", e.ChunkID)
}
