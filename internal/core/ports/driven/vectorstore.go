package driven

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// DistanceMetric declares how dense similarity is computed for a
// collection.
type DistanceMetric string

// Supported distance metrics.
const (
	// DistanceCosine is the default metric for normalised text
	// embeddings.
	DistanceCosine DistanceMetric = "cosine"

	// DistanceDot is the inner-product metric.
	DistanceDot DistanceMetric = "dot"
)

// CollectionSchema declares the shape of a collection.
type CollectionSchema struct {
	// Name is the collection name.
	Name string

	// Dimensions is the dense vector size, constant across all entries.
	Dimensions int

	// Metric is the dense distance metric.
	Metric DistanceMetric

	// SparseVersion records the sparse encoder scheme version used at
	// ingestion time.
	SparseVersion string
}

// VectorHit is one similarity search result.
type VectorHit struct {
	// ChunkID is the matched entry id.
	ChunkID string

	// Score is the backend similarity score. Only the relative order
	// matters to fusion; absolute values are backend-specific.
	Score float64
}

// VectorStore is the storage collaborator boundary. It persists
// dual-represented index entries and answers independent dense and
// sparse top-N queries. Entries are immutable once written; an update
// is a delete plus reinsert.
//
// Concurrent queries against a populated collection are safe.
// Concurrent ingestion runs against the same collection are not and
// must be serialised by the caller.
type VectorStore interface {
	// CollectionExists reports whether the collection exists.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// Count returns the number of entries in the collection.
	Count(ctx context.Context, name string) (int, error)

	// CreateCollection creates a collection with the declared schema.
	CreateCollection(ctx context.Context, schema CollectionSchema) error

	// DropCollection removes a collection and all its entries. Used
	// only for explicit rebuilds.
	DropCollection(ctx context.Context, name string) error

	// Upsert writes a batch of entries.
	Upsert(ctx context.Context, collection string, entries []domain.IndexEntry) error

	// DenseSearch returns the top-n entries by dense similarity.
	DenseSearch(ctx context.Context, collection string, vector []float32, n int) ([]VectorHit, error)

	// SparseSearch returns the top-n entries by sparse similarity.
	SparseSearch(ctx context.Context, collection string, vector map[uint32]float32, n int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}
