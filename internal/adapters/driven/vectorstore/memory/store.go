// Package memory provides an in-memory vector store for tests and for
// running without a Qdrant instance. Searches are exact (brute force),
// which is fine at the corpus sizes a local index holds.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// collection holds one collection's schema and entries.
type collection struct {
	schema  driven.CollectionSchema
	entries map[string]domain.IndexEntry
}

// Store is an in-memory VectorStore implementation.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		collections: make(map[string]*collection),
	}
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// Count returns the number of entries in the collection.
func (s *Store) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return 0, domain.ErrCollectionMissing
	}
	return len(col.entries), nil
}

// CreateCollection creates a collection with the declared schema.
func (s *Store) CreateCollection(_ context.Context, schema driven.CollectionSchema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[schema.Name]; ok {
		return fmt.Errorf("collection %q already exists", schema.Name)
	}
	s.collections[schema.Name] = &collection{
		schema:  schema,
		entries: make(map[string]domain.IndexEntry),
	}
	return nil
}

// DropCollection removes a collection and all its entries.
func (s *Store) DropCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, name)
	return nil
}

// Upsert writes a batch of entries.
func (s *Store) Upsert(_ context.Context, name string, entries []domain.IndexEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		return domain.ErrCollectionMissing
	}
	for _, entry := range entries {
		if len(entry.Dense) != col.schema.Dimensions {
			return fmt.Errorf("entry %s: dimension mismatch: got %d, collection expects %d",
				entry.ID, len(entry.Dense), col.schema.Dimensions)
		}
		col.entries[entry.ID] = entry
	}
	return nil
}

// DenseSearch returns the top-n entries by cosine similarity.
func (s *Store) DenseSearch(_ context.Context, name string, vector []float32, n int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrCollectionMissing
	}

	hits := make([]driven.VectorHit, 0, len(col.entries))
	for id, entry := range col.entries {
		score := cosine(vector, entry.Dense)
		if score > 0 {
			hits = append(hits, driven.VectorHit{ChunkID: id, Score: score})
		}
	}
	return topN(hits, n), nil
}

// SparseSearch returns the top-n entries by sparse dot product. Entries
// sharing no terms with the query score zero and are excluded.
func (s *Store) SparseSearch(_ context.Context, name string, vector map[uint32]float32, n int) ([]driven.VectorHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.collections[name]
	if !ok {
		return nil, domain.ErrCollectionMissing
	}

	hits := make([]driven.VectorHit, 0, len(col.entries))
	for id, entry := range col.entries {
		score := sparseDot(vector, entry.Sparse)
		if score > 0 {
			hits = append(hits, driven.VectorHit{ChunkID: id, Score: score})
		}
	}
	return topN(hits, n), nil
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

// topN sorts hits by descending score, then by id for stable ordering,
// and truncates to n.
func topN(hits []driven.VectorHit, n int) []driven.VectorHit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if n < len(hits) {
		hits = hits[:n]
	}
	return hits
}

// cosine computes cosine similarity between two dense vectors.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// sparseDot computes the dot product of two term-weight maps.
func sparseDot(a, b map[uint32]float32) float64 {
	// Iterate the smaller map.
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for id, w := range a {
		if other, ok := b[id]; ok {
			dot += float64(w) * float64(other)
		}
	}
	return dot
}
