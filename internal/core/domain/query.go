package domain

import (
	"fmt"
	"strings"
)

// Default query parameters. Callers may override any of them; the
// fusion weights need not sum to 1.
const (
	// DefaultTopK is the number of results returned per query.
	DefaultTopK = 5

	// DefaultDenseWeight is the dense contribution to fused scores.
	DefaultDenseWeight = 0.5

	// DefaultSparseWeight is the sparse contribution to fused scores.
	DefaultSparseWeight = 0.5
)

// Query describes one hybrid retrieval request.
type Query struct {
	// Text is the natural-language query. Must be non-empty.
	Text string

	// TopK is the maximum number of results to return. Must be > 0.
	TopK int

	// DenseWeight scales the dense reciprocal-rank term, in [0,1].
	DenseWeight float64

	// SparseWeight scales the sparse reciprocal-rank term, in [0,1].
	SparseWeight float64
}

// NewQuery builds a query with default TopK and fusion weights.
func NewQuery(text string) Query {
	return Query{
		Text:         text,
		TopK:         DefaultTopK,
		DenseWeight:  DefaultDenseWeight,
		SparseWeight: DefaultSparseWeight,
	}
}

// Validate checks the query invariants. Violations are caller bugs and
// are reported as ErrInvalidQuery.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty query text", ErrInvalidQuery)
	}
	if q.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive, got %d", ErrInvalidQuery, q.TopK)
	}
	if q.DenseWeight < 0 || q.DenseWeight > 1 {
		return fmt.Errorf("%w: dense weight %v outside [0,1]", ErrInvalidQuery, q.DenseWeight)
	}
	if q.SparseWeight < 0 || q.SparseWeight > 1 {
		return fmt.Errorf("%w: sparse weight %v outside [0,1]", ErrInvalidQuery, q.SparseWeight)
	}
	return nil
}

// RetrievedChunk is one ranked hit in a retrieval result.
type RetrievedChunk struct {
	// ChunkID identifies the matched chunk.
	ChunkID string `json:"chunk_id"`

	// Text is the chunk content.
	Text string `json:"text"`

	// SourcePath is the provenance of the chunk.
	SourcePath string `json:"source_path"`

	// Score is the fused relevance score.
	Score float64 `json:"score"`

	// Rank is the 1-based position in the result.
	Rank int `json:"rank"`
}

// RetrievalResult is an ordered sequence of hits with strictly
// decreasing scores and 1-based ranks. It is transient: created per
// query and discarded once the agent consumes it.
type RetrievalResult []RetrievedChunk

// Passage is the provenance-bearing text handed to the generation
// step. Scores and ranks are deliberately stripped so they cannot leak
// into answer text.
type Passage struct {
	// Text is the chunk content.
	Text string

	// SourcePath is the originating document path.
	SourcePath string
}
