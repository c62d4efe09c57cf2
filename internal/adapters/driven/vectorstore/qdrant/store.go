// Package qdrant provides a vector store adapter backed by the Qdrant
// HTTP API. Each index entry is stored as one point carrying a named
// dense vector and a named sparse vector, so the dense and sparse
// searches run against the same collection.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:6333"
	DefaultTimeout = 30 * time.Second

	// denseVectorName and sparseVectorName are the named vector slots
	// on every point.
	denseVectorName  = "dense"
	sparseVectorName = "sparse"
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// BaseURL is the Qdrant HTTP API base URL (default: http://localhost:6333).
	BaseURL string

	// APIKey authenticates requests when set (Qdrant Cloud).
	APIKey string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Store persists dual-represented index entries in Qdrant.
type Store struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

// NewStore creates a new Qdrant store.
func NewStore(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Store{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// sparseVector is the Qdrant sparse vector wire format.
type sparseVector struct {
	Indices []uint32  `json:"indices"`
	Values  []float32 `json:"values"`
}

// point is the Qdrant point wire format with named vectors.
type point struct {
	ID      string         `json:"id"`
	Vector  map[string]any `json:"vector"`
	Payload map[string]any `json:"payload,omitempty"`
}

// scoredPoint is one search result row.
type scoredPoint struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// doRequest sends one API request. A transport-level failure is wrapped
// in domain.ErrRetrievalUnavailable; an HTTP error status is returned
// verbatim alongside the body.
func (s *Store) doRequest(ctx context.Context, method, path string, body any) ([]byte, int, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, 0, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: qdrant: %v", domain.ErrRetrievalUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	return respBody, resp.StatusCode, nil
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, status, err := s.doRequest(ctx, http.MethodGet, "/collections/"+name, nil)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("qdrant: collection check returned status %d", status)
	}
}

// Count returns the number of points in the collection.
func (s *Store) Count(ctx context.Context, name string) (int, error) {
	body, status, err := s.doRequest(ctx, http.MethodPost,
		"/collections/"+name+"/points/count", map[string]any{"exact": true})
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("qdrant: count returned status %d: %s", status, string(body))
	}

	var response struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return 0, fmt.Errorf("decode count response: %w", err)
	}
	return response.Result.Count, nil
}

// CreateCollection creates a collection with a named dense vector slot
// sized per the schema and a named sparse vector slot.
func (s *Store) CreateCollection(ctx context.Context, schema driven.CollectionSchema) error {
	reqBody := map[string]any{
		"vectors": map[string]any{
			denseVectorName: map[string]any{
				"size":     schema.Dimensions,
				"distance": distanceName(schema.Metric),
			},
		},
		"sparse_vectors": map[string]any{
			sparseVectorName: map[string]any{},
		},
	}

	body, status, err := s.doRequest(ctx, http.MethodPut, "/collections/"+schema.Name, reqBody)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant: create collection returned status %d: %s", status, string(body))
	}
	return nil
}

// DropCollection removes a collection and all its points.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	body, status, err := s.doRequest(ctx, http.MethodDelete, "/collections/"+name, nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK && status != http.StatusNotFound {
		return fmt.Errorf("qdrant: drop collection returned status %d: %s", status, string(body))
	}
	return nil
}

// Upsert writes a batch of entries as points with both named vectors.
func (s *Store) Upsert(ctx context.Context, collection string, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}

	points := make([]point, len(entries))
	for i, entry := range entries {
		points[i] = point{
			ID: entry.ID,
			Vector: map[string]any{
				denseVectorName:  entry.Dense,
				sparseVectorName: toSparseVector(entry.Sparse),
			},
			Payload: entry.Metadata,
		}
	}

	body, status, err := s.doRequest(ctx, http.MethodPut,
		"/collections/"+collection+"/points", map[string]any{"points": points})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("qdrant: upsert returned status %d: %s", status, string(body))
	}
	return nil
}

// DenseSearch returns the top-n points by dense similarity.
func (s *Store) DenseSearch(ctx context.Context, collection string, vector []float32, n int) ([]driven.VectorHit, error) {
	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   denseVectorName,
			"vector": vector,
		},
		"limit":        n,
		"with_payload": false,
	}
	return s.search(ctx, collection, reqBody)
}

// SparseSearch returns the top-n points by sparse similarity. A query
// with no terms matches nothing; Qdrant rejects a sparse vector with
// zero indices, so it is not sent.
func (s *Store) SparseSearch(ctx context.Context, collection string, vector map[uint32]float32, n int) ([]driven.VectorHit, error) {
	if len(vector) == 0 {
		return nil, nil
	}

	reqBody := map[string]any{
		"vector": map[string]any{
			"name":   sparseVectorName,
			"vector": toSparseVector(vector),
		},
		"limit":        n,
		"with_payload": false,
	}
	return s.search(ctx, collection, reqBody)
}

func (s *Store) search(ctx context.Context, collection string, reqBody map[string]any) ([]driven.VectorHit, error) {
	body, status, err := s.doRequest(ctx, http.MethodPost,
		"/collections/"+collection+"/points/search", reqBody)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("qdrant: search returned status %d: %s", status, string(body))
	}

	var response struct {
		Result []scoredPoint `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	hits := make([]driven.VectorHit, len(response.Result))
	for i, p := range response.Result {
		hits[i] = driven.VectorHit{ChunkID: p.ID, Score: p.Score}
	}
	return hits, nil
}

// Close releases resources.
func (s *Store) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// toSparseVector converts the term-weight map to the Qdrant wire
// format. Indices are sorted so the payload is deterministic.
func toSparseVector(weights map[uint32]float32) sparseVector {
	indices := make([]uint32, 0, len(weights))
	for id := range weights {
		indices = append(indices, id)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	values := make([]float32, len(indices))
	for i, id := range indices {
		values[i] = weights[id]
	}
	return sparseVector{Indices: indices, Values: values}
}

// distanceName maps a metric to Qdrant's distance identifier.
func distanceName(metric driven.DistanceMetric) string {
	switch metric {
	case driven.DistanceDot:
		return "Dot"
	default:
		return "Cosine"
	}
}
