package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
)

// errBackendDown simulates an unreachable storage backend.
var errBackendDown = fmt.Errorf("%w: connection refused", domain.ErrRetrievalUnavailable)

// --- Mock implementations shared by the service tests ---

// mockVectorStore implements driven.VectorStore. Search tests feed it
// canned hit lists; indexer tests use its recording behaviour.
type mockVectorStore struct {
	mu sync.Mutex

	denseHits  []driven.VectorHit
	sparseHits []driven.VectorHit
	denseErr   error
	sparseErr  error

	created      map[string]driven.CollectionSchema
	entries      map[string][]domain.IndexEntry
	upserts      [][]domain.IndexEntry
	upsertCalls  int
	failUpsertAt int // zero-based call ordinal, -1 disables
	existsErr    error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		created:      make(map[string]driven.CollectionSchema),
		entries:      make(map[string][]domain.IndexEntry),
		failUpsertAt: -1,
	}
}

func (m *mockVectorStore) CollectionExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.existsErr != nil {
		return false, m.existsErr
	}
	_, ok := m.created[name]
	return ok, nil
}

func (m *mockVectorStore) Count(_ context.Context, name string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries[name]), nil
}

func (m *mockVectorStore) CreateCollection(_ context.Context, schema driven.CollectionSchema) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created[schema.Name] = schema
	return nil
}

func (m *mockVectorStore) DropCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.created, name)
	delete(m.entries, name)
	return nil
}

func (m *mockVectorStore) Upsert(_ context.Context, collection string, entries []domain.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	call := m.upsertCalls
	m.upsertCalls++
	if m.failUpsertAt >= 0 && call == m.failUpsertAt {
		return errBackendDown
	}
	m.entries[collection] = append(m.entries[collection], entries...)
	m.upserts = append(m.upserts, entries)
	return nil
}

func (m *mockVectorStore) DenseSearch(_ context.Context, _ string, _ []float32, n int) ([]driven.VectorHit, error) {
	if m.denseErr != nil {
		return nil, m.denseErr
	}
	if n < len(m.denseHits) {
		return m.denseHits[:n], nil
	}
	return m.denseHits, nil
}

func (m *mockVectorStore) SparseSearch(_ context.Context, _ string, _ map[uint32]float32, n int) ([]driven.VectorHit, error) {
	if m.sparseErr != nil {
		return nil, m.sparseErr
	}
	if n < len(m.sparseHits) {
		return m.sparseHits[:n], nil
	}
	return m.sparseHits, nil
}

func (m *mockVectorStore) Close() error { return nil }

// mockChunkStore implements driven.ChunkStore backed by a map.
type mockChunkStore struct {
	mu      sync.Mutex
	chunks  map[string]domain.Chunk
	saveErr error
}

func newMockChunkStore() *mockChunkStore {
	return &mockChunkStore{chunks: make(map[string]domain.Chunk)}
}

func (m *mockChunkStore) SaveChunks(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	for _, c := range chunks {
		m.chunks[c.ID] = c
	}
	return nil
}

func (m *mockChunkStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockChunkStore) Count(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.chunks), nil
}

func (m *mockChunkStore) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = make(map[string]domain.Chunk)
	return nil
}

func (m *mockChunkStore) Close() error { return nil }

// mockEmbedder implements driven.EmbeddingService with a fixed-size
// deterministic vector.
type mockEmbedder struct {
	dims     int
	embedErr error
}

func (m *mockEmbedder) vector() []float32 {
	dims := m.dims
	if dims == 0 {
		dims = 4
	}
	v := make([]float32, dims)
	for i := range v {
		v[i] = 0.1
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector()
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dims == 0 {
		return 4
	}
	return m.dims
}

func (m *mockEmbedder) ModelName() string          { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error               { return nil }

// mockChunkSource implements driven.ChunkSource from a fixed slice.
type mockChunkSource struct {
	chunks []domain.Chunk
	err    error // emitted after the chunks, if non-nil
}

func (m *mockChunkSource) Chunks(_ context.Context) (<-chan domain.Chunk, <-chan error) {
	chunksCh := make(chan domain.Chunk)
	errsCh := make(chan error, 1)

	go func() {
		defer close(chunksCh)
		defer close(errsCh)
		for _, c := range m.chunks {
			chunksCh <- c
		}
		if m.err != nil {
			errsCh <- m.err
		}
	}()

	return chunksCh, errsCh
}

// mockSearchService implements driving.SearchService with a script of
// per-call responses. The last entry repeats once exhausted.
type mockSearchService struct {
	mu        sync.Mutex
	responses []searchResponse
	calls     []domain.Query
}

type searchResponse struct {
	result domain.RetrievalResult
	err    error
}

func (m *mockSearchService) Search(_ context.Context, query domain.Query) (domain.RetrievalResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, query)

	if len(m.responses) == 0 {
		return nil, nil
	}
	idx := len(m.calls) - 1
	if idx >= len(m.responses) {
		idx = len(m.responses) - 1
	}
	return m.responses[idx].result, m.responses[idx].err
}

func (m *mockSearchService) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockGenerator implements driven.Generator.
type mockGenerator struct {
	mu sync.Mutex

	answer     string
	grounded   bool
	answerErr  error
	rewrites   []string
	rewriteErr error

	answerCalls    int
	lastContext    string
	rewriteCalls   int
	lastRewriteArg string
}

func (m *mockGenerator) Answer(_ context.Context, _, contextText string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answerCalls++
	m.lastContext = contextText
	if m.answerErr != nil {
		return "", false, m.answerErr
	}
	return m.answer, m.grounded, nil
}

func (m *mockGenerator) RewriteQuery(_ context.Context, question string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastRewriteArg = question
	if m.rewriteErr != nil {
		return "", m.rewriteErr
	}
	if m.rewriteCalls < len(m.rewrites) {
		r := m.rewrites[m.rewriteCalls]
		m.rewriteCalls++
		return r, nil
	}
	m.rewriteCalls++
	return question, nil
}

func (m *mockGenerator) ModelName() string          { return "mock-llm" }
func (m *mockGenerator) Ping(_ context.Context) error { return nil }
func (m *mockGenerator) Close() error               { return nil }
