package services

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-labs/chorus-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/sparse"
)

// bagEmbedder is a deterministic embedder whose cosine similarity
// tracks token overlap, so dense and lexical rankings agree on
// obviously related text.
type bagEmbedder struct{}

const bagDims = 16

func (bagEmbedder) embed(text string) []float32 {
	v := make([]float32, bagDims)
	for id := range sparse.NewEncoder().Encode(text) {
		v[id%bagDims]++
	}
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range v {
			v[i] /= n
		}
	}
	return v
}

func (e bagEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	return e.embed(text), nil
}

func (e bagEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (bagEmbedder) Dimensions() int            { return bagDims }
func (bagEmbedder) ModelName() string          { return "bag-embed" }
func (bagEmbedder) Ping(_ context.Context) error { return nil }
func (bagEmbedder) Close() error               { return nil }

// TestPipeline_IngestThenSearch exercises the real indexer and search
// engine end to end against the in-memory vector store.
func TestPipeline_IngestThenSearch(t *testing.T) {
	ctx := context.Background()
	vectors := memory.NewStore()
	chunks := newMockChunkStore()
	encoder := sparse.NewEncoder()
	settings := domain.DefaultSettings()

	indexer := NewIndexer(vectors, chunks, bagEmbedder{}, encoder, settings)
	source := &mockChunkSource{chunks: []domain.Chunk{
		{ID: "sky", Text: "The sky is blue.", SourcePath: "facts.txt", SequenceIndex: 0},
		{ID: "cats", Text: "Cats are mammals.", SourcePath: "facts.txt", SequenceIndex: 1},
		{ID: "qdrant", Text: "Qdrant stores vectors.", SourcePath: "facts.txt", SequenceIndex: 2},
	}}

	build, err := indexer.BuildOrReuse(ctx, source)
	require.NoError(t, err)
	assert.True(t, build.Created)
	assert.Equal(t, 3, build.EntryCount)

	engine := NewSearchService(vectors, chunks, bagEmbedder{}, encoder, settings)

	result, err := engine.Search(ctx, domain.Query{
		Text:         "What color is the sky?",
		TopK:         1,
		DenseWeight:  0.5,
		SparseWeight: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "sky", result[0].ChunkID)
	assert.Equal(t, "The sky is blue.", result[0].Text)
	assert.Equal(t, 1, result[0].Rank)

	// A second build against the populated collection is a no-op.
	again, err := indexer.BuildOrReuse(ctx, source)
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, 3, again.EntryCount)
}
