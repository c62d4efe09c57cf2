package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// fusedHit holds an intermediate fusion result before hydration.
type fusedHit struct {
	chunkID string
	score   float64
	// bestRank is the better of the chunk's dense and sparse ranks,
	// used as the first tie-breaker.
	bestRank int
}

// SearchService is the hybrid query engine: it issues independent
// dense and sparse searches and fuses the two ranked lists with
// reciprocal rank fusion.
type SearchService struct {
	store      driven.VectorStore
	chunkStore driven.ChunkStore
	embedder   driven.EmbeddingService
	encoder    driven.SparseEncoder
	settings   domain.Settings
}

// NewSearchService creates a hybrid query engine.
func NewSearchService(
	store driven.VectorStore,
	chunkStore driven.ChunkStore,
	embedder driven.EmbeddingService,
	encoder driven.SparseEncoder,
	settings domain.Settings,
) *SearchService {
	return &SearchService{
		store:      store,
		chunkStore: chunkStore,
		embedder:   embedder,
		encoder:    encoder,
		settings:   settings.Normalise(),
	}
}

// Search runs the dual query and returns the fused, ranked result.
// Results are at most query.TopK long with strictly ordered,
// deterministic ranking. Query-time operations share no mutable state,
// so concurrent searches are safe.
func (s *SearchService) Search(ctx context.Context, query domain.Query) (domain.RetrievalResult, error) {
	logger.Section("Hybrid Search")

	if err := query.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("Query: %q (top_k=%d, weights=%.2f/%.2f)",
		query.Text, query.TopK, query.DenseWeight, query.SparseWeight)

	denseVec, err := s.embedder.Embed(ctx, query.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	sparseVec := s.encoder.Encode(query.Text)

	// Over-fetch so fusion has candidates beyond the final cut.
	n := s.settings.Overfetch * query.TopK
	if n < query.TopK {
		n = query.TopK
	}

	// The two searches hit independent backend indexes and share no
	// state; run them concurrently. Fusion waits for both.
	var denseHits, sparseHits []driven.VectorHit
	var denseErr, sparseErr error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		denseHits, denseErr = s.store.DenseSearch(ctx, s.settings.Collection, denseVec, n)
	}()

	go func() {
		defer wg.Done()
		sparseHits, sparseErr = s.store.SparseSearch(ctx, s.settings.Collection, sparseVec, n)
	}()

	wg.Wait()

	if denseErr != nil {
		return nil, fmt.Errorf("dense search: %w", denseErr)
	}
	if sparseErr != nil {
		return nil, fmt.Errorf("sparse search: %w", sparseErr)
	}

	logger.Debug("Dense: %d hits, sparse: %d hits", len(denseHits), len(sparseHits))

	fused := fuse(denseHits, sparseHits, query.DenseWeight, query.SparseWeight, s.settings.RRFConstant)
	if len(fused) > query.TopK {
		fused = fused[:query.TopK]
	}

	result, err := s.hydrate(ctx, fused)
	if err != nil {
		return nil, err
	}

	logger.Info("Search returned %d results", len(result))
	return result, nil
}

// fuse merges the dense and sparse ranked lists with weighted
// reciprocal rank fusion. For each chunk:
//
//	score = denseWeight/(k+denseRank) + sparseWeight/(k+sparseRank)
//
// A chunk absent from one list contributes a pure zero from that term,
// not a penalty rank. Ties are broken by the chunk's best individual
// rank, then by lexical chunk id, so the ordering is fully
// deterministic.
func fuse(dense, sparse []driven.VectorHit, denseWeight, sparseWeight float64, k int) []fusedHit {
	acc := make(map[string]*fusedHit)

	score := func(hits []driven.VectorHit, weight float64) {
		for i, hit := range hits {
			rank := i + 1
			f, ok := acc[hit.ChunkID]
			if !ok {
				f = &fusedHit{chunkID: hit.ChunkID, bestRank: rank}
				acc[hit.ChunkID] = f
			}
			f.score += weight / float64(k+rank)
			if rank < f.bestRank {
				f.bestRank = rank
			}
		}
	}

	score(dense, denseWeight)
	score(sparse, sparseWeight)

	fused := make([]fusedHit, 0, len(acc))
	for _, f := range acc {
		fused = append(fused, *f)
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].score != fused[j].score {
			return fused[i].score > fused[j].score
		}
		if fused[i].bestRank != fused[j].bestRank {
			return fused[i].bestRank < fused[j].bestRank
		}
		return fused[i].chunkID < fused[j].chunkID
	})

	return fused
}

// hydrate resolves fused hits against the chunk store. A hit whose
// chunk id is missing from the store is a fusion inconsistency and is
// surfaced, never silently dropped.
func (s *SearchService) hydrate(ctx context.Context, fused []fusedHit) (domain.RetrievalResult, error) {
	result := make(domain.RetrievalResult, 0, len(fused))

	for i, f := range fused {
		chunk, err := s.chunkStore.GetChunk(ctx, f.chunkID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.FusionInconsistencyError{ChunkID: f.chunkID}
			}
			return nil, fmt.Errorf("get chunk %s: %w", f.chunkID, err)
		}

		result = append(result, domain.RetrievedChunk{
			ChunkID:    chunk.ID,
			Text:       chunk.Text,
			SourcePath: chunk.SourcePath,
			Score:      f.score,
			Rank:       i + 1,
		})
	}

	return result, nil
}
