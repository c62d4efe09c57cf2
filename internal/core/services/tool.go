package services

import (
	"context"
	"errors"
	"time"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

// retryBackoff is the pause before the single retry after a
// retrieval-unavailable failure.
const retryBackoff = 500 * time.Millisecond

// RetrievalTool is the callable surface the agent loop uses to reach
// the index. It builds a Query from the question with the configured
// defaults and absorbs one backend outage with a retry. The agent
// records the full ranked result in the turn, but only text and
// provenance ever reach the generation step.
type RetrievalTool struct {
	search   driving.SearchService
	settings domain.Settings
}

// NewRetrievalTool creates the retrieval tool.
func NewRetrievalTool(search driving.SearchService, settings domain.Settings) *RetrievalTool {
	return &RetrievalTool{
		search:   search,
		settings: settings.Normalise(),
	}
}

// Invoke retrieves ranked chunks for the question. A retrieval
// outage is retried once with backoff; if the retry also fails the
// outage is reported as domain.ErrRetrievalUnavailable so the agent
// can degrade to an empty context. Invalid input propagates as
// domain.ErrInvalidQuery.
func (t *RetrievalTool) Invoke(ctx context.Context, question string) (domain.RetrievalResult, error) {
	query := domain.Query{
		Text:         question,
		TopK:         t.settings.TopK,
		DenseWeight:  t.settings.DenseWeight,
		SparseWeight: t.settings.SparseWeight,
	}

	result, err := t.search.Search(ctx, query)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		return nil, err
	}

	logger.Warn("Retrieval unavailable, retrying once: %v", err)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(retryBackoff):
	}

	return t.search.Search(ctx, query)
}
