package cli

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
)

// stubIngestService records calls and returns a canned result.
type stubIngestService struct {
	result       driving.BuildResult
	err          error
	buildCalls   int
	rebuildCalls int
}

func (s *stubIngestService) BuildOrReuse(_ context.Context, _ driven.ChunkSource) (driving.BuildResult, error) {
	s.buildCalls++
	return s.result, s.err
}

func (s *stubIngestService) Rebuild(_ context.Context, _ driven.ChunkSource) (driving.BuildResult, error) {
	s.rebuildCalls++
	return s.result, s.err
}

// stubSearchService returns a canned result and records the query.
type stubSearchService struct {
	result    domain.RetrievalResult
	err       error
	lastQuery domain.Query
}

func (s *stubSearchService) Search(_ context.Context, query domain.Query) (domain.RetrievalResult, error) {
	s.lastQuery = query
	return s.result, s.err
}

// stubAskService returns a canned turn.
type stubAskService struct {
	turn         domain.AgentTurn
	err          error
	lastQuestion string
}

func (s *stubAskService) Ask(_ context.Context, question string) (domain.AgentTurn, error) {
	s.lastQuestion = question
	return s.turn, s.err
}

// setupTestServices installs stub services and returns a cleanup that
// restores the previous wiring.
func setupTestServices() func() {
	prevIngest, prevSearch, prevAsk := ingestService, searchService, askService

	SetServices(Services{
		Ingest: &stubIngestService{result: driving.BuildResult{Created: true, EntryCount: 3}},
		Search: &stubSearchService{result: domain.RetrievalResult{
			{ChunkID: "c1", Text: "mock result text", SourcePath: "docs/a.txt", Score: 0.03, Rank: 1},
		}},
		Ask: &stubAskService{turn: domain.AgentTurn{
			Question: "q",
			Answer:   "mock answer",
			Grounded: true,
		}},
	})

	return func() {
		ingestService, searchService, askService = prevIngest, prevSearch, prevAsk
	}
}
