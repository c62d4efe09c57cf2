package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

func resultWith(ids ...string) domain.RetrievalResult {
	result := make(domain.RetrievalResult, len(ids))
	for i, id := range ids {
		result[i] = domain.RetrievedChunk{
			ChunkID:    id,
			Text:       "text for " + id,
			SourcePath: id + ".txt",
			Score:      1.0 / float64(i+1),
			Rank:       i + 1,
		}
	}
	return result
}

func newTestAgent(search *mockSearchService, gen *mockGenerator) *AgentService {
	settings := testSettings()
	tool := NewRetrievalTool(search, settings)
	return NewAgentService(tool, gen, settings)
}

func TestAsk_GroundedAnswer(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{result: resultWith("a", "b")},
	}}
	gen := &mockGenerator{answer: "The sky is blue.", grounded: true}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "What color is the sky?")

	require.NoError(t, err)
	assert.True(t, turn.Grounded)
	assert.Equal(t, "The sky is blue.", turn.Answer)
	require.Len(t, turn.ToolCalls, 1)
	assert.Equal(t, 1, search.callCount(), "one retrieval with useful results is enough")
	assert.Contains(t, gen.lastContext, "text for a")
	assert.Contains(t, gen.lastContext, "a.txt")
}

func TestAsk_EmptyQuestion(t *testing.T) {
	agent := newTestAgent(&mockSearchService{}, &mockGenerator{})

	_, err := agent.Ask(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
}

func TestAsk_ZeroChunksIsUngrounded(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{{result: nil}}}
	gen := &mockGenerator{answer: "should never be used", grounded: true}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "Unknown topic?")

	require.NoError(t, err)
	assert.False(t, turn.Grounded, "no retrieved context must yield a refusal")
	assert.NotEmpty(t, turn.Answer)
	assert.Equal(t, 0, gen.answerCalls, "generation must not run on an empty context")
}

func TestAsk_RetrievalOutageDegradesToRefusal(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{err: errBackendDown},
	}}
	agent := newTestAgent(search, &mockGenerator{})

	turn, err := agent.Ask(context.Background(), "Anything?")

	require.NoError(t, err, "an outage must not crash the turn")
	assert.False(t, turn.Grounded)
	// The tool retried once before giving up.
	assert.Equal(t, 2, search.callCount())
}

func TestAsk_FusionInconsistencyDegradesToRefusal(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{err: &domain.FusionInconsistencyError{ChunkID: "orphan"}},
	}}
	gen := &mockGenerator{answer: "should never be used", grounded: true}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "Anything?")

	require.NoError(t, err, "an index inconsistency must not crash the turn")
	assert.False(t, turn.Grounded)
	assert.NotEmpty(t, turn.Answer)
	assert.Equal(t, 0, gen.answerCalls)
	// Not an outage, so the tool does not retry.
	assert.Equal(t, 1, search.callCount())
}

func TestAsk_RefinedQueryAfterEmptyResult(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{result: nil},
		{result: resultWith("a")},
	}}
	gen := &mockGenerator{answer: "found it", grounded: true, rewrites: []string{"refined question"}}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "original question")

	require.NoError(t, err)
	assert.True(t, turn.Grounded)
	require.Len(t, turn.ToolCalls, 2)
	require.Equal(t, 2, search.callCount())
	assert.Equal(t, "refined question", search.calls[1].Text)
}

func TestAsk_ToolCallCapRespected(t *testing.T) {
	// Every call comes back empty and the rewriter always produces a
	// fresh query: the cap is the only thing stopping the loop.
	search := &mockSearchService{responses: []searchResponse{{result: nil}}}
	gen := &mockGenerator{rewrites: []string{"try one", "try two", "try three", "try four"}}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "question")

	require.NoError(t, err)
	assert.False(t, turn.Grounded)
	assert.Equal(t, domain.DefaultToolCallCap, search.callCount())
	assert.Len(t, turn.ToolCalls, domain.DefaultToolCallCap)
}

func TestAsk_DeduplicatesContextAcrossCalls(t *testing.T) {
	// Both needed: first returns an empty-ish overlap scenario via two
	// calls that share chunk "a".
	search := &mockSearchService{responses: []searchResponse{
		{result: resultWith()},
		{result: resultWith("a", "b")},
	}}
	gen := &mockGenerator{answer: "ok", grounded: true, rewrites: []string{"refined"}}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "question")
	require.NoError(t, err)
	require.Len(t, turn.ToolCalls, 2)

	passages := dedupePassages(append(turn.ToolCalls, resultWith("a", "c")))
	require.Len(t, passages, 3, "chunk a must appear once")
	assert.Equal(t, "text for a", passages[0].Text)
}

func TestAsk_GenerationFailureIsRefusal(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{result: resultWith("a")},
	}}
	gen := &mockGenerator{answerErr: errBackendDown}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "question")

	require.NoError(t, err)
	assert.False(t, turn.Grounded)
	assert.NotEmpty(t, turn.Answer)
}

func TestAsk_UngroundedGeneratorVerdictPreserved(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{result: resultWith("a")},
	}}
	gen := &mockGenerator{answer: "The provided documents do not cover this.", grounded: false}
	agent := newTestAgent(search, gen)

	turn, err := agent.Ask(context.Background(), "question")

	require.NoError(t, err)
	assert.False(t, turn.Grounded, "the generator's insufficiency verdict must pass through")
}

func TestBuildContext_Format(t *testing.T) {
	ctx := buildContext([]domain.Passage{
		{Text: "first passage", SourcePath: "a.txt"},
		{Text: "second passage", SourcePath: "b.txt"},
	})

	assert.Contains(t, ctx, "--- SOURCE 1 ---")
	assert.Contains(t, ctx, "File: a.txt")
	assert.Contains(t, ctx, "--- SOURCE 2 ---")
	assert.Contains(t, ctx, "second passage")
}
