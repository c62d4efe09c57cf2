package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

func TestInvoke_BuildsQueryFromSettings(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{result: resultWith("a")},
	}}
	settings := testSettings()
	settings.TopK = 7
	settings.DenseWeight = 0.6
	settings.SparseWeight = 0.4
	tool := NewRetrievalTool(search, settings)

	result, err := tool.Invoke(context.Background(), "some question")

	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Len(t, search.calls, 1)
	assert.Equal(t, "some question", search.calls[0].Text)
	assert.Equal(t, 7, search.calls[0].TopK)
	assert.InDelta(t, 0.6, search.calls[0].DenseWeight, 1e-9)
	assert.InDelta(t, 0.4, search.calls[0].SparseWeight, 1e-9)
}

func TestInvoke_RetriesOnceThenSucceeds(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{err: errBackendDown},
		{result: resultWith("a")},
	}}
	tool := NewRetrievalTool(search, testSettings())

	result, err := tool.Invoke(context.Background(), "question")

	require.NoError(t, err)
	assert.Len(t, result, 1)
	assert.Equal(t, 2, search.callCount())
}

func TestInvoke_RetriesOnceThenGivesUp(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{err: errBackendDown},
		{err: errBackendDown},
	}}
	tool := NewRetrievalTool(search, testSettings())

	_, err := tool.Invoke(context.Background(), "question")

	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
	assert.Equal(t, 2, search.callCount(), "exactly one retry")
}

func TestInvoke_NoRetryOnInvalidQuery(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{err: domain.ErrInvalidQuery},
	}}
	tool := NewRetrievalTool(search, testSettings())

	_, err := tool.Invoke(context.Background(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	assert.Equal(t, 1, search.callCount(), "invalid input must not be retried")
}

func TestInvoke_ContextCancelledDuringBackoff(t *testing.T) {
	search := &mockSearchService{responses: []searchResponse{
		{err: errBackendDown},
	}}
	tool := NewRetrievalTool(search, testSettings())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tool.Invoke(ctx, "question")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, search.callCount())
}
