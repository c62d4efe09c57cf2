package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driven"
	"github.com/chorus-labs/chorus-cli/internal/core/ports/driving"
	"github.com/chorus-labs/chorus-cli/internal/logger"
)

// Ensure AgentService implements the interface.
var _ driving.AskService = (*AgentService)(nil)

// refusalAnswer is the terse refusal emitted when no usable context
// was retrieved. The generator produces its own refusal wording when
// it judges a non-empty context insufficient.
const refusalAnswer = "I could not find relevant information in the indexed documents to answer this question."

// AgentService runs the context-constrained agent loop:
//
//	AwaitingDecision -> (Retrieving)* -> Answering -> Done
//
// The loop is retrieval-first: at least one tool call is always made
// before answering. Tool calls are hard-bounded per turn, and every
// degraded path ends in a refusal rather than a fabricated answer. No
// state persists across turns.
type AgentService struct {
	tool      *RetrievalTool
	generator driven.Generator
	settings  domain.Settings
}

// NewAgentService creates the agent loop service.
func NewAgentService(tool *RetrievalTool, generator driven.Generator, settings domain.Settings) *AgentService {
	return &AgentService{
		tool:      tool,
		generator: generator,
		settings:  settings.Normalise(),
	}
}

// Ask runs one full turn for the question. ErrInvalidQuery is a hard
// failure; anything else degrades to a refusal with Grounded=false.
func (a *AgentService) Ask(ctx context.Context, question string) (domain.AgentTurn, error) {
	turn := domain.AgentTurn{Question: question}

	if strings.TrimSpace(question) == "" {
		return turn, fmt.Errorf("%w: empty question", domain.ErrInvalidQuery)
	}
	if a.generator == nil {
		return turn, domain.ErrGeneratorUnavailable
	}

	state := domain.StateAwaitingDecision
	logger.Section("Agent Turn")
	logger.Debug("State: %s", state)

	// Retrieval-first policy: the loop always attempts retrieval
	// before answering, bounded by the tool-call cap.
	queryText := question
	for calls := 0; calls < a.settings.ToolCallCap; calls++ {
		state = domain.StateRetrieving
		logger.Debug("State: %s (call %d, query %q)", state, calls+1, queryText)

		result, err := a.tool.Invoke(ctx, queryText)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidQuery) {
				return turn, err
			}
			var fusionErr *domain.FusionInconsistencyError
			if errors.Is(err, domain.ErrRetrievalUnavailable) || errors.As(err, &fusionErr) {
				// An outage or an index inconsistency aborts this tool
				// call only; answer from whatever was already gathered.
				logger.Warn("Tool call failed, proceeding with gathered context: %v", err)
				break
			}
			return turn, err
		}

		turn.ToolCalls = append(turn.ToolCalls, result)
		if len(result) > 0 {
			break
		}

		// Nothing found: ask the generator for a refined query and
		// try again, still under the cap.
		rewritten, rewriteErr := a.generator.RewriteQuery(ctx, queryText)
		if rewriteErr != nil || strings.TrimSpace(rewritten) == "" || rewritten == queryText {
			if rewriteErr != nil {
				logger.Warn("Query rewrite failed: %v", rewriteErr)
			}
			break
		}
		logger.Info("Refined query: %q", rewritten)
		queryText = rewritten
	}

	state = domain.StateAnswering
	logger.Debug("State: %s", state)

	passages := dedupePassages(turn.ToolCalls)
	if len(passages) == 0 {
		turn.Answer = refusalAnswer
		turn.Grounded = false
	} else {
		answer, grounded, err := a.generator.Answer(ctx, question, buildContext(passages))
		if err != nil {
			// Never fabricate: a generation failure is a refusal.
			logger.Warn("Generation failed: %v", err)
			turn.Answer = refusalAnswer
			turn.Grounded = false
		} else {
			turn.Answer = answer
			turn.Grounded = grounded
		}
	}

	state = domain.StateDone
	logger.Debug("State: %s (grounded=%t, tool_calls=%d)", state, turn.Grounded, len(turn.ToolCalls))
	return turn, nil
}

// dedupePassages flattens the turn's tool calls into passages,
// deduplicated by chunk id, preserving first-seen order. Scores and
// ranks are stripped here; the generation step never sees them.
func dedupePassages(calls []domain.RetrievalResult) []domain.Passage {
	seen := make(map[string]bool)
	var passages []domain.Passage

	for _, result := range calls {
		for _, hit := range result {
			if seen[hit.ChunkID] {
				continue
			}
			seen[hit.ChunkID] = true
			passages = append(passages, domain.Passage{
				Text:       hit.Text,
				SourcePath: hit.SourcePath,
			})
		}
	}
	return passages
}

// buildContext formats passages into the context block handed to the
// generator, each tagged with its provenance.
func buildContext(passages []domain.Passage) string {
	var b strings.Builder
	for i, p := range passages {
		fmt.Fprintf(&b, "--- SOURCE %d ---\nFile: %s\n%s\n\n", i+1, p.SourcePath, p.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
