package driving

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// AskService answers natural-language questions over the indexed
// corpus, constrained to retrieved evidence.
type AskService interface {
	// Ask runs one full agent turn for the question and returns the
	// finalised turn record.
	Ask(ctx context.Context, question string) (domain.AgentTurn, error)
}
