package driving

import (
	"context"

	"github.com/chorus-labs/chorus-cli/internal/core/domain"
)

// SearchService provides hybrid retrieval to external actors.
type SearchService interface {
	// Search runs the dual dense+sparse query and returns the fused,
	// ranked result.
	Search(ctx context.Context, query domain.Query) (domain.RetrievalResult, error)
}
