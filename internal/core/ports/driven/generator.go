package driven

import "context"

// Generator is the generation-model boundary. Given a question and the
// retrieved context, it produces an answer that must be derivable from
// the context alone, or a refusal when the context is insufficient.
//
// Implementations may include:
//   - Ollama (local models)
//   - OpenAI (cloud API)
type Generator interface {
	// Answer generates an answer bounded by contextText. Grounded is
	// false when the model judged the context insufficient and the
	// returned text is a refusal.
	Answer(ctx context.Context, question, contextText string) (answer string, grounded bool, err error)

	// RewriteQuery reformulates a question for better retrieval
	// recall. Used by the agent loop when an earlier tool call
	// returned nothing.
	RewriteQuery(ctx context.Context, question string) (string, error)

	// ModelName returns the name of the generation model being used.
	ModelName() string

	// Ping validates the service is reachable.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
