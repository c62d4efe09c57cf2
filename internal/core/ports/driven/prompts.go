package driven

// PromptStore provides access to generation prompt templates.
// Implementations may load prompts from files or embed them in the
// binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next
	// access.
	Reload()
}

// Well-known prompt names. These constants define the contract between
// prompt consumers and providers.
const (
	// PromptAnswerSystem is the constrained-generation system prompt.
	// It instructs the model to answer strictly from provided context
	// and to emit the refusal sentinel otherwise. No placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswerUser wraps the context and question. Expects two %s
	// placeholders: context text, then question.
	PromptAnswerUser = "answer_user"

	// PromptQueryRewrite reformulates a question for better retrieval
	// recall. Expects a %s placeholder for the original question.
	PromptQueryRewrite = "query_rewrite"
)
