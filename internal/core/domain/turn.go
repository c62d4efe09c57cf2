package domain

// TurnState identifies a phase of the agent loop state machine.
type TurnState string

// Agent loop states. A turn always moves forward:
// AwaitingDecision -> (Retrieving)* -> Answering -> Done.
const (
	// StateAwaitingDecision is the initial state before any tool call.
	StateAwaitingDecision TurnState = "awaiting_decision"

	// StateRetrieving covers tool invocations. A turn may pass through
	// this state several times, bounded by the tool-call cap.
	StateRetrieving TurnState = "retrieving"

	// StateAnswering is the constrained generation phase.
	StateAnswering TurnState = "answering"

	// StateDone is terminal. The turn record is finalised.
	StateDone TurnState = "done"
)

// IsValid returns true if the state is recognised.
func (s TurnState) IsValid() bool {
	switch s {
	case StateAwaitingDecision, StateRetrieving, StateAnswering, StateDone:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s TurnState) String() string {
	return string(s)
}

// AgentTurn records one complete question-to-answer cycle. Turns are
// local to their invocation; no state is retained across calls.
type AgentTurn struct {
	// Question is the user's original question.
	Question string `json:"question"`

	// ToolCalls holds the retrieval results of each tool invocation
	// made during the turn, in call order.
	ToolCalls []RetrievalResult `json:"tool_calls,omitempty"`

	// Answer is the final answer text, or a refusal.
	Answer string `json:"answer"`

	// Grounded is false when the answer is a refusal because the
	// retrieved context was absent or insufficient.
	Grounded bool `json:"grounded"`
}
