// Package llm holds the default prompt templates and response parsing
// shared by the generator adapters.
package llm

import "strings"

// RefusalSentinel is the marker the generation model is instructed to
// emit when the provided context does not support an answer. Adapters
// translate it into an ungrounded refusal.
const RefusalSentinel = "NO_ANSWER_IN_CONTEXT"

// RefusalAnswer is the user-facing refusal substituted for the sentinel.
const RefusalAnswer = "The indexed documents do not contain enough information to answer this question."

// DefaultAnswerSystemPrompt is the constrained-generation system prompt
// used when no prompt store override exists.
const DefaultAnswerSystemPrompt = `You are a retrieval-grounded assistant. Your sole purpose is to answer questions using the context passages provided in the user message.

Rules you must follow at all times:
- Base your answer strictly and exclusively on the provided context.
- Do not use prior knowledge or make assumptions beyond the context.
- Never fabricate facts, explanations, or sources.
- Cite the source file path when referencing a fact.
- Be precise, factual, and concise.

If the context does not contain the information needed to answer, reply with exactly:
` + RefusalSentinel + `

Accuracy and faithfulness to the provided context matter more than completeness.`

// DefaultAnswerUserPrompt wraps the context and the question. The first
// placeholder is the context text, the second the question.
const DefaultAnswerUserPrompt = `Context:
%s

Question: %s`

// DefaultQueryRewritePrompt reformulates a search query for better
// recall. The placeholder is the original query.
const DefaultQueryRewritePrompt = `Rewrite this search query to improve recall. Add synonyms and fix typos.
Return ONLY the rewritten query, nothing else.

Original: %s
Rewritten:`

// ParseAnswer inspects a raw model response for the refusal sentinel.
// It returns the cleaned answer and whether the answer is grounded in
// the context.
func ParseAnswer(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RefusalAnswer, false
	}
	if strings.Contains(trimmed, RefusalSentinel) {
		return RefusalAnswer, false
	}
	return trimmed, true
}
