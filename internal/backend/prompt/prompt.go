// Package prompt builds instructions for chat-style engines and turns their
// replies into structured results. Offsets in results are character (rune)
// offsets into the caller's input, computed here by locating the returned
// spans rather than trusting the engine to count.
package prompt

import (
	"fmt"
	"strings"

	"nlpd/internal/lang"
)

// Translate returns the system instruction for a translation request.
func Translate(source, target lang.Code) string {
	return fmt.Sprintf("Translate the user's text from %s to %s. "+
		"Reply with the translation only, without quotes, notes or explanations.",
		source.Name(), target.Name())
}

// Summarize is the system instruction for summarization.
const Summarize = "Summarize the user's text in a few sentences in the same language as the text. " +
	"Reply with the summary only."

// Answer is the system instruction for extractive question answering.
const Answer = `You answer questions using only the provided context. ` +
	`The answer must be an exact, contiguous span copied from the context. ` +
	`Reply with a single JSON object: {"answer": "<span>", "score": <confidence between 0 and 1>}.`

// AnswerInput renders the user message for a question against a context.
func AnswerInput(question, context string) string {
	return "Context:\n" + context + "\n\nQuestion:\n" + question
}

// Classify returns the system instruction for zero-shot classification.
func Classify(labels []string) string {
	quoted := make([]string, len(labels))
	for i, l := range labels {
		quoted[i] = fmt.Sprintf("%q", l)
	}
	return "Classify the user's text against these candidate labels: " + strings.Join(quoted, ", ") + ". " +
		`Reply with a JSON array containing every candidate exactly once: ` +
		`[{"label": "<candidate>", "score": <probability between 0 and 1>}]. Scores should sum to 1.`
}

// Tag is the system instruction for named-entity recognition.
const Tag = `Find the named entities in the user's text. Use the labels PER, ORG, LOC and MISC. ` +
	`Reply with a JSON array in order of appearance: ` +
	`[{"word": "<exact text of the entity>", "label": "<label>", "score": <confidence between 0 and 1>}]. ` +
	`Reply with [] when there are none.`
