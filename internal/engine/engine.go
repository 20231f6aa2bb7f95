// Package engine defines the boundary to the inference engines. Engines are
// opaque: a Loader turns a Spec into a Model, and a Model serves whichever
// capability interfaces it implements. Nothing here knows how inference is
// computed.
package engine

import (
	"context"
	"fmt"

	"nlpd/internal/lang"
)

// Capability names one kind of inference.
type Capability string

const (
	Translation         Capability = "translation"
	Embeddings          Capability = "embeddings"
	Summarization       Capability = "summarization"
	QuestionAnswering   Capability = "qa"
	ZeroShot            Capability = "zero_shot"
	TokenClassification Capability = "ner"
)

// Capabilities lists every capability in a stable order.
func Capabilities() []Capability {
	return []Capability{Translation, Embeddings, Summarization, QuestionAnswering, ZeroShot, TokenClassification}
}

// ParseCapability maps a configuration string to a Capability.
func ParseCapability(s string) (Capability, error) {
	for _, c := range Capabilities() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown capability %q", s)
}

// Model is a loaded engine instance. Close releases weights and runtime state.
type Model interface {
	Close() error
}

// Translator translates a batch of texts between two languages.
type Translator interface {
	Translate(ctx context.Context, texts []string, source, target lang.Code) ([]string, error)
}

// Encoder produces one embedding per input text.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
}

// Summarizer produces one summary per input text.
type Summarizer interface {
	Summarize(ctx context.Context, texts []string) ([]string, error)
}

// Answerer extracts answers to questions from a context passage.
type Answerer interface {
	Answer(ctx context.Context, inputs []QAInput) ([][]Answer, error)
}

// Classifier scores candidate labels for each text, best first.
type Classifier interface {
	Classify(ctx context.Context, texts []string, labels []string) ([][]Label, error)
}

// Tagger finds named entities in each text, in text order.
type Tagger interface {
	Tag(ctx context.Context, texts []string) ([][]Entity, error)
}

// QAInput is one question against one context passage.
type QAInput struct {
	Question string
	Context  string
}

// Answer is an extracted span. Start and End are character offsets into the
// context passage.
type Answer struct {
	Score  float32
	Start  uint32
	End    uint32
	Answer string
}

// Label is a scored candidate label.
type Label struct {
	Label string
	Score float32
}

// Entity is a tagged span. Offset is the character offset of Word in the text.
type Entity struct {
	Word   string
	Score  float32
	Label  string
	Offset uint32
}
