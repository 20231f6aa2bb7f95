package manager

import (
	"context"
	"errors"
	"strings"

	"nlpd/internal/engine"
	"nlpd/internal/lang"
	"nlpd/internal/registry"
)

// Views bind a key to the shared engine handle the registry returned. They
// are built per call, hold no state beyond that, and never cache.

// call runs fn with exclusive access to the engine behind h. Admission
// failures and cancellation pass through unchanged; anything else is the
// engine failing and becomes an *InferenceError.
func call[H any](ctx context.Context, c engine.Capability, h *registry.Handle[H], fn func(H) error) error {
	err := h.Do(ctx, fn)
	switch {
	case err == nil, registry.IsTooBusy(err),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	}
	return &InferenceError{Capability: c, Key: h.Key(), Err: err}
}

func emptyOutput(c engine.Capability, key string) error {
	return &InferenceError{Capability: c, Key: key, Err: errors.New("engine returned no output")}
}

// Translator translates between the languages of its pair.
type Translator struct {
	pair lang.Pair
	h    *registry.Handle[engine.Translator]
}

// Translate returns the translation of text with surrounding whitespace removed.
func (t Translator) Translate(ctx context.Context, text string) (string, error) {
	var out []string
	err := call(ctx, engine.Translation, t.h, func(e engine.Translator) error {
		var err error
		out, err = e.Translate(ctx, []string{text}, t.pair.Source, t.pair.Target)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", emptyOutput(engine.Translation, t.h.Key())
	}
	return strings.TrimSpace(out[0]), nil
}

// Encoder produces sentence embeddings.
type Encoder struct {
	h *registry.Handle[engine.Encoder]
}

// Encode returns the embedding of a single text.
func (v Encoder) Encode(ctx context.Context, text string) ([]float32, error) {
	var out [][]float32
	err := call(ctx, engine.Embeddings, v.h, func(e engine.Encoder) error {
		var err error
		out, err = e.Encode(ctx, []string{text})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, emptyOutput(engine.Embeddings, v.h.Key())
	}
	return out[0], nil
}

// Summarizer summarizes text.
type Summarizer struct {
	h *registry.Handle[engine.Summarizer]
}

func (v Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	var out []string
	err := call(ctx, engine.Summarization, v.h, func(e engine.Summarizer) error {
		var err error
		out, err = e.Summarize(ctx, []string{text})
		return err
	})
	if err != nil {
		return "", err
	}
	if len(out) == 0 {
		return "", emptyOutput(engine.Summarization, v.h.Key())
	}
	return out[0], nil
}

// Answerer extracts answers from a context passage.
type Answerer struct {
	h *registry.Handle[engine.Answerer]
}

// Answer returns the best scoring answer.
func (v Answerer) Answer(ctx context.Context, question, passage string) (engine.Answer, error) {
	var out [][]engine.Answer
	err := call(ctx, engine.QuestionAnswering, v.h, func(e engine.Answerer) error {
		var err error
		out, err = e.Answer(ctx, []engine.QAInput{{Question: question, Context: passage}})
		return err
	})
	if err != nil {
		return engine.Answer{}, err
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return engine.Answer{}, emptyOutput(engine.QuestionAnswering, v.h.Key())
	}
	best := out[0][0]
	for _, a := range out[0][1:] {
		if a.Score > best.Score {
			best = a
		}
	}
	return best, nil
}

// Classifier scores candidate labels.
type Classifier struct {
	h *registry.Handle[engine.Classifier]
}

// Classify returns the highest scoring label, the first one on ties.
func (v Classifier) Classify(ctx context.Context, text string, labels []string) (engine.Label, error) {
	var out [][]engine.Label
	err := call(ctx, engine.ZeroShot, v.h, func(e engine.Classifier) error {
		var err error
		out, err = e.Classify(ctx, []string{text}, labels)
		return err
	})
	if err != nil {
		return engine.Label{}, err
	}
	if len(out) == 0 || len(out[0]) == 0 {
		return engine.Label{}, emptyOutput(engine.ZeroShot, v.h.Key())
	}
	best := out[0][0]
	for _, l := range out[0][1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, nil
}

// Tagger finds named entities.
type Tagger struct {
	h *registry.Handle[engine.Tagger]
}

// Tag returns the entities of text in the order the engine produced them.
func (v Tagger) Tag(ctx context.Context, text string) ([]engine.Entity, error) {
	var out [][]engine.Entity
	err := call(ctx, engine.TokenClassification, v.h, func(e engine.Tagger) error {
		var err error
		out, err = e.Tag(ctx, []string{text})
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, emptyOutput(engine.TokenClassification, v.h.Key())
	}
	return out[0], nil
}
