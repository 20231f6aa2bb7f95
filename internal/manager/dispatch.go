package manager

import (
	"context"
	"strings"
	"time"

	"nlpd/internal/engine"
	"nlpd/internal/lang"
	"nlpd/internal/vecfmt"
	"nlpd/pkg/types"
)

// Translate translates text from source to target. Unknown codes fail with
// *lang.UnsupportedLanguageError before any engine is touched; a valid pair
// nobody serves fails with *ResourceUnavailableError.
func (m *Manager) Translate(ctx context.Context, source, target, text string) (_ string, err error) {
	defer observe(string(engine.Translation), time.Now(), &err)
	v, err := m.Translator(ctx, source, target)
	if err != nil {
		return "", err
	}
	return v.Translate(ctx, text)
}

// Translator returns the view for a language pair, building its engine on
// first use.
func (m *Manager) Translator(ctx context.Context, source, target string) (Translator, error) {
	pair, err := lang.ResolvePair(source, target)
	if err != nil {
		return Translator{}, err
	}
	h, err := m.translatorHandle(ctx, pair)
	if err != nil {
		return Translator{}, err
	}
	return Translator{pair: pair, h: h}, nil
}

// SentenceEmbeddings returns the embedding of text in its serialized form,
// e.g. "[0.12345679,1.0]".
func (m *Manager) SentenceEmbeddings(ctx context.Context, text string) (_ string, err error) {
	defer observe(string(engine.Embeddings), time.Now(), &err)
	h, err := singleHandle(ctx, m, m.encoders, engine.Embeddings)
	if err != nil {
		return "", err
	}
	vec, err := Encoder{h: h}.Encode(ctx, text)
	if err != nil {
		return "", err
	}
	return vecfmt.Format(vec)
}

// Summarize returns a summary of text as the engine produced it.
func (m *Manager) Summarize(ctx context.Context, text string) (_ string, err error) {
	defer observe(string(engine.Summarization), time.Now(), &err)
	h, err := singleHandle(ctx, m, m.summarizers, engine.Summarization)
	if err != nil {
		return "", err
	}
	return Summarizer{h: h}.Summarize(ctx, text)
}

// Ask extracts the answer to question from passage.
func (m *Manager) Ask(ctx context.Context, question, passage string) (_ types.Answer, err error) {
	defer observe(string(engine.QuestionAnswering), time.Now(), &err)
	h, err := singleHandle(ctx, m, m.answerers, engine.QuestionAnswering)
	if err != nil {
		return types.Answer{}, err
	}
	a, err := Answerer{h: h}.Answer(ctx, question, passage)
	if err != nil {
		return types.Answer{}, err
	}
	return types.Answer{Score: a.Score, Start: a.Start, End: a.End, Answer: a.Answer}, nil
}

// ZeroShot returns the best of the candidate labels for text. At least one
// non-blank label is required.
func (m *Manager) ZeroShot(ctx context.Context, text string, labels []string) (_ types.Label, err error) {
	defer observe(string(engine.ZeroShot), time.Now(), &err)
	candidates := make([]string, 0, len(labels))
	for _, l := range labels {
		if l = strings.TrimSpace(l); l != "" {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return types.Label{}, &InvalidInputError{Field: "labels", Reason: "at least one candidate label is required"}
	}
	h, err := singleHandle(ctx, m, m.classifiers, engine.ZeroShot)
	if err != nil {
		return types.Label{}, err
	}
	l, err := Classifier{h: h}.Classify(ctx, text, candidates)
	if err != nil {
		return types.Label{}, err
	}
	return types.Label{Label: l.Label, Score: l.Score}, nil
}

// NER returns the named entities of text in order.
func (m *Manager) NER(ctx context.Context, text string) (_ []types.Entity, err error) {
	defer observe(string(engine.TokenClassification), time.Now(), &err)
	h, err := singleHandle(ctx, m, m.taggers, engine.TokenClassification)
	if err != nil {
		return nil, err
	}
	ents, err := Tagger{h: h}.Tag(ctx, text)
	if err != nil {
		return nil, err
	}
	out := make([]types.Entity, len(ents))
	for i, e := range ents {
		out[i] = types.Entity{Word: e.Word, Score: e.Score, Label: e.Label, Offset: e.Offset}
	}
	return out, nil
}
