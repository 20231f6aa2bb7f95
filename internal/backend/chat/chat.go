// Package chat serves the text capabilities on top of any instruction
// following chat engine. The backend supplies a single completion function;
// prompting and reply parsing live in package prompt.
package chat

import (
	"context"
	"fmt"
	"strings"

	"nlpd/internal/backend/prompt"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

// CompleteFunc sends one system instruction and one user message and returns
// the engine's reply text.
type CompleteFunc func(ctx context.Context, system, user string) (string, error)

// Engine implements Translator, Summarizer, Answerer, Classifier and Tagger.
// Batches are sent one text at a time.
type Engine struct {
	complete CompleteFunc
	close    func() error
}

// New wraps complete. close may be nil.
func New(complete CompleteFunc, close func() error) *Engine {
	return &Engine{complete: complete, close: close}
}

func (e *Engine) Close() error {
	if e.close == nil {
		return nil
	}
	return e.close()
}

func (e *Engine) each(ctx context.Context, n int, fn func(i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(i); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) Translate(ctx context.Context, texts []string, source, target lang.Code) ([]string, error) {
	system := prompt.Translate(source, target)
	out := make([]string, len(texts))
	err := e.each(ctx, len(texts), func(i int) error {
		reply, err := e.complete(ctx, system, texts[i])
		out[i] = reply
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Summarize(ctx context.Context, texts []string) ([]string, error) {
	out := make([]string, len(texts))
	err := e.each(ctx, len(texts), func(i int) error {
		reply, err := e.complete(ctx, prompt.Summarize, texts[i])
		out[i] = reply
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Answer(ctx context.Context, inputs []engine.QAInput) ([][]engine.Answer, error) {
	out := make([][]engine.Answer, len(inputs))
	err := e.each(ctx, len(inputs), func(i int) error {
		reply, err := e.complete(ctx, prompt.Answer, prompt.AnswerInput(inputs[i].Question, inputs[i].Context))
		if err != nil {
			return err
		}
		a, err := prompt.ParseAnswer(reply, inputs[i].Context)
		if err != nil {
			return fmt.Errorf("answer %d: %w", i, err)
		}
		out[i] = []engine.Answer{a}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Classify(ctx context.Context, texts []string, labels []string) ([][]engine.Label, error) {
	system := prompt.Classify(labels)
	out := make([][]engine.Label, len(texts))
	err := e.each(ctx, len(texts), func(i int) error {
		reply, err := e.complete(ctx, system, texts[i])
		if err != nil {
			return err
		}
		ls, err := prompt.ParseLabels(reply, labels)
		if err != nil {
			return fmt.Errorf("classify %d: %w", i, err)
		}
		out[i] = ls
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) Tag(ctx context.Context, texts []string) ([][]engine.Entity, error) {
	out := make([][]engine.Entity, len(texts))
	err := e.each(ctx, len(texts), func(i int) error {
		if strings.TrimSpace(texts[i]) == "" {
			out[i] = []engine.Entity{}
			return nil
		}
		reply, err := e.complete(ctx, prompt.Tag, texts[i])
		if err != nil {
			return err
		}
		ents, err := prompt.ParseEntities(reply, texts[i])
		if err != nil {
			return fmt.Errorf("tag %d: %w", i, err)
		}
		out[i] = ents
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
