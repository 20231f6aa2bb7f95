//go:build llama

package llama

import (
	"context"
	"errors"
	"fmt"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"

	"nlpd/internal/backend"
	"nlpd/internal/backend/chat"
	"nlpd/internal/common/fsutil"
	"nlpd/internal/engine"
)

// Built reports whether the runtime is linked into this binary.
const Built = true

func (l *Loader) Load(_ context.Context, spec engine.Spec) (engine.Model, error) {
	path := strings.TrimSpace(spec.Model)
	if path == "" {
		return nil, fmt.Errorf("%s: model path is empty", spec.Key())
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Key(), err)
	}
	if !fsutil.IsFile(path) {
		return nil, fmt.Errorf("%s: model file not found: %s", spec.Key(), path)
	}
	mo := []llama.ModelOption{llama.SetContext(l.cfg.ContextSize)}
	if l.cfg.GPULayers > 0 {
		mo = append(mo, llama.SetGPULayers(l.cfg.GPULayers))
	}
	if spec.Capability == engine.Embeddings {
		mo = append(mo, llama.EnableEmbeddings)
	}
	m, err := llama.New(path, mo...)
	if err != nil {
		return nil, fmt.Errorf("%s: load %s: %w", spec.Key(), path, err)
	}
	s := &session{model: m, threads: l.cfg.Threads}
	if spec.Capability == engine.Embeddings {
		return s, nil
	}

	temperature, err := backend.FloatOption(spec, "temperature", 0.2)
	if err != nil {
		m.Free()
		return nil, err
	}
	maxTokens, err := backend.IntOption(spec, "max_tokens", 512)
	if err != nil {
		m.Free()
		return nil, err
	}
	s.temperature = float32(temperature)
	s.maxTokens = maxTokens
	return chat.New(s.complete, s.Close), nil
}

// session owns one loaded model. Calls are serialized by the registry handle.
type session struct {
	model       *llama.LLama
	threads     int
	temperature float32
	maxTokens   int
}

func (s *session) complete(ctx context.Context, system, user string) (string, error) {
	if s.model == nil {
		return "", errors.New("llama model not initialized")
	}
	s.model.SetTokenCallback(func(string) bool { return ctx.Err() == nil })
	text, err := s.model.Predict(renderPrompt(system, user),
		llama.SetTokens(s.maxTokens),
		llama.SetThreads(s.threads),
		llama.SetTemperature(s.temperature),
		llama.SetStopWords(stopWord),
	)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (s *session) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if s.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := s.model.Embeddings(t, llama.SetThreads(s.threads))
		if err != nil {
			return nil, fmt.Errorf("embed %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func (s *session) Close() error {
	if s.model != nil {
		s.model.Free()
		s.model = nil
	}
	return nil
}
