// Package openai loads engines served by the OpenAI API or any server that
// speaks its chat-completions and embeddings protocol.
package openai

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"nlpd/internal/backend"
	"nlpd/internal/backend/chat"
	"nlpd/internal/engine"
)

// Name is the backend name used in configuration.
const Name = "openai"

const (
	DefaultChatModel      = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config configures the client shared by every engine of this backend.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	MaxRetries     int
	Timeout        time.Duration
}

// Loader implements engine.Loader for every capability.
type Loader struct {
	cfg    Config
	client *openai.Client
}

// New builds a loader. Without an API key or a base URL every Load fails
// with a dependency-unavailable error.
func New(cfg Config) *Loader {
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	l := &Loader{cfg: cfg}
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return l
	}
	opts := []option.RequestOption{option.WithMaxRetries(cfg.MaxRetries)}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	client := openai.NewClient(opts...)
	l.client = &client
	return l
}

func (l *Loader) Supports(engine.Capability) bool { return true }

func (l *Loader) Load(_ context.Context, spec engine.Spec) (engine.Model, error) {
	if l.client == nil {
		return nil, engine.ErrDependencyUnavailable("openai backend: no api key or base url configured")
	}
	if spec.Capability == engine.Embeddings {
		model := spec.Model
		if model == "" {
			model = l.cfg.EmbeddingModel
		}
		return &encoder{client: l.client, model: model}, nil
	}

	temperature, err := backend.FloatOption(spec, "temperature", -1)
	if err != nil {
		return nil, err
	}
	maxTokens, err := backend.IntOption(spec, "max_tokens", 0)
	if err != nil {
		return nil, err
	}
	c := &completer{client: l.client, model: spec.Model, temperature: temperature, maxTokens: maxTokens}
	if c.model == "" {
		c.model = l.cfg.ChatModel
	}
	return chat.New(c.complete, nil), nil
}

type completer struct {
	client      *openai.Client
	model       string
	temperature float64
	maxTokens   int
}

func (c *completer) complete(ctx context.Context, system, user string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	}
	if c.temperature >= 0 {
		params.Temperature = openai.Float(c.temperature)
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(c.maxTokens))
	}
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai chat: empty choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

type encoder struct {
	client *openai.Client
	model  string
}

func (e *encoder) Close() error { return nil }

func (e *encoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: e.model,
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}
	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	out := make([][]float32, len(data))
	for i, d := range data {
		v := make([]float32, len(d.Embedding))
		for j, x := range d.Embedding {
			v[j] = float32(x)
		}
		out[i] = v
	}
	return out, nil
}
