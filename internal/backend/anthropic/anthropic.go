// Package anthropic loads text engines served by the Anthropic Messages API.
// Embeddings are not offered by the API.
package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"nlpd/internal/backend"
	"nlpd/internal/backend/chat"
	"nlpd/internal/engine"
)

// Name is the backend name used in configuration.
const Name = "anthropic"

const (
	DefaultModel     = "claude-3-5-haiku-latest"
	DefaultMaxTokens = 1024
)

// Config configures the client shared by every engine of this backend.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// Loader implements engine.Loader for the text capabilities.
type Loader struct {
	cfg    Config
	client *anthropic.Client
}

// New builds a loader. Without an API key every Load fails with a
// dependency-unavailable error.
func New(cfg Config) *Loader {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	l := &Loader{cfg: cfg}
	if cfg.APIKey == "" {
		return l
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	client := anthropic.NewClient(opts...)
	l.client = &client
	return l
}

func (l *Loader) Supports(c engine.Capability) bool { return c != engine.Embeddings }

func (l *Loader) Load(_ context.Context, spec engine.Spec) (engine.Model, error) {
	if !l.Supports(spec.Capability) {
		return nil, &engine.UnsupportedCapabilityError{Backend: Name, Capability: spec.Capability}
	}
	if l.client == nil {
		return nil, engine.ErrDependencyUnavailable("anthropic backend: no api key configured")
	}
	temperature, err := backend.FloatOption(spec, "temperature", -1)
	if err != nil {
		return nil, err
	}
	maxTokens, err := backend.IntOption(spec, "max_tokens", DefaultMaxTokens)
	if err != nil {
		return nil, err
	}
	c := &completer{client: l.client, model: spec.Model, temperature: temperature, maxTokens: int64(maxTokens)}
	if c.model == "" {
		c.model = l.cfg.Model
	}
	return chat.New(c.complete, nil), nil
}

type completer struct {
	client      *anthropic.Client
	model       string
	temperature float64
	maxTokens   int64
}

func (c *completer) complete(ctx context.Context, system, user string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: system}},
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(anthropic.NewTextBlock(user))},
	}
	if c.temperature >= 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("anthropic messages: no text in reply (stop reason %q)", resp.StopReason)
	}
	return strings.TrimSpace(b.String()), nil
}
