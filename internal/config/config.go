// Package config loads the service configuration from a file and the
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

// Defaults for fields left unset.
const (
	DefaultAddr         = ":8080"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultQueueDepth   = 32
	DefaultMaxWaitMS    = 30000
	DefaultMaxBodyBytes = 1 << 20
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr             string   `json:"addr" yaml:"addr" toml:"addr" env:"ADDR"`
	LogLevel         string   `json:"log_level" yaml:"log_level" toml:"log_level" env:"LOG_LEVEL"`
	LogFormat        string   `json:"log_format" yaml:"log_format" toml:"log_format" env:"LOG_FORMAT"`
	ModelsDir        string   `json:"models_dir" yaml:"models_dir" toml:"models_dir" env:"MODELS_DIR"`
	QueueDepth       int      `json:"queue_depth" yaml:"queue_depth" toml:"queue_depth" env:"QUEUE_DEPTH"`
	MaxWaitMS        int      `json:"max_wait_ms" yaml:"max_wait_ms" toml:"max_wait_ms" env:"MAX_WAIT_MS"`
	MaxBodyBytes     int64    `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" env:"MAX_BODY_BYTES"`
	RequestTimeoutMS int      `json:"request_timeout_ms" yaml:"request_timeout_ms" toml:"request_timeout_ms" env:"REQUEST_TIMEOUT_MS"`
	Preload          []string `json:"preload" yaml:"preload" toml:"preload" env:"PRELOAD"`
	CORS             CORS     `json:"cors" yaml:"cors" toml:"cors" envPrefix:"CORS_"`
	Backends         Backends `json:"backends" yaml:"backends" toml:"backends" envPrefix:"BACKENDS_"`
	Models           []Model  `json:"models" yaml:"models" toml:"models"`
}

// CORS configures cross-origin access to the HTTP API.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled" env:"ENABLED"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins" env:"ALLOWED_ORIGINS"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods" env:"ALLOWED_METHODS"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers" env:"ALLOWED_HEADERS"`
}

// Backends holds per-backend client settings.
type Backends struct {
	OpenAI    OpenAI    `json:"openai" yaml:"openai" toml:"openai" envPrefix:"OPENAI_"`
	Anthropic Anthropic `json:"anthropic" yaml:"anthropic" toml:"anthropic" envPrefix:"ANTHROPIC_"`
	Llama     Llama     `json:"llama" yaml:"llama" toml:"llama" envPrefix:"LLAMA_"`
}

type OpenAI struct {
	APIKey         string `json:"api_key" yaml:"api_key" toml:"api_key" env:"API_KEY"`
	BaseURL        string `json:"base_url" yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	ChatModel      string `json:"chat_model" yaml:"chat_model" toml:"chat_model" env:"CHAT_MODEL"`
	EmbeddingModel string `json:"embedding_model" yaml:"embedding_model" toml:"embedding_model" env:"EMBEDDING_MODEL"`
	MaxRetries     int    `json:"max_retries" yaml:"max_retries" toml:"max_retries" env:"MAX_RETRIES"`
	TimeoutMS      int    `json:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms" env:"TIMEOUT_MS"`
}

type Anthropic struct {
	APIKey     string `json:"api_key" yaml:"api_key" toml:"api_key" env:"API_KEY"`
	BaseURL    string `json:"base_url" yaml:"base_url" toml:"base_url" env:"BASE_URL"`
	Model      string `json:"model" yaml:"model" toml:"model" env:"MODEL"`
	MaxRetries int    `json:"max_retries" yaml:"max_retries" toml:"max_retries" env:"MAX_RETRIES"`
	TimeoutMS  int    `json:"timeout_ms" yaml:"timeout_ms" toml:"timeout_ms" env:"TIMEOUT_MS"`
}

type Llama struct {
	ContextSize int `json:"context_size" yaml:"context_size" toml:"context_size" env:"CONTEXT_SIZE"`
	Threads     int `json:"threads" yaml:"threads" toml:"threads" env:"THREADS"`
	GPULayers   int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers" env:"GPU_LAYERS"`
}

// Model is one catalog entry. Source and Target are set for translation
// only; Variant for the other capabilities.
type Model struct {
	Capability string            `json:"capability" yaml:"capability" toml:"capability"`
	Source     string            `json:"source,omitempty" yaml:"source,omitempty" toml:"source,omitempty"`
	Target     string            `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty"`
	Variant    string            `json:"variant,omitempty" yaml:"variant,omitempty" toml:"variant,omitempty"`
	Backend    string            `json:"backend" yaml:"backend" toml:"backend"`
	Model      string            `json:"model,omitempty" yaml:"model,omitempty" toml:"model,omitempty"`
	Options    map[string]string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.QueueDepth <= 0 {
		c.QueueDepth = DefaultQueueDepth
	}
	if c.MaxWaitMS <= 0 {
		c.MaxWaitMS = DefaultMaxWaitMS
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
}

// Validate checks values that cannot be corrected by defaults.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log_format: want console or json, got %q", c.LogFormat)
	}
	if _, err := c.Specs(); err != nil {
		return err
	}
	return nil
}

// RequestTimeout is the per-request dispatch bound of the HTTP API.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// MaxWait is the admission wait bound for a busy engine.
func (c Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitMS) * time.Millisecond
}

// Specs converts the model entries into engine specs.
func (c Config) Specs() ([]engine.Spec, error) {
	specs := make([]engine.Spec, 0, len(c.Models))
	for i, m := range c.Models {
		capability, err := engine.ParseCapability(strings.TrimSpace(m.Capability))
		if err != nil {
			return nil, fmt.Errorf("models[%d]: %w", i, err)
		}
		s := engine.Spec{
			Capability: capability,
			Variant:    m.Variant,
			Backend:    m.Backend,
			Model:      m.Model,
			Options:    m.Options,
		}
		if capability == engine.Translation {
			if s.Pair, err = lang.ResolvePair(m.Source, m.Target); err != nil {
				return nil, fmt.Errorf("models[%d]: %w", i, err)
			}
		} else if m.Source != "" || m.Target != "" {
			return nil, fmt.Errorf("models[%d]: source/target only apply to translation", i)
		}
		specs = append(specs, s)
	}
	return specs, nil
}
