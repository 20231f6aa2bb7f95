package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"nlpd/internal/backend"
	"nlpd/internal/backend/anthropic"
	"nlpd/internal/backend/llama"
	"nlpd/internal/backend/openai"
	"nlpd/internal/catalog"
	"nlpd/internal/config"
	"nlpd/internal/engine"
	"nlpd/internal/manager"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "nlpd",
		Short:         "Lazily loaded NLP inference engines behind an HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, serveOptions{})
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(config.EnvPrefix+"CONFIG"), "Config file (yaml, json or toml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	root.PersistentFlags().StringVar(&opts.logFormat, "log-format", "", "Log format: console|json (overrides config)")

	root.AddCommand(newServeCmd(opts), newModelsCmd(opts), newLanguagesCmd(), newTranslateCmd(opts), newEmbedCmd(opts))
	return root
}

// load resolves the configuration and applies flag overrides.
func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Resolve(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger. Console output is meant for
// terminals; json for log collectors.
func newLogger(w io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), err
	}
	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Str("service", "nlpd").Logger(), nil
}

func newBackends(cfg config.Backends) *backend.Registry {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }
	r := backend.NewRegistry()
	r.Register(openai.Name, openai.New(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ChatModel:      cfg.OpenAI.ChatModel,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		MaxRetries:     cfg.OpenAI.MaxRetries,
		Timeout:        ms(cfg.OpenAI.TimeoutMS),
	}))
	r.Register(anthropic.Name, anthropic.New(anthropic.Config{
		APIKey:     cfg.Anthropic.APIKey,
		BaseURL:    cfg.Anthropic.BaseURL,
		Model:      cfg.Anthropic.Model,
		MaxRetries: cfg.Anthropic.MaxRetries,
		Timeout:    ms(cfg.Anthropic.TimeoutMS),
	}))
	r.Register(llama.Name, llama.New(llama.Config{
		ContextSize: cfg.Llama.ContextSize,
		Threads:     cfg.Llama.Threads,
		GPULayers:   cfg.Llama.GPULayers,
	}))
	return r
}

// buildCatalog merges the GGUF files found in the models directory with the
// configured entries, which win on conflict.
func buildCatalog(cfg config.Config, backends *backend.Registry, log zerolog.Logger) (*catalog.Catalog, error) {
	var scanned []engine.Spec
	if cfg.ModelsDir != "" {
		specs, err := catalog.LoadDir(cfg.ModelsDir, llama.Name)
		if err != nil {
			log.Warn().Err(err).Str("dir", cfg.ModelsDir).Msg("models dir not scanned")
		}
		scanned = specs
	}
	configured, err := cfg.Specs()
	if err != nil {
		return nil, err
	}
	return catalog.New(catalog.Merge(scanned, configured), backends.Check)
}

func newManager(cfg config.Config, log zerolog.Logger) (*manager.Manager, error) {
	backends := newBackends(cfg.Backends)
	cat, err := buildCatalog(cfg, backends, log)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	log.Info().Int("models", cat.Len()).Bool("llama_runtime", llama.Built).Msg("catalog loaded")
	return manager.New(manager.Config{
		Catalog:    cat,
		Backends:   backends,
		QueueDepth: cfg.QueueDepth,
		MaxWait:    cfg.MaxWait(),
		Logger:     log,
	}), nil
}

// splitCSV splits a comma-separated flag value, dropping blanks.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
