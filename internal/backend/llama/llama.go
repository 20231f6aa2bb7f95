// Package llama loads GGUF models in process through go-llama.cpp. The
// runtime is linked only with the 'llama' build tag; default builds carry a
// stub whose Load reports the dependency as unavailable.
package llama

import "nlpd/internal/engine"

// Name is the backend name used in configuration.
const Name = "llama"

// Config holds runtime settings shared by every model of this backend.
type Config struct {
	ContextSize int
	Threads     int
	GPULayers   int
}

// Loader implements engine.Loader for every capability. Embeddings use the
// model's embedding output; the text capabilities prompt the model.
type Loader struct {
	cfg Config
}

// New builds a loader. Zero settings fall back to runtime defaults.
func New(cfg Config) *Loader {
	if cfg.ContextSize <= 0 {
		cfg.ContextSize = 2048
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 4
	}
	return &Loader{cfg: cfg}
}

func (l *Loader) Supports(engine.Capability) bool { return true }
