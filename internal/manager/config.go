package manager

import (
	"time"

	"github.com/rs/zerolog"

	"nlpd/internal/backend"
	"nlpd/internal/catalog"
	"nlpd/internal/registry"
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	// Catalog maps keys to engine specs. nil means nothing is servable.
	Catalog *catalog.Catalog
	// Backends resolves spec backends to loaders.
	Backends *backend.Registry
	// QueueDepth bounds callers waiting on one busy engine (default 32).
	QueueDepth int
	// MaxWait bounds how long a caller waits for its turn (default 30s).
	MaxWait time.Duration
	Logger  zerolog.Logger
	// Publisher receives lifecycle events; nil drops them.
	Publisher EventPublisher
}

func (c Config) withDefaults() Config {
	if c.QueueDepth <= 0 {
		c.QueueDepth = registry.DefaultQueueDepth
	}
	if c.MaxWait <= 0 {
		c.MaxWait = registry.DefaultMaxWait
	}
	if c.Backends == nil {
		c.Backends = backend.NewRegistry()
	}
	if c.Publisher == nil {
		c.Publisher = noopPublisher{}
	}
	return c
}
