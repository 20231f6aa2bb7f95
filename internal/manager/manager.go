package manager

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"nlpd/internal/backend"
	"nlpd/internal/catalog"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
	"nlpd/internal/registry"
)

// Manager owns the engine registries. It is safe for concurrent use; create
// one per process and share it.
type Manager struct {
	catalog  *catalog.Catalog
	backends *backend.Registry
	log      zerolog.Logger

	translators *registry.Registry[lang.Pair, engine.Translator]
	encoders    *registry.Registry[catalog.Variant, engine.Encoder]
	summarizers *registry.Registry[catalog.Variant, engine.Summarizer]
	answerers   *registry.Registry[catalog.Variant, engine.Answerer]
	classifiers *registry.Registry[catalog.Variant, engine.Classifier]
	taggers     *registry.Registry[catalog.Variant, engine.Tagger]

	pubMu     sync.RWMutex
	publisher EventPublisher

	startTime     time.Time
	ready         atomic.Bool
	buildsTotal   atomic.Uint64
	buildFailures atomic.Uint64

	errMu   sync.Mutex
	lastErr string
}

// New constructs a Manager. Engines are built lazily on first use, or
// ahead of time through Preload and Warmup. The manager reports ready
// until a Preload is started.
func New(cfg Config) *Manager {
	cfg = cfg.withDefaults()
	if cfg.Catalog == nil {
		cfg.Catalog, _ = catalog.New(nil, nil)
	}
	m := &Manager{
		catalog:   cfg.Catalog,
		backends:  cfg.Backends,
		log:       cfg.Logger.With().Str("component", "manager").Logger(),
		publisher: cfg.Publisher,
		startTime: time.Now(),
	}
	opts := []registry.Option{
		registry.WithQueueDepth(cfg.QueueDepth),
		registry.WithMaxWait(cfg.MaxWait),
		registry.WithLogger(cfg.Logger.With().Str("component", "registry").Logger()),
		registry.WithBuildHook(m.onBuild),
	}
	m.translators = registry.New[lang.Pair, engine.Translator](string(engine.Translation), opts...)
	m.encoders = registry.New[catalog.Variant, engine.Encoder](string(engine.Embeddings), opts...)
	m.summarizers = registry.New[catalog.Variant, engine.Summarizer](string(engine.Summarization), opts...)
	m.answerers = registry.New[catalog.Variant, engine.Answerer](string(engine.QuestionAnswering), opts...)
	m.classifiers = registry.New[catalog.Variant, engine.Classifier](string(engine.ZeroShot), opts...)
	m.taggers = registry.New[catalog.Variant, engine.Tagger](string(engine.TokenClassification), opts...)
	m.ready.Store(true)
	return m
}

// Ready reports whether startup preloading has finished.
func (m *Manager) Ready() bool { return m.ready.Load() }

// Close releases every built engine. Later dispatch calls that need a
// build fail with registry.ErrClosed.
func (m *Manager) Close() error {
	m.ready.Store(false)
	return errors.Join(
		m.translators.Close(),
		m.encoders.Close(),
		m.summarizers.Close(),
		m.answerers.Close(),
		m.classifiers.Close(),
		m.taggers.Close(),
	)
}

func (m *Manager) setLastError(err error) {
	m.errMu.Lock()
	m.lastErr = err.Error()
	m.errMu.Unlock()
}

func (m *Manager) lastError() string {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.lastErr
}
