package registry

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when the corresponding option is unset or non-positive.
const (
	DefaultQueueDepth = 32
	DefaultMaxWait    = 30 * time.Second
)

type options struct {
	queueDepth int
	maxWait    time.Duration
	logger     zerolog.Logger
	onBuild    func(BuildEvent)
}

// Option configures a Registry.
type Option func(*options)

// WithQueueDepth bounds how many callers may wait on one handle.
func WithQueueDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.queueDepth = n
		}
	}
}

// WithMaxWait bounds how long a caller waits for a queue slot or for its turn.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.maxWait = d
		}
	}
}

// WithLogger sets the logger used for build lifecycle messages.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBuildHook installs a callback invoked at build start, success and
// failure. It runs on the building goroutine and must not block.
func WithBuildHook(fn func(BuildEvent)) Option {
	return func(o *options) { o.onBuild = fn }
}

func defaultOptions() options {
	return options{
		queueDepth: DefaultQueueDepth,
		maxWait:    DefaultMaxWait,
		logger:     zerolog.Nop(),
	}
}

// BuildPhase identifies a point in a build's lifecycle.
type BuildPhase string

const (
	BuildStarted   BuildPhase = "build_start"
	BuildSucceeded BuildPhase = "build_ready"
	BuildFailed    BuildPhase = "build_failed"
)

// BuildEvent is delivered to the build hook.
type BuildEvent struct {
	Registry string
	Key      string
	Phase    BuildPhase
	Duration time.Duration
	Err      error
}
