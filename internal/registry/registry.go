package registry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key identifies one engine instance. String must be unique per key value;
// it names the in-flight build and labels logs and status output.
type Key interface {
	comparable
	String() string
}

// Factory constructs the value for a key. It runs at most once at a time per
// key and never under the registry lock.
type Factory[H any] func(ctx context.Context) (H, error)

// ErrClosed is returned by GetOrBuild after Close.
var ErrClosed = errors.New("registry closed")

// Registry maps keys to shared handles, building each handle on first use.
// Entries are never evicted; Close releases them at shutdown.
type Registry[K Key, H any] struct {
	name string
	opts options

	mu      sync.RWMutex
	entries map[K]*Handle[H]
	closed  bool

	group singleflight.Group
}

// New returns an empty registry. name labels metrics, logs and errors.
func New[K Key, H any](name string, opts ...Option) *Registry[K, H] {
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return &Registry[K, H]{
		name:    name,
		opts:    o,
		entries: make(map[K]*Handle[H]),
	}
}

// Name returns the registry name.
func (r *Registry[K, H]) Name() string { return r.name }

// Lookup returns the handle for key if it has been built.
func (r *Registry[K, H]) Lookup(key K) (*Handle[H], bool) {
	r.mu.RLock()
	h, ok := r.entries[key]
	r.mu.RUnlock()
	return h, ok
}

// GetOrBuild returns the handle for key, invoking factory if no handle exists.
// Concurrent callers for the same key share one build and wait for its
// outcome; a caller whose ctx ends stops waiting while the build carries on
// and is cached for later callers. A failed build is reported as a
// *BuildError and not cached.
func (r *Registry[K, H]) GetOrBuild(ctx context.Context, key K, factory Factory[H]) (*Handle[H], error) {
	if h, ok := r.Lookup(key); ok {
		return h, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ch := r.group.DoChan(key.String(), func() (any, error) {
		return r.build(ctx, key, factory)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle[H]), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry[K, H]) build(ctx context.Context, key K, factory Factory[H]) (*Handle[H], error) {
	r.mu.RLock()
	h, ok := r.entries[key]
	closed := r.closed
	r.mu.RUnlock()
	if ok {
		return h, nil
	}
	if closed {
		return nil, ErrClosed
	}
	if factory == nil {
		return nil, &BuildError{Registry: r.name, Key: key.String(), Err: errors.New("no factory")}
	}

	log := r.opts.logger.With().Str("registry", r.name).Str("key", key.String()).Logger()
	start := time.Now()
	r.emit(BuildEvent{Registry: r.name, Key: key.String(), Phase: BuildStarted})
	log.Debug().Msg("build start")

	val, err := runFactory(context.WithoutCancel(ctx), factory)
	dur := time.Since(start)
	buildDuration.WithLabelValues(r.name).Observe(dur.Seconds())
	if err != nil {
		buildsTotal.WithLabelValues(r.name, "error").Inc()
		berr := &BuildError{Registry: r.name, Key: key.String(), Err: err}
		r.emit(BuildEvent{Registry: r.name, Key: key.String(), Phase: BuildFailed, Duration: dur, Err: berr})
		log.Warn().Err(err).Dur("dur", dur).Msg("build failed")
		return nil, berr
	}

	h = newHandle(r.name, key.String(), val, r.opts)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = closeValue(val)
		return nil, ErrClosed
	}
	r.entries[key] = h
	n := len(r.entries)
	r.mu.Unlock()

	buildsTotal.WithLabelValues(r.name, "ok").Inc()
	entriesGauge.WithLabelValues(r.name).Set(float64(n))
	r.emit(BuildEvent{Registry: r.name, Key: key.String(), Phase: BuildSucceeded, Duration: dur})
	log.Info().Dur("dur", dur).Msg("build ready")
	return h, nil
}

// runFactory converts a factory panic into an error so a bad engine cannot
// take the process down.
func runFactory[H any](ctx context.Context, factory Factory[H]) (val H, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("factory panic: %v", p)
		}
	}()
	return factory(ctx)
}

func (r *Registry[K, H]) emit(ev BuildEvent) {
	if r.opts.onBuild != nil {
		r.opts.onBuild(ev)
	}
}

// Len returns the number of built entries.
func (r *Registry[K, H]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Keys returns the built keys ordered by their string form.
func (r *Registry[K, H]) Keys() []K {
	r.mu.RLock()
	out := make([]K, 0, len(r.entries))
	for k := range r.entries {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Snapshot reports the state of every built handle, ordered by key.
func (r *Registry[K, H]) Snapshot() []HandleStatus {
	r.mu.RLock()
	out := make([]HandleStatus, 0, len(r.entries))
	for _, h := range r.entries {
		out = append(out, h.Status())
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Close rejects further builds and releases every built value that
// implements io.Closer. Handles already held by callers stay usable until
// their engine reports otherwise.
func (r *Registry[K, H]) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handles := make([]*Handle[H], 0, len(r.entries))
	for _, h := range r.entries {
		handles = append(handles, h)
	}
	clear(r.entries)
	r.mu.Unlock()
	entriesGauge.WithLabelValues(r.name).Set(0)

	var errs []error
	for _, h := range handles {
		if err := closeValue(h.value); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", r.name, h.key, err))
		}
	}
	return errors.Join(errs...)
}

func closeValue(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
