package registry

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Handle is the shared reference to one built engine instance. All callers
// for a key receive the same *Handle.
type Handle[H any] struct {
	registry string
	key      string
	value    H
	builtAt  time.Time
	maxWait  time.Duration

	lastUsed atomic.Int64 // unix nanos
	calls    atomic.Uint64

	// Admission primitives
	genCh   chan struct{} // size 1: single in-flight call
	queueCh chan struct{} // buffered: admitted callers, in flight included
}

func newHandle[H any](registry, key string, value H, o options) *Handle[H] {
	h := &Handle[H]{
		registry: registry,
		key:      key,
		value:    value,
		builtAt:  time.Now(),
		maxWait:  o.maxWait,
		genCh:    make(chan struct{}, 1),
		queueCh:  make(chan struct{}, o.queueDepth),
	}
	h.lastUsed.Store(h.builtAt.UnixNano())
	return h
}

// Key returns the string form of the key this handle was built for.
func (h *Handle[H]) Key() string { return h.key }

// BuiltAt returns when the build finished.
func (h *Handle[H]) BuiltAt() time.Time { return h.builtAt }

// LastUsed returns when a caller last obtained exclusive access.
func (h *Handle[H]) LastUsed() time.Time { return time.Unix(0, h.lastUsed.Load()) }

// Calls returns how many calls have been admitted.
func (h *Handle[H]) Calls() uint64 { return h.calls.Load() }

// QueueLen returns the number of admitted callers, the running one included.
func (h *Handle[H]) QueueLen() int { return len(h.queueCh) }

// Inflight returns 1 while a call runs, else 0.
func (h *Handle[H]) Inflight() int { return len(h.genCh) }

// Do runs fn with exclusive access to the engine. It waits for a queue slot
// and then for its turn, each bounded by the registry's max wait; a full
// queue or an expired wait yields *TooBusyError. A panic in fn is returned
// as an error.
func (h *Handle[H]) Do(ctx context.Context, fn func(H) error) (err error) {
	release, err := h.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("engine panic: %v", p)
		}
	}()
	return fn(h.value)
}

// acquire reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (h *Handle[H]) acquire(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	waitStart := time.Now()

	timer := time.NewTimer(h.maxWait)
	defer timer.Stop()
	select {
	case h.queueCh <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		busyTotal.WithLabelValues(h.registry).Inc()
		return nil, &TooBusyError{Registry: h.registry, Key: h.key}
	}

	acquired := false
	defer func() {
		if !acquired {
			<-h.queueCh
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timer2 := time.NewTimer(h.maxWait)
	defer timer2.Stop()
	select {
	case h.genCh <- struct{}{}:
		acquired = true
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer2.C:
		busyTotal.WithLabelValues(h.registry).Inc()
		return nil, &TooBusyError{Registry: h.registry, Key: h.key}
	}

	admissionWait.WithLabelValues(h.registry).Observe(time.Since(waitStart).Seconds())
	h.calls.Add(1)
	h.lastUsed.Store(time.Now().UnixNano())
	return func() { <-h.genCh; <-h.queueCh }, nil
}

// HandleStatus is a point-in-time view of a handle.
type HandleStatus struct {
	Key           string
	BuiltAt       time.Time
	LastUsed      time.Time
	Calls         uint64
	QueueLen      int
	Inflight      int
	MaxQueueDepth int
}

// Status returns a point-in-time view of the handle.
func (h *Handle[H]) Status() HandleStatus {
	return HandleStatus{
		Key:           h.key,
		BuiltAt:       h.builtAt,
		LastUsed:      h.LastUsed(),
		Calls:         h.Calls(),
		QueueLen:      h.QueueLen(),
		Inflight:      h.Inflight(),
		MaxQueueDepth: cap(h.queueCh),
	}
}
