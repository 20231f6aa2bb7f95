package manager

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"nlpd/internal/backend"
	"nlpd/internal/catalog"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

func testCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// fakeEngine serves every capability from canned data.
type fakeEngine struct {
	translations map[string]string
	vector       []float32
	summary      string
	answers      []engine.Answer
	labels       []engine.Label
	entities     []engine.Entity
	err          error
	empty        bool
	// block, when set, holds every call until closed; entered is signalled first.
	block   chan struct{}
	entered chan struct{}
	closed  atomic.Bool
}

func (f *fakeEngine) Close() error { f.closed.Store(true); return nil }

func (f *fakeEngine) wait(ctx context.Context) error {
	if f.block == nil {
		return f.err
	}
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	select {
	case <-f.block:
	case <-ctx.Done():
		return ctx.Err()
	}
	return f.err
}

func (f *fakeEngine) Translate(ctx context.Context, texts []string, _, _ lang.Code) ([]string, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.empty {
		return nil, nil
	}
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = f.translations[t]
	}
	return out, nil
}

func (f *fakeEngine) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEngine) Summarize(ctx context.Context, texts []string) ([]string, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	out := make([]string, len(texts))
	for i := range texts {
		out[i] = f.summary
	}
	return out, nil
}

func (f *fakeEngine) Answer(ctx context.Context, in []engine.QAInput) ([][]engine.Answer, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	out := make([][]engine.Answer, len(in))
	for i := range in {
		out[i] = f.answers
	}
	return out, nil
}

func (f *fakeEngine) Classify(ctx context.Context, texts, _ []string) ([][]engine.Label, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	out := make([][]engine.Label, len(texts))
	for i := range texts {
		out[i] = f.labels
	}
	return out, nil
}

func (f *fakeEngine) Tag(ctx context.Context, texts []string) ([][]engine.Entity, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	out := make([][]engine.Entity, len(texts))
	for i := range texts {
		out[i] = f.entities
	}
	return out, nil
}

// closerOnly is a model that serves no capability.
type closerOnly struct{}

func (closerOnly) Close() error { return nil }

// fakeLoader counts loads per key and can fail the first N of them.
type fakeLoader struct {
	mu       sync.Mutex
	loads    map[string]int
	failures int
	delay    time.Duration
	engine   *fakeEngine
	model    engine.Model
}

func newFakeLoader(e *fakeEngine) *fakeLoader {
	return &fakeLoader{loads: map[string]int{}, engine: e}
}

func (l *fakeLoader) Supports(engine.Capability) bool { return true }

func (l *fakeLoader) Load(_ context.Context, spec engine.Spec) (engine.Model, error) {
	l.mu.Lock()
	l.loads[spec.Key()]++
	fail := l.failures > 0
	if fail {
		l.failures--
	}
	l.mu.Unlock()
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if fail {
		return nil, errors.New("weights missing")
	}
	if l.model != nil {
		return l.model, nil
	}
	return l.engine, nil
}

func (l *fakeLoader) total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.loads {
		n += c
	}
	return n
}

var nlEN = lang.Pair{Source: lang.Dutch, Target: lang.English}

// allSpecs serves nl-en translation and every single-instance capability.
func allSpecs() []engine.Spec {
	specs := []engine.Spec{{Capability: engine.Translation, Pair: nlEN, Backend: "fake"}}
	for _, c := range engine.Capabilities()[1:] {
		specs = append(specs, engine.Spec{Capability: c, Backend: "fake"})
	}
	return specs
}

func newTestManager(t *testing.T, l *fakeLoader, mutate ...func(*Config)) *Manager {
	t.Helper()
	backends := backend.NewRegistry()
	backends.Register("fake", l)
	cat, err := catalog.New(allSpecs(), backends.Check)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	cfg := Config{Catalog: cat, Backends: backends, Logger: zerolog.Nop()}
	for _, fn := range mutate {
		fn(&cfg)
	}
	m := New(cfg)
	t.Cleanup(func() { _ = m.Close() })
	return m
}
