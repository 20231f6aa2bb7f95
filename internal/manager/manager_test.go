package manager

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"nlpd/internal/engine"
	"nlpd/internal/lang"
	"nlpd/internal/registry"
	"nlpd/internal/vecfmt"
)

func TestTranslate_EndToEnd(t *testing.T) {
	l := newFakeLoader(&fakeEngine{translations: map[string]string{"hallo": "  hello\n"}})
	m := newTestManager(t, l)

	got, err := m.Translate(testCtx(t), "nl", "en", "hallo")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected %q, got %q", "hello", got)
	}
	if l.loads["translation/nl-en"] != 1 {
		t.Fatalf("expected one load, got %v", l.loads)
	}
	// second call reuses the engine
	if _, err := m.Translate(testCtx(t), "nl", "en", "hallo"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if l.total() != 1 {
		t.Fatalf("engine rebuilt: %v", l.loads)
	}
}

func TestTranslate_UnsupportedLanguageTouchesNothing(t *testing.T) {
	l := newFakeLoader(&fakeEngine{})
	m := newTestManager(t, l)

	for _, c := range [][2]string{{"xx", "en"}, {"nl", "fr"}, {"NL", "en"}, {"", ""}} {
		_, err := m.Translate(testCtx(t), c[0], c[1], "hallo")
		if !lang.IsUnsupportedLanguage(err) {
			t.Fatalf("%v: expected unsupported language, got %v", c, err)
		}
		if KindOf(err) != KindUnsupportedLanguage {
			t.Fatalf("%v: kind %q", c, KindOf(err))
		}
	}
	if l.total() != 0 || m.translators.Len() != 0 {
		t.Fatalf("registry touched: loads=%v len=%d", l.loads, m.translators.Len())
	}
}

func TestTranslate_UnservedPair(t *testing.T) {
	l := newFakeLoader(&fakeEngine{})
	m := newTestManager(t, l)

	_, err := m.Translate(testCtx(t), "nl", "sv", "hallo")
	if !IsResourceUnavailable(err) || KindOf(err) != KindResourceUnavailable {
		t.Fatalf("expected resource unavailable, got %v", err)
	}
	if l.total() != 0 {
		t.Fatalf("loader called: %v", l.loads)
	}
}

func TestBuildFailureIsNotCached(t *testing.T) {
	l := newFakeLoader(&fakeEngine{translations: map[string]string{"hallo": "hello"}})
	l.failures = 1
	pub := NewMemoryPublisher()
	m := newTestManager(t, l, func(c *Config) { c.Publisher = pub })

	_, err := m.Translate(testCtx(t), "nl", "en", "hallo")
	if !registry.IsBuildFailed(err) || KindOf(err) != KindBuildFailed {
		t.Fatalf("expected build failure, got %v", err)
	}
	got, err := m.Translate(testCtx(t), "nl", "en", "hallo")
	if err != nil || got != "hello" {
		t.Fatalf("retry: got %q err=%v", got, err)
	}
	if l.loads["translation/nl-en"] != 2 {
		t.Fatalf("expected two loads, got %v", l.loads)
	}
	want := []string{EventBuildStart, EventBuildFailed, EventBuildStart, EventBuildReady}
	names := pub.Names()
	if len(names) != len(want) {
		t.Fatalf("events %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("events %v, want %v", names, want)
		}
	}
	st := m.Status()
	if st.BuildsTotal != 1 || st.BuildFailures != 1 || st.LastError == "" {
		t.Fatalf("unexpected build counters: %+v", st)
	}
}

func TestEngineWithoutCapabilityFailsBuild(t *testing.T) {
	l := newFakeLoader(nil)
	l.model = closerOnly{}
	m := newTestManager(t, l)

	_, err := m.Summarize(testCtx(t), "text")
	var uc *engine.UnsupportedCapabilityError
	if !registry.IsBuildFailed(err) || !errors.As(err, &uc) {
		t.Fatalf("expected build failure wrapping unsupported capability, got %v", err)
	}
}

func TestInferenceFailure(t *testing.T) {
	boom := errors.New("cuda out of memory")
	m := newTestManager(t, newFakeLoader(&fakeEngine{err: boom}))

	_, err := m.Translate(testCtx(t), "nl", "en", "hallo")
	if !IsInferenceFailed(err) || !errors.Is(err, boom) || KindOf(err) != KindInferenceFailed {
		t.Fatalf("expected inference failure wrapping boom, got %v", err)
	}
}

func TestEmptyEngineOutputIsInferenceFailure(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{empty: true}))
	if _, err := m.Translate(testCtx(t), "nl", "en", "hallo"); !IsInferenceFailed(err) {
		t.Fatalf("expected inference failure, got %v", err)
	}
}

func TestConcurrentFirstUseBuildsOnce(t *testing.T) {
	l := newFakeLoader(&fakeEngine{translations: map[string]string{"hallo": "hello"}})
	l.delay = 20 * time.Millisecond
	m := newTestManager(t, l)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got, err := m.Translate(testCtx(t), "nl", "en", "hallo"); err != nil || got != "hello" {
				errs <- errors.Join(err, errors.New("got "+got))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent translate: %v", err)
	}
	if l.total() != 1 {
		t.Fatalf("expected one build, got %v", l.loads)
	}
}

func TestTooBusy(t *testing.T) {
	e := &fakeEngine{
		translations: map[string]string{"hallo": "hello"},
		block:        make(chan struct{}),
		entered:      make(chan struct{}, 1),
	}
	m := newTestManager(t, newFakeLoader(e), func(c *Config) {
		c.QueueDepth = 1
		c.MaxWait = 20 * time.Millisecond
	})

	done := make(chan error, 1)
	go func() {
		_, err := m.Translate(testCtx(t), "nl", "en", "hallo")
		done <- err
	}()
	<-e.entered

	_, err := m.Translate(testCtx(t), "nl", "en", "hallo")
	if !registry.IsTooBusy(err) || KindOf(err) != KindTooBusy {
		t.Fatalf("expected too busy, got %v", err)
	}
	close(e.block)
	if err := <-done; err != nil {
		t.Fatalf("first call: %v", err)
	}
}

func TestSentenceEmbeddings(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{vector: []float32{0.12345678907, 1, 2}}))
	got, err := m.SentenceEmbeddings(testCtx(t), "hello")
	if err != nil {
		t.Fatalf("SentenceEmbeddings: %v", err)
	}
	if got != "[0.12345679,1.0,2.0]" {
		t.Fatalf("unexpected vector text %q", got)
	}
}

func TestSentenceEmbeddings_NonFinite(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{vector: []float32{1, float32(math.NaN())}}))
	_, err := m.SentenceEmbeddings(testCtx(t), "hello")
	if !vecfmt.IsSerialization(err) || KindOf(err) != KindSerialization {
		t.Fatalf("expected serialization error, got %v", err)
	}
}

func TestSummarizeKeepsEngineOutput(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{summary: " short. "}))
	got, err := m.Summarize(testCtx(t), "long text")
	if err != nil || got != " short. " {
		t.Fatalf("got %q err=%v", got, err)
	}
}

func TestAskReturnsBestAnswer(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{answers: []engine.Answer{
		{Score: 0.2, Start: 0, End: 3, Answer: "Amy"},
		{Score: 0.9, Start: 13, End: 22, Answer: "Amsterdam"},
	}}))
	a, err := m.Ask(testCtx(t), "Where does Amy live?", "Amy lives in Amsterdam.")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if a.Answer != "Amsterdam" || a.Start != 13 || a.End != 22 || a.Score != 0.9 {
		t.Fatalf("unexpected answer %+v", a)
	}
}

func TestZeroShot(t *testing.T) {
	l := newFakeLoader(&fakeEngine{labels: []engine.Label{{Label: "politics", Score: 0.1}, {Label: "sports", Score: 0.8}}})
	m := newTestManager(t, l)

	if _, err := m.ZeroShot(testCtx(t), "text", []string{" ", ""}); !IsInvalidInput(err) || KindOf(err) != KindInvalidInput {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if l.total() != 0 {
		t.Fatalf("loader called for invalid input")
	}
	got, err := m.ZeroShot(testCtx(t), "The striker scored.", []string{"politics", "sports"})
	if err != nil {
		t.Fatalf("ZeroShot: %v", err)
	}
	if got.Label != "sports" || got.Score != 0.8 {
		t.Fatalf("unexpected label %+v", got)
	}
}

func TestNER(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{entities: []engine.Entity{
		{Word: "Amy", Score: 0.99, Label: "PER", Offset: 0},
		{Word: "Amsterdam", Score: 0.97, Label: "LOC", Offset: 13},
	}}))
	ents, err := m.NER(testCtx(t), "Amy lives in Amsterdam.")
	if err != nil {
		t.Fatalf("NER: %v", err)
	}
	if len(ents) != 2 || ents[1].Word != "Amsterdam" || ents[1].Offset != 13 || ents[0].Label != "PER" {
		t.Fatalf("unexpected entities %+v", ents)
	}
}

func TestSingleCapabilityNotConfigured(t *testing.T) {
	m := New(Config{})
	defer m.Close()
	if _, err := m.NER(testCtx(t), "x"); !IsResourceUnavailable(err) {
		t.Fatalf("expected resource unavailable, got %v", err)
	}
	if m.taggers.Len() != 0 {
		t.Fatalf("unexpected build")
	}
}

func TestWarmupBuildsInBackground(t *testing.T) {
	l := newFakeLoader(&fakeEngine{})
	pub := NewMemoryPublisher()
	m := newTestManager(t, l, func(c *Config) { c.Publisher = pub })

	tgt, err := NewTarget("embeddings", "", "")
	if err != nil {
		t.Fatalf("NewTarget: %v", err)
	}
	op, err := m.Warmup(testCtx(t), tgt)
	if err != nil {
		t.Fatalf("Warmup: %v", err)
	}
	if _, err := uuid.Parse(op); err != nil {
		t.Fatalf("op id %q: %v", op, err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		done := false
		for _, e := range pub.Events() {
			if e.Name == EventWarmupDone && e.Fields["op_id"] == op {
				done = true
			}
		}
		if done {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("warmup did not finish; events: %v", pub.Names())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if m.encoders.Len() != 1 {
		t.Fatalf("encoder not built")
	}

	unserved, _ := NewTarget("translation", "nl", "sv")
	if _, err := m.Warmup(testCtx(t), unserved); !IsResourceUnavailable(err) {
		t.Fatalf("expected resource unavailable, got %v", err)
	}
}

func TestPreload(t *testing.T) {
	l := newFakeLoader(&fakeEngine{})
	m := newTestManager(t, l)

	var targets []Target
	for _, s := range []string{"translation/nl-en", "embeddings/AllMiniLmL12V2", "ner"} {
		tgt, err := ParseTarget(s)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", s, err)
		}
		targets = append(targets, tgt)
	}
	if err := m.Preload(testCtx(t), targets); err != nil {
		t.Fatalf("Preload: %v", err)
	}
	if !m.Ready() || l.total() != 3 {
		t.Fatalf("ready=%v loads=%v", m.Ready(), l.loads)
	}

	l.failures = 1
	failing, _ := ParseTarget("summarization")
	if err := m.Preload(testCtx(t), []Target{failing}); !registry.IsBuildFailed(err) {
		t.Fatalf("expected build failure, got %v", err)
	}
	if !m.Ready() {
		t.Fatalf("manager should be ready after preload finished")
	}
}

func TestParseTarget(t *testing.T) {
	good := map[string]string{
		"translation/nl-en": "translation/nl-en",
		"embeddings":        "embeddings",
		" qa ":              "qa",
		"ner/conll":         "ner",
	}
	for in, want := range good {
		tgt, err := ParseTarget(in)
		if err != nil || tgt.String() != want {
			t.Fatalf("ParseTarget(%q) = %v, %v; want %s", in, tgt, err, want)
		}
	}
	if _, err := ParseTarget("translation/nl"); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := ParseTarget("translation/xx-en"); !lang.IsUnsupportedLanguage(err) {
		t.Fatalf("expected unsupported language, got %v", err)
	}
	if _, err := ParseTarget("poetry"); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := NewTarget("ner", "en", ""); !IsInvalidInput(err) {
		t.Fatalf("expected invalid input for languages on ner, got %v", err)
	}
}

func TestStatusAndModels(t *testing.T) {
	m := newTestManager(t, newFakeLoader(&fakeEngine{translations: map[string]string{"hallo": "hello"}}))
	if _, err := m.Translate(testCtx(t), "nl", "en", "hallo"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	st := m.Status()
	if len(st.Registries) != 6 || st.Registries[0].Capability != "translation" {
		t.Fatalf("unexpected registries %+v", st.Registries)
	}
	hs := st.Registries[0].Handles
	if len(hs) != 1 || hs[0].Key != "nl-en" || hs[0].Calls != 1 || hs[0].LastUsed == 0 || hs[0].MaxQueueDepth != registry.DefaultQueueDepth {
		t.Fatalf("unexpected handle status %+v", hs)
	}
	if !st.Ready {
		t.Fatalf("expected ready")
	}

	models := m.Models()
	if len(models.Models) != 6 {
		t.Fatalf("expected 6 models, got %+v", models.Models)
	}
	loaded := map[string]bool{}
	for _, mdl := range models.Models {
		loaded[mdl.Key] = mdl.Loaded
	}
	if !loaded["translation/nl-en"] || loaded["embeddings/AllMiniLmL12V2"] {
		t.Fatalf("unexpected loaded flags %v", loaded)
	}
	if len(models.Backends) != 1 || models.Backends[0].Name != "fake" || len(models.Backends[0].Capabilities) != 6 {
		t.Fatalf("unexpected backends %+v", models.Backends)
	}
	if langs := m.Languages().Languages; len(langs) != 13 || langs[0].Code != "en" || langs[0].Name != "English" {
		t.Fatalf("unexpected languages %+v", langs)
	}
}

func TestCloseReleasesEngines(t *testing.T) {
	e := &fakeEngine{translations: map[string]string{"hallo": "hello"}}
	m := newTestManager(t, newFakeLoader(e))
	if _, err := m.Translate(testCtx(t), "nl", "en", "hallo"); err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !e.closed.Load() {
		t.Fatalf("engine not closed")
	}
	if _, err := m.Translate(testCtx(t), "nl", "en", "hallo"); !errors.Is(err, registry.ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestKindOf(t *testing.T) {
	cases := map[Kind]error{
		"":                      nil,
		KindCanceled:            context.Canceled,
		KindTimeout:             context.DeadlineExceeded,
		KindInternal:            errors.New("x"),
		KindResourceUnavailable: &ResourceUnavailableError{Capability: engine.Embeddings, Key: "v"},
		KindBuildFailed:         &registry.BuildError{Registry: "qa", Key: "v", Err: engine.ErrDependencyUnavailable("no llama")},
		KindTooBusy:             &registry.TooBusyError{Registry: "qa", Key: "v"},
		KindInferenceFailed:     &InferenceError{Capability: engine.ZeroShot, Key: "v", Err: context.Canceled},
	}
	for want, err := range cases {
		if got := KindOf(err); got != want {
			t.Fatalf("KindOf(%v) = %q, want %q", err, got, want)
		}
	}
}
