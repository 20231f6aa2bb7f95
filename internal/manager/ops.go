package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nlpd/internal/catalog"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

// Target names one buildable key: a translation pair or a single-instance
// capability.
type Target struct {
	Capability engine.Capability
	Pair       lang.Pair
}

func (t Target) String() string {
	if t.Capability == engine.Translation {
		return string(t.Capability) + "/" + t.Pair.String()
	}
	return string(t.Capability)
}

// NewTarget validates a capability name and, for translation, its languages.
func NewTarget(capability, source, target string) (Target, error) {
	c, err := engine.ParseCapability(strings.TrimSpace(capability))
	if err != nil {
		return Target{}, &InvalidInputError{Field: "capability", Reason: err.Error()}
	}
	if c != engine.Translation {
		if source != "" || target != "" {
			return Target{}, &InvalidInputError{Field: "source", Reason: "languages only apply to translation"}
		}
		return Target{Capability: c}, nil
	}
	pair, err := lang.ResolvePair(source, target)
	if err != nil {
		return Target{}, err
	}
	return Target{Capability: c, Pair: pair}, nil
}

// ParseTarget parses "translation/nl-en" or a bare capability name such as
// "embeddings". A single-instance capability may carry its variant
// ("embeddings/AllMiniLmL12V2"), which is ignored.
func ParseTarget(s string) (Target, error) {
	capName, rest, _ := strings.Cut(strings.TrimSpace(s), "/")
	if capName == string(engine.Translation) {
		src, tgt, ok := strings.Cut(rest, "-")
		if !ok {
			return Target{}, &InvalidInputError{Field: "target", Reason: fmt.Sprintf("%q: want translation/<source>-<target>", s)}
		}
		return NewTarget(capName, src, tgt)
	}
	return NewTarget(capName, "", "")
}

// ensure builds the engine behind t if it is not built yet.
func (m *Manager) ensure(ctx context.Context, t Target) error {
	var err error
	switch t.Capability {
	case engine.Translation:
		_, err = m.translatorHandle(ctx, t.Pair)
	case engine.Embeddings:
		_, err = singleHandle(ctx, m, m.encoders, t.Capability)
	case engine.Summarization:
		_, err = singleHandle(ctx, m, m.summarizers, t.Capability)
	case engine.QuestionAnswering:
		_, err = singleHandle(ctx, m, m.answerers, t.Capability)
	case engine.ZeroShot:
		_, err = singleHandle(ctx, m, m.classifiers, t.Capability)
	case engine.TokenClassification:
		_, err = singleHandle(ctx, m, m.taggers, t.Capability)
	default:
		err = &InvalidInputError{Field: "capability", Reason: fmt.Sprintf("unknown capability %q", t.Capability)}
	}
	return err
}

func (m *Manager) servable(t Target) error {
	if t.Capability == engine.Translation {
		if _, ok := m.catalog.Translation(t.Pair); !ok {
			return &ResourceUnavailableError{Capability: t.Capability, Key: t.Pair.String()}
		}
		return nil
	}
	if _, ok := m.catalog.Single(t.Capability); !ok {
		return &ResourceUnavailableError{Capability: t.Capability, Key: catalog.DefaultVariant(t.Capability).String()}
	}
	return nil
}

// Warmup starts building t in the background and returns an operation id.
// Unservable targets are rejected synchronously. The outcome is published
// as a warmup_done or warmup_failed event carrying the id.
func (m *Manager) Warmup(ctx context.Context, t Target) (string, error) {
	if err := m.servable(t); err != nil {
		return "", err
	}
	op := uuid.NewString()
	bg := context.WithoutCancel(ctx)
	go func() {
		fields := map[string]any{"op_id": op}
		if err := m.ensure(bg, t); err != nil {
			fields["error"] = err.Error()
			m.log.Warn().Err(err).Str("op_id", op).Str("target", t.String()).Msg("warmup failed")
			m.publish(Event{Name: EventWarmupFailed, Capability: string(t.Capability), Key: t.String(), Fields: fields})
			return
		}
		m.publish(Event{Name: EventWarmupDone, Capability: string(t.Capability), Key: t.String(), Fields: fields})
	}()
	return op, nil
}

// Preload builds every target concurrently and marks the manager ready when
// all builds have finished, whether or not they succeeded. It returns the
// first failure.
func (m *Manager) Preload(ctx context.Context, targets []Target) error {
	m.ready.Store(false)
	defer m.ready.Store(true)
	var g errgroup.Group
	g.SetLimit(4)
	for _, t := range targets {
		g.Go(func() error {
			if err := m.ensure(ctx, t); err != nil {
				m.log.Error().Err(err).Str("target", t.String()).Msg("preload failed")
				return fmt.Errorf("preload %s: %w", t, err)
			}
			return nil
		})
	}
	return g.Wait()
}
