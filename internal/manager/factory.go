package manager

import (
	"context"
	"fmt"

	"nlpd/internal/catalog"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
	"nlpd/internal/registry"
)

// factoryFor returns a registry factory that loads spec through its backend
// and checks that the engine serves the capability interface H.
func factoryFor[H any](m *Manager, spec engine.Spec) registry.Factory[H] {
	return func(ctx context.Context) (H, error) {
		var zero H
		l, err := m.backends.Get(spec.Backend)
		if err != nil {
			return zero, err
		}
		m.log.Info().Str("key", spec.Key()).Str("backend", spec.Backend).Str("model", spec.Model).Msg("loading engine")
		model, err := l.Load(ctx, spec)
		if err != nil {
			return zero, err
		}
		h, ok := model.(H)
		if !ok {
			_ = model.Close()
			return zero, fmt.Errorf("%s: %w", spec.Key(), &engine.UnsupportedCapabilityError{Backend: spec.Backend, Capability: spec.Capability})
		}
		return h, nil
	}
}

func (m *Manager) translatorHandle(ctx context.Context, pair lang.Pair) (*registry.Handle[engine.Translator], error) {
	if h, ok := m.translators.Lookup(pair); ok {
		return h, nil
	}
	spec, ok := m.catalog.Translation(pair)
	if !ok {
		return nil, &ResourceUnavailableError{Capability: engine.Translation, Key: pair.String()}
	}
	return m.translators.GetOrBuild(ctx, pair, factoryFor[engine.Translator](m, spec))
}

// singleHandle returns the engine of a single-instance capability, keyed by
// its configured variant.
func singleHandle[H any](ctx context.Context, m *Manager, reg *registry.Registry[catalog.Variant, H], c engine.Capability) (*registry.Handle[H], error) {
	spec, ok := m.catalog.Single(c)
	if !ok {
		return nil, &ResourceUnavailableError{Capability: c, Key: catalog.DefaultVariant(c).String()}
	}
	return reg.GetOrBuild(ctx, catalog.Variant(spec.Variant), factoryFor[H](m, spec))
}
