//go:build !llama

package llama

import (
	"context"

	"nlpd/internal/engine"
)

// Built reports whether the runtime is linked into this binary.
const Built = false

func (l *Loader) Load(_ context.Context, spec engine.Spec) (engine.Model, error) {
	return nil, engine.ErrDependencyUnavailable("llama support not built (missing 'llama' build tag): " + spec.Key())
}
