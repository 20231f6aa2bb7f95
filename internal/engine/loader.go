package engine

import (
	"context"
	"errors"
	"fmt"

	"nlpd/internal/lang"
)

// Spec describes one loadable engine instance.
type Spec struct {
	Capability Capability
	// Pair is set for Translation only.
	Pair lang.Pair
	// Variant names the model variant of a single-instance capability.
	Variant string
	// Backend selects the Loader.
	Backend string
	// Model is the backend's model identifier: a remote model name or a file path.
	Model string
	// Options are backend specific (e.g. "temperature", "max_tokens").
	Options map[string]string
}

// Key returns the catalog key, e.g. "translation/nl-en" or "embeddings/AllMiniLmL12V2".
func (s Spec) Key() string {
	if s.Capability == Translation {
		return string(s.Capability) + "/" + s.Pair.String()
	}
	return string(s.Capability) + "/" + s.Variant
}

// Loader constructs engines for one backend. Load may take seconds and is
// only ever invoked by a registry factory.
type Loader interface {
	Supports(c Capability) bool
	Load(ctx context.Context, spec Spec) (Model, error)
}

// UnsupportedCapabilityError is returned by a Loader asked for a capability
// it does not implement.
type UnsupportedCapabilityError struct {
	Backend    string
	Capability Capability
}

func (e *UnsupportedCapabilityError) Error() string {
	return fmt.Sprintf("backend %s does not support %s", e.Backend, e.Capability)
}

// dependencyUnavailableError signals a backend that was compiled out or
// lacks its runtime (e.g. no llama.cpp, no API key).
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependency-unavailable error.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}
