package registry

import (
	"errors"
	"fmt"
)

// BuildError reports a failed construction. The key stays buildable.
type BuildError struct {
	Registry string
	Key      string
	Err      error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s %s: %v", e.Registry, e.Key, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Kind classifies the error for the boundary layer.
func (e *BuildError) Kind() string { return "build_failed" }

// IsBuildFailed reports whether err wraps a *BuildError.
func IsBuildFailed(err error) bool {
	var e *BuildError
	return errors.As(err, &e)
}

// TooBusyError signals queue overflow or an expired wait on a handle.
type TooBusyError struct {
	Registry string
	Key      string
}

func (e *TooBusyError) Error() string { return "too busy: " + e.Registry + " " + e.Key }

// Kind classifies the error for the boundary layer.
func (e *TooBusyError) Kind() string { return "too_busy" }

// IsTooBusy reports whether err indicates backpressure.
func IsTooBusy(err error) bool {
	var e *TooBusyError
	return errors.As(err, &e)
}
