package manager

import (
	"context"
	"errors"
	"fmt"

	"nlpd/internal/engine"
)

// Kind classifies a dispatch failure so callers can tell bad input from a
// temporarily unavailable key from a failed computation.
type Kind string

const (
	KindUnsupportedLanguage Kind = "unsupported_language"
	KindInvalidInput        Kind = "invalid_input"
	KindResourceUnavailable Kind = "resource_unavailable"
	KindBuildFailed         Kind = "build_failed"
	KindTooBusy             Kind = "too_busy"
	KindInferenceFailed     Kind = "inference_failed"
	KindSerialization       Kind = "serialization"
	KindCanceled            Kind = "canceled"
	KindTimeout             Kind = "timeout"
	KindInternal            Kind = "internal"
)

type kinded interface{ Kind() string }

// KindOf classifies err. The outermost typed error in the chain decides, so
// a build failure caused by a missing runtime is still a build failure.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var k kinded
	if errors.As(err, &k) {
		return Kind(k.Kind())
	}
	switch {
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	}
	return KindInternal
}

// ResourceUnavailableError reports a key with no configured engine, e.g. a
// language pair nobody serves although both codes are valid.
type ResourceUnavailableError struct {
	Capability engine.Capability
	Key        string
}

func (e *ResourceUnavailableError) Error() string {
	return fmt.Sprintf("no %s model configured for %s", e.Capability, e.Key)
}

func (e *ResourceUnavailableError) Kind() string { return string(KindResourceUnavailable) }

// IsResourceUnavailable reports whether err indicates an unserved key.
func IsResourceUnavailable(err error) bool {
	var e *ResourceUnavailableError
	return errors.As(err, &e)
}

// InferenceError wraps a failure raised by a built engine during a call.
type InferenceError struct {
	Capability engine.Capability
	Key        string
	Err        error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("%s %s: inference failed: %v", e.Capability, e.Key, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

func (e *InferenceError) Kind() string { return string(KindInferenceFailed) }

// IsInferenceFailed reports whether err is an engine runtime failure.
func IsInferenceFailed(err error) bool {
	var e *InferenceError
	return errors.As(err, &e)
}

// InvalidInputError reports a malformed request argument.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string { return e.Field + ": " + e.Reason }

func (e *InvalidInputError) Kind() string { return string(KindInvalidInput) }

// IsInvalidInput reports whether err is a caller argument error.
func IsInvalidInput(err error) bool {
	var e *InvalidInputError
	return errors.As(err, &e)
}
