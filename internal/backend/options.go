package backend

import (
	"fmt"
	"strconv"

	"nlpd/internal/engine"
)

// FloatOption reads a float option from spec, falling back to def when unset.
func FloatOption(spec engine.Spec, key string, def float64) (float64, error) {
	s, ok := spec.Options[key]
	if !ok || s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: option %s: %w", spec.Key(), key, err)
	}
	return f, nil
}

// IntOption reads an integer option from spec, falling back to def when unset.
func IntOption(spec engine.Spec, key string, def int) (int, error) {
	s, ok := spec.Options[key]
	if !ok || s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s: option %s: %w", spec.Key(), key, err)
	}
	return n, nil
}
