// Package catalog records which engine serves each resource key: one spec
// per translation pair and one per single-instance capability. A key with no
// entry has no factory, which the dispatch layer reports as unavailable.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

// Variant names the one configured model of a single-instance capability.
// It is the registry key for those capabilities.
type Variant string

func (v Variant) String() string { return string(v) }

// DefaultEmbeddingsVariant is the sentence embedding model served when the
// configuration does not name one.
const DefaultEmbeddingsVariant Variant = "AllMiniLmL12V2"

// DefaultVariant returns the variant name used when a spec leaves it empty.
func DefaultVariant(c engine.Capability) Variant {
	if c == engine.Embeddings {
		return DefaultEmbeddingsVariant
	}
	return "default"
}

// Catalog is immutable after New.
type Catalog struct {
	translations map[lang.Pair]engine.Spec
	singles      map[engine.Capability]engine.Spec
}

// New validates specs and indexes them by key. check, when non-nil, is
// applied to every spec (used to verify the backend can serve it).
func New(specs []engine.Spec, check func(engine.Spec) error) (*Catalog, error) {
	c := &Catalog{
		translations: make(map[lang.Pair]engine.Spec),
		singles:      make(map[engine.Capability]engine.Spec),
	}
	for _, s := range specs {
		s, err := normalize(s)
		if err != nil {
			return nil, err
		}
		if check != nil {
			if err := check(s); err != nil {
				return nil, err
			}
		}
		if s.Capability == engine.Translation {
			if _, dup := c.translations[s.Pair]; dup {
				return nil, fmt.Errorf("duplicate model entry %s", s.Key())
			}
			c.translations[s.Pair] = s
			continue
		}
		if prev, dup := c.singles[s.Capability]; dup {
			return nil, fmt.Errorf("%s: only one model per capability, already have %s", s.Key(), prev.Key())
		}
		c.singles[s.Capability] = s
	}
	return c, nil
}

func normalize(s engine.Spec) (engine.Spec, error) {
	if _, err := engine.ParseCapability(string(s.Capability)); err != nil {
		return s, err
	}
	s.Backend = strings.TrimSpace(s.Backend)
	if s.Backend == "" {
		return s, fmt.Errorf("%s: backend is required", s.Key())
	}
	if s.Capability == engine.Translation {
		if !s.Pair.Source.Valid() || !s.Pair.Target.Valid() {
			return s, fmt.Errorf("translation entry needs source and target languages")
		}
		if s.Pair.Source == s.Pair.Target {
			return s, fmt.Errorf("%s: source and target are the same language", s.Key())
		}
		s.Variant = ""
		return s, nil
	}
	if s.Pair != (lang.Pair{}) {
		return s, fmt.Errorf("%s: languages are only valid for translation", s.Key())
	}
	if s.Variant == "" {
		s.Variant = DefaultVariant(s.Capability).String()
	}
	return s, nil
}

// Translation returns the spec serving pair.
func (c *Catalog) Translation(pair lang.Pair) (engine.Spec, bool) {
	s, ok := c.translations[pair]
	return s, ok
}

// Single returns the spec serving a single-instance capability.
func (c *Catalog) Single(capability engine.Capability) (engine.Spec, bool) {
	s, ok := c.singles[capability]
	return s, ok
}

// Pairs lists the servable translation pairs in key order.
func (c *Catalog) Pairs() []lang.Pair {
	out := make([]lang.Pair, 0, len(c.translations))
	for p := range c.translations {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Specs returns every entry sorted by key.
func (c *Catalog) Specs() []engine.Spec {
	out := make([]engine.Spec, 0, len(c.translations)+len(c.singles))
	for _, s := range c.translations {
		out = append(out, s)
	}
	for _, s := range c.singles {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Len reports the number of entries.
func (c *Catalog) Len() int { return len(c.translations) + len(c.singles) }

// Merge returns base with every entry of overrides replacing the base entry
// of the same key. Singles are keyed by capability.
func Merge(base, overrides []engine.Spec) []engine.Spec {
	slot := func(s engine.Spec) string {
		if s.Capability == engine.Translation {
			return s.Key()
		}
		return string(s.Capability)
	}
	idx := make(map[string]int, len(base))
	out := make([]engine.Spec, 0, len(base)+len(overrides))
	for _, s := range base {
		idx[slot(s)] = len(out)
		out = append(out, s)
	}
	for _, s := range overrides {
		if i, ok := idx[slot(s)]; ok {
			out[i] = s
			continue
		}
		idx[slot(s)] = len(out)
		out = append(out, s)
	}
	return out
}
