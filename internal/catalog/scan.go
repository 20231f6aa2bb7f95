package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"nlpd/internal/common/fsutil"
	"nlpd/internal/engine"
	"nlpd/internal/lang"
)

// LoadDir scans dir for *.gguf files and returns one spec per file whose
// name follows the layout
//
//	translation.<src>-<dst>.gguf   e.g. translation.nl-en.gguf
//	<capability>.gguf              default variant, e.g. ner.gguf
//	<capability>.<variant>.gguf    e.g. embeddings.AllMiniLmL12V2.gguf
//
// Other files are skipped. Specs use the given backend and the absolute
// file path as model.
func LoadDir(dir, backend string) ([]engine.Spec, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var specs []engine.Spec
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		s, ok := parseFileName(name[:len(name)-len(".gguf")])
		if !ok {
			continue
		}
		s.Backend = backend
		s.Model = filepath.Join(abs, name)
		specs = append(specs, s)
	}
	return specs, nil
}

func parseFileName(stem string) (engine.Spec, bool) {
	capName, rest, _ := strings.Cut(stem, ".")
	c, err := engine.ParseCapability(capName)
	if err != nil {
		return engine.Spec{}, false
	}
	s := engine.Spec{Capability: c}
	if c == engine.Translation {
		p, err := lang.ParsePair(rest)
		if err != nil {
			return engine.Spec{}, false
		}
		s.Pair = p
		return s, true
	}
	if rest == "" {
		s.Variant = DefaultVariant(c).String()
	} else {
		s.Variant = rest
	}
	return s, true
}
