// Package lang resolves external language identifiers into the closed set of
// languages the inference engines are known to serve. It owns the only
// code <-> language mapping in the module; every other package goes through it.
package lang

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Code is a member of the closed set of supported languages. The zero value
// is not a valid language.
type Code uint8

const (
	English Code = iota + 1
	Spanish
	Portuguese
	Italian
	Catalan
	German
	Russian
	ChineseMandarin
	Dutch
	Swedish
	Arabic
	Hebrew
	Hindi
)

type entry struct {
	code string
	tag  language.Tag
}

// table is indexed by Code; index 0 is the invalid zero value.
var table = [...]entry{
	{},
	English:         {"en", language.English},
	Spanish:         {"es", language.Spanish},
	Portuguese:      {"pt", language.Portuguese},
	Italian:         {"it", language.Italian},
	Catalan:         {"ca", language.Catalan},
	German:          {"de", language.German},
	Russian:         {"ru", language.Russian},
	ChineseMandarin: {"zh", language.Chinese},
	Dutch:           {"nl", language.Dutch},
	Swedish:         {"sv", language.Swedish},
	Arabic:          {"ar", language.Arabic},
	Hebrew:          {"he", language.Hebrew},
	Hindi:           {"hi", language.Hindi},
}

var byCode = func() map[string]Code {
	m := make(map[string]Code, len(table)-1)
	for i := 1; i < len(table); i++ {
		m[table[i].code] = Code(i)
	}
	return m
}()

// Resolve maps an external code such as "nl" to its Code. Matching is exact
// and case-sensitive; anything outside the table yields an
// *UnsupportedLanguageError.
func Resolve(code string) (Code, error) {
	if c, ok := byCode[code]; ok {
		return c, nil
	}
	return 0, &UnsupportedLanguageError{Code: code}
}

// All returns every supported code in table order.
func All() []Code {
	out := make([]Code, 0, len(table)-1)
	for i := 1; i < len(table); i++ {
		out = append(out, Code(i))
	}
	return out
}

// Valid reports whether c is a member of the table.
func (c Code) Valid() bool { return c > 0 && int(c) < len(table) }

// String returns the external code ("nl"), or "invalid" for values outside the table.
func (c Code) String() string {
	if !c.Valid() {
		return "invalid"
	}
	return table[c].code
}

// Tag returns the BCP 47 tag for c.
func (c Code) Tag() language.Tag {
	if !c.Valid() {
		return language.Und
	}
	return table[c].tag
}

// Name returns the English display name ("Dutch").
func (c Code) Name() string {
	if !c.Valid() {
		return ""
	}
	return display.English.Languages().Name(table[c].tag)
}

// Pair is the registry key for translation engines.
type Pair struct {
	Source Code
	Target Code
}

// String renders the pair as "nl-en".
func (p Pair) String() string { return p.Source.String() + "-" + p.Target.String() }

// ResolvePair resolves both sides of a translation request. The source is
// checked first so callers see the first offending code.
func ResolvePair(source, target string) (Pair, error) {
	src, err := Resolve(source)
	if err != nil {
		return Pair{}, err
	}
	tgt, err := Resolve(target)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Source: src, Target: tgt}, nil
}

// ParsePair parses the "nl-en" form produced by Pair.String.
func ParsePair(s string) (Pair, error) {
	src, tgt, ok := strings.Cut(s, "-")
	if !ok {
		return Pair{}, fmt.Errorf("language pair %q: want <source>-<target>", s)
	}
	return ResolvePair(src, tgt)
}

// UnsupportedLanguageError reports a code outside the supported set.
type UnsupportedLanguageError struct {
	Code string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Code)
}

// Kind classifies the error for the boundary layer.
func (e *UnsupportedLanguageError) Kind() string { return "unsupported_language" }
