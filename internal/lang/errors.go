package lang

import "errors"

// IsUnsupportedLanguage reports whether err, or anything it wraps, is an
// *UnsupportedLanguageError.
func IsUnsupportedLanguage(err error) bool {
	var e *UnsupportedLanguageError
	return errors.As(err, &e)
}
