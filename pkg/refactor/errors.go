package refactor

import "errors"

// ErrUnsupportedLanguage is returned when the target file's extension maps to
// no known language, or the language has no query table.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// ErrInvalidConfig is returned for operation misconfiguration: empty source,
// missing context fields, or a validation failure escalated by Execute.
var ErrInvalidConfig = errors.New("invalid configuration")
