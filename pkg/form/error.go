package form

import (
	"fmt"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/language"
)

var messagePolicy = bluemonday.StrictPolicy()

// Error is a failed field check bound to the language active when the form
// was checked.
type Error struct {
	field   string
	failure fields.Failure
	lang    language.Language
}

func newError(field string, failure fields.Failure, lang language.Language) *Error {
	if lang == nil {
		lang = language.Default()
	}
	return &Error{field: field, failure: failure, lang: lang}
}

// Field returns the name of the failing field.
func (e *Error) Field() string { return e.field }

// Kind returns the failure kind, one of the fields.Kind* constants.
func (e *Error) Kind() string { return e.failure.Kind }

// Label returns the printable label of the failing field.
func (e *Error) Label() string { return e.failure.Label }

// Args returns the kind-specific arguments (bounds, step, size limit).
func (e *Error) Args() []any { return append([]any(nil), e.failure.Args...) }

// Message renders the translated message.
func (e *Error) Message() string {
	args := make([]any, 0, len(e.failure.Args)+1)
	args = append(args, e.failure.Label)
	args = append(args, e.failure.Args...)
	return e.lang.Translate(e.failure.Kind, args...)
}

func (e *Error) Error() string {
	return fmt.Sprintf("form: %s: %s", e.field, e.Message())
}

// HTML returns the message with markup stripped and entities escaped, safe to
// print inside an element.
func (e *Error) HTML() string {
	return messagePolicy.Sanitize(e.Message())
}
