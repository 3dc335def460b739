package fields

import (
	"errors"
	"fmt"
)

// Failure kinds reported by Check. Language catalogs key their messages on
// these identifiers.
const (
	KindRequired   = "value_required"
	KindReadOnly   = "read_only"
	KindTooShort   = "value_too_short"
	KindTooLong    = "value_too_long"
	KindBadFormat  = "bad_format"
	KindBadEmail   = "bad_email"
	KindBadValue   = "bad_value"
	KindNumber     = "number"
	KindNumberMin  = "number_min"
	KindNumberMax  = "number_max"
	KindNumberStep = "number_step"
	KindDateMin    = "date_min"
	KindDateMax    = "date_max"
	KindFileTooBig = "file_size_too_big"
	KindFileType   = "file_type"
	KindConstraint = "constraint"
)

const (
	stepTolerance     = 1e-5
	stepAny           = "any"
	attrVisibleWhen   = "data-visible-when"
	attrLabelKey      = "label-key"
	defaultCheckValue = "1"
)

// ErrTypeMismatch is wrapped by every TypeMismatchError so callers can test
// with errors.Is.
var ErrTypeMismatch = errors.New("fields: type mismatch")

// TypeMismatchError reports a Push whose value does not have the shape the
// attribute requires.
type TypeMismatchError struct {
	Field string
	Attr  string
	Want  string
	Value any
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("fields: %s attribute %q expects %s, got %T", e.Field, e.Attr, e.Want, e.Value)
}

func (e *TypeMismatchError) Unwrap() error {
	return ErrTypeMismatch
}

func mismatch(field, attr, want string, value any) error {
	return &TypeMismatchError{Field: field, Attr: attr, Want: want, Value: value}
}

// Failure is the structured result of a failed Check: the error kind, the
// printable label of the field, and kind-specific arguments (the violated
// bound, the expected step, ...).
type Failure struct {
	Kind  string
	Label string
	Args  []any
}

// Labeler resolves translated field labels. pkg/language catalogs satisfy it.
type Labeler interface {
	Label(key, fallback string) string
}

// Field is the contract every variant honours.
type Field interface {
	Name() string
	Type() string
	// Common exposes the shared state so forms can reach mapping, read-only
	// and attribute data without a type switch.
	Common() *Base
	// Push sets a configuration attribute, returning a *TypeMismatchError when
	// the value has the wrong shape.
	Push(attr string, value any) error
	// SetValue stores a raw value and normalises it. asDefault marks values
	// coming from the application rather than from a submission; only the
	// latter can trip the read-only check.
	SetValue(value any, asDefault bool)
	Value() any
	Fix()
	Check() *Failure
	HTML() string
	Clone() Field
	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
}

// Constraint is a user-supplied validator run after the built-in checks. It
// receives the normalised value.
type Constraint interface {
	Validate(value any) (ok bool, message string)
}

// ConstraintFunc adapts a function into a Constraint.
type ConstraintFunc func(value any) (bool, string)

// Validate delegates to the underlying function.
func (fn ConstraintFunc) Validate(value any) (bool, string) {
	return fn(value)
}
