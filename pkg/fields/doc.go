// Package fields implements the validatable units of form state. Every
// variant (text, number, date, file, select, ...) implements the Field
// interface and embeds Base, which carries the shared name/value/attribute
// state plus the required, read-only, length, pattern, and constraint
// checks. Variants never embed one another: DateField and DateTimeField
// share the dateRange helper instead of a parent/child relationship.
//
// The lifecycle is Push (configuration time) → SetValue/Fix (normalisation)
// → Check (validation). Check returns a *Failure descriptor rather than an
// error; only configuration mistakes such as pushing a string into a date
// bound surface as Go errors (see ErrTypeMismatch).
package fields
