package fields

import (
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04"
)

// dateRange holds the optional bounds shared by DateField and DateTimeField.
type dateRange struct {
	min *time.Time
	max *time.Time
}

// push accepts only time.Time values (or a nil to clear). It reports whether
// attr was a bound attribute.
func (r *dateRange) push(b *Base, attr string, value any, layout string) (bool, error) {
	if attr != "min" && attr != "max" {
		return false, nil
	}
	var bound *time.Time
	switch v := value.(type) {
	case nil:
	case time.Time:
		bound = &v
	case *time.Time:
		if v == nil {
			return true, mismatch(b.name, attr, "a time.Time", value)
		}
		copied := *v
		bound = &copied
	default:
		return true, mismatch(b.name, attr, "a time.Time", value)
	}
	if attr == "min" {
		r.min = bound
	} else {
		r.max = bound
	}
	if bound == nil {
		b.attrs.Delete(attr)
	} else {
		b.attrs.Set(attr, bound.Format(layout))
	}
	return true, nil
}

func (r *dateRange) check(b *Base) *Failure {
	value, ok := b.value.(time.Time)
	if !ok {
		return b.fail(KindBadFormat)
	}
	if r.min != nil && value.Before(*r.min) {
		return b.fail(KindDateMin, *r.min)
	}
	if r.max != nil && value.After(*r.max) {
		return b.fail(KindDateMax, *r.max)
	}
	return nil
}

func (r dateRange) clone() dateRange {
	return dateRange{min: copyTime(r.min), max: copyTime(r.max)}
}

// fixTime normalises the raw value into a time.Time. Unparsable input becomes
// absent; a required field then reports value_required, an optional one is
// treated as empty.
func fixTime(b *Base) {
	switch v := b.value.(type) {
	case time.Time:
		return
	case *time.Time:
		if v == nil {
			b.value = nil
			return
		}
		b.value = *v
	case string:
		if t, ok := ParseTime(v); ok {
			b.value = t
			return
		}
		b.value = nil
	default:
		b.value = nil
	}
}

// ParseTime parses the formats emitted by date and datetime-local inputs and
// falls back to the broader set understood by spf13/cast. Times without a zone
// are interpreted as UTC.
func ParseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{dateLayout, dateTimeLayout, "2006-01-02T15:04:05"} {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t, true
		}
	}
	t, err := cast.ToTimeInDefaultLocationE(raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateField is a calendar date input with optional bounds.
type DateField struct {
	Base
	bounds dateRange
}

// NewDate constructs a date field.
func NewDate(string) *DateField {
	return &DateField{Base: newBase("date")}
}

// Min returns the lower bound.
func (f *DateField) Min() *time.Time { return f.bounds.min }

// Max returns the upper bound.
func (f *DateField) Max() *time.Time { return f.bounds.max }

func (f *DateField) Push(attr string, value any) error {
	if handled, err := f.bounds.push(&f.Base, attr, value, dateLayout); handled {
		return err
	}
	return f.Base.Push(attr, value)
}

func (f *DateField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *DateField) Fix() { fixTime(&f.Base) }

func (f *DateField) Check() *Failure {
	return f.runChecks(func() *Failure { return f.bounds.check(&f.Base) })
}

func (f *DateField) HTML() string {
	return f.input(f.typ, formatTime(f.value, dateLayout))
}

func (f *DateField) Clone() Field {
	return &DateField{Base: f.cloneBase(), bounds: f.bounds.clone()}
}

func (f *DateField) MarshalState() ([]byte, error) {
	return marshalDate(&f.Base, f.bounds)
}

func (f *DateField) UnmarshalState(data []byte) error {
	return unmarshalDate(&f.Base, &f.bounds, data)
}

// DateTimeField is a datetime-local input. It validates exactly like
// DateField; only the type tag and the rendered layout differ.
type DateTimeField struct {
	Base
	bounds dateRange
}

// NewDateTime constructs a datetime-local field.
func NewDateTime(string) *DateTimeField {
	return &DateTimeField{Base: newBase("datetime-local")}
}

// Min returns the lower bound.
func (f *DateTimeField) Min() *time.Time { return f.bounds.min }

// Max returns the upper bound.
func (f *DateTimeField) Max() *time.Time { return f.bounds.max }

func (f *DateTimeField) Push(attr string, value any) error {
	if handled, err := f.bounds.push(&f.Base, attr, value, dateTimeLayout); handled {
		return err
	}
	return f.Base.Push(attr, value)
}

func (f *DateTimeField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *DateTimeField) Fix() { fixTime(&f.Base) }

func (f *DateTimeField) Check() *Failure {
	return f.runChecks(func() *Failure { return f.bounds.check(&f.Base) })
}

func (f *DateTimeField) HTML() string {
	return f.input(f.typ, formatTime(f.value, dateTimeLayout))
}

func (f *DateTimeField) Clone() Field {
	return &DateTimeField{Base: f.cloneBase(), bounds: f.bounds.clone()}
}

func (f *DateTimeField) MarshalState() ([]byte, error) {
	return marshalDate(&f.Base, f.bounds)
}

func (f *DateTimeField) UnmarshalState(data []byte) error {
	return unmarshalDate(&f.Base, &f.bounds, data)
}

type dateState struct {
	Base baseState  `json:"base"`
	Min  *time.Time `json:"min,omitempty"`
	Max  *time.Time `json:"max,omitempty"`
}

func marshalDate(b *Base, r dateRange) ([]byte, error) {
	state := b.state()
	if t, ok := b.value.(time.Time); ok {
		state.Value = t.Format(time.RFC3339Nano)
	}
	return json.Marshal(dateState{Base: state, Min: r.min, Max: r.max})
}

func unmarshalDate(b *Base, r *dateRange, data []byte) error {
	var s dateState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	b.restore(s.Base)
	r.min, r.max = s.Min, s.Max
	fixTime(b)
	return nil
}

func formatTime(value any, layout string) string {
	if t, ok := value.(time.Time); ok {
		return t.Format(layout)
	}
	return ""
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	out := *t
	return &out
}
