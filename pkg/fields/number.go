package fields

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// NumberField accepts locale-formatted numbers and validates min, max and
// step. A nil step means "any".
type NumberField struct {
	Base
	min  *float64
	max  *float64
	step *float64
}

// NewNumber constructs a number field for the given type tag (number, range).
func NewNumber(tag string) *NumberField {
	if tag == "" {
		tag = "number"
	}
	f := &NumberField{Base: newBase(tag)}
	f.attrs.Set("step", stepAny)
	return f
}

// Min returns the lower bound, nil when unbounded.
func (f *NumberField) Min() *float64 { return f.min }

// Max returns the upper bound, nil when unbounded.
func (f *NumberField) Max() *float64 { return f.max }

// Step returns the step, nil when any value is allowed.
func (f *NumberField) Step() *float64 { return f.step }

func (f *NumberField) Push(attr string, value any) error {
	switch attr {
	case "min", "max":
		if value == nil {
			f.setBound(attr, nil)
			f.attrs.Delete(attr)
			return nil
		}
		v, ok := ToFloat(value)
		if !ok {
			return mismatch(f.name, attr, "a number", value)
		}
		f.setBound(attr, &v)
		f.attrs.Set(attr, v)
		return nil
	case "step":
		if value == nil || strings.EqualFold(strings.TrimSpace(toString(value)), stepAny) {
			f.step = nil
			f.attrs.Set(attr, stepAny)
			return nil
		}
		v, ok := ToFloat(value)
		if !ok || v == 0 {
			return mismatch(f.name, attr, `a non-zero number or "any"`, value)
		}
		f.step = &v
		f.attrs.Set(attr, v)
		return nil
	}
	return f.Base.Push(attr, value)
}

func (f *NumberField) setBound(attr string, v *float64) {
	if attr == "min" {
		f.min = v
	} else {
		f.max = v
	}
}

func (f *NumberField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

// Fix converts the raw value with ToFloat. Input that holds no number at all
// is kept as a trimmed string so Check can report the format error.
func (f *NumberField) Fix() {
	if isEmpty(f.value) {
		f.value = nil
		return
	}
	if v, ok := ToFloat(f.value); ok {
		f.value = v
		return
	}
	f.fixString()
}

func (f *NumberField) Check() *Failure {
	return f.runChecks(func() *Failure {
		value, ok := f.value.(float64)
		if !ok {
			return f.fail(KindNumber)
		}
		if f.min != nil && value < *f.min {
			return f.fail(KindNumberMin, *f.min)
		}
		if f.max != nil && value > *f.max {
			return f.fail(KindNumberMax, *f.max)
		}
		if f.step != nil && !onStep(value, *f.step) {
			return f.fail(KindNumberStep, *f.step)
		}
		return nil
	})
}

// onStep reports whether value lies within stepTolerance of a multiple of
// step counted from zero.
func onStep(value, step float64) bool {
	step = math.Abs(step)
	value = math.Abs(value)
	nearest := math.Round(value/step) * step
	return math.Abs(value-nearest) <= stepTolerance
}

func (f *NumberField) HTML() string {
	return f.input(f.typ, formatValue(f.value))
}

func (f *NumberField) Clone() Field {
	return &NumberField{
		Base: f.cloneBase(),
		min:  copyFloat(f.min),
		max:  copyFloat(f.max),
		step: copyFloat(f.step),
	}
}

type numberState struct {
	Base baseState `json:"base"`
	Min  *float64  `json:"min,omitempty"`
	Max  *float64  `json:"max,omitempty"`
	Step *float64  `json:"step,omitempty"`
}

func (f *NumberField) MarshalState() ([]byte, error) {
	return json.Marshal(numberState{Base: f.state(), Min: f.min, Max: f.max, Step: f.step})
}

func (f *NumberField) UnmarshalState(data []byte) error {
	var s numberState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.restore(s.Base)
	f.min, f.max, f.step = s.Min, s.Max, s.Step
	f.Fix()
	return nil
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// ToFloat converts a raw value into a float64, tolerating locale formatting:
// "1.234,56" and "1,234.56" both yield 1234.56, "(42.5)" yields -42.5, and
// currency symbols or thousands separators are ignored. Whichever of the last
// "." or "," comes later is taken as the decimal separator. The boolean is
// false when no number could be extracted.
func ToFloat(value any) (float64, bool) {
	var raw string
	switch v := value.(type) {
	case nil, bool:
		return 0, false
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return f, true
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, true
	}

	sign := 1.0
	if raw[0] == '(' && raw[len(raw)-1] == ')' {
		sign = -1
	}

	sep := strings.LastIndex(raw, ".")
	if comma := strings.LastIndex(raw, ","); comma > sep {
		sep = comma
	}

	var digits string
	if sep < 0 {
		digits = keepDigits(raw, true)
	} else {
		digits = keepDigits(raw[:sep], true) + "." + keepDigits(raw[sep+1:], false)
	}

	f, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	return sign * f, true
}

func keepDigits(s string, signs bool) string {
	var sb strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || (signs && (r == '-' || r == '+')) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
