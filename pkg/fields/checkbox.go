package fields

import (
	"github.com/goccy/go-json"
)

// CheckboxField holds either its checked value or nothing.
type CheckboxField struct {
	Base
	checkedValue string
}

// NewCheckbox constructs a checkbox whose checked value is "1" until a value
// attribute is pushed.
func NewCheckbox(string) *CheckboxField {
	return &CheckboxField{Base: newBase("checkbox"), checkedValue: defaultCheckValue}
}

// CheckedValue returns the value submitted when the box is ticked.
func (f *CheckboxField) CheckedValue() string { return f.checkedValue }

// Checked reports whether the box is ticked.
func (f *CheckboxField) Checked() bool { return f.value != nil }

func (f *CheckboxField) Push(attr string, value any) error {
	switch attr {
	case "value":
		if v := toString(value); v != "" {
			if f.Checked() {
				f.value = v
			}
			f.checkedValue = v
		}
		return nil
	case "checked":
		if flag(value) {
			f.value = f.checkedValue
		} else {
			f.value = nil
		}
		return nil
	}
	return f.Base.Push(attr, value)
}

func (f *CheckboxField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

// Fix maps booleans and the checked value onto the checked state. Any other
// non-empty input is kept so Check can reject it.
func (f *CheckboxField) Fix() {
	switch v := f.value.(type) {
	case bool:
		if v {
			f.value = f.checkedValue
		} else {
			f.value = nil
		}
	default:
		f.fixString()
	}
}

func (f *CheckboxField) Check() *Failure {
	return f.runChecks(func() *Failure {
		if f.value != f.checkedValue {
			return f.fail(KindBadValue)
		}
		return nil
	})
}

func (f *CheckboxField) HTML() string {
	out := f.input("checkbox", f.checkedValue)
	if f.Checked() {
		out = out[:len(out)-len(" />")] + " checked />"
	}
	return out
}

func (f *CheckboxField) Clone() Field {
	return &CheckboxField{Base: f.cloneBase(), checkedValue: f.checkedValue}
}

type checkboxState struct {
	Base         baseState `json:"base"`
	CheckedValue string    `json:"checkedValue"`
}

func (f *CheckboxField) MarshalState() ([]byte, error) {
	return json.Marshal(checkboxState{Base: f.state(), CheckedValue: f.checkedValue})
}

func (f *CheckboxField) UnmarshalState(data []byte) error {
	var s checkboxState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.restore(s.Base)
	f.checkedValue = s.CheckedValue
	f.Fix()
	return nil
}
