package fields

import (
	"html"
	"strings"

	"github.com/goccy/go-json"
)

// radioDefaultValue is what browsers submit for a radio without a value.
const radioDefaultValue = "on"

// RadioChoice is one <input type="radio"> of a group.
type RadioChoice struct {
	Value string `json:"value"`
	ID    string `json:"id,omitempty"`
}

// RadioField is a group of same-named radio inputs sharing one value. The
// value must be one of the declared choices.
type RadioField struct {
	Base
	choices []RadioChoice
}

// NewRadio constructs an empty radio group.
func NewRadio(string) *RadioField {
	return &RadioField{Base: newBase("radio")}
}

// Choices returns a copy of the declared choices in markup order.
func (f *RadioField) Choices() []RadioChoice {
	return append([]RadioChoice(nil), f.choices...)
}

// Options lists the choices as select options so prompts can treat radio
// groups and selects alike.
func (f *RadioField) Options() []Option {
	out := make([]Option, len(f.choices))
	for i, choice := range f.choices {
		out[i] = Option{Value: choice.Value, Label: choice.Value}
	}
	return out
}

// AddChoice declares a choice and returns its normalised value. A blank value
// becomes "on"; checked makes it the current value.
func (f *RadioField) AddChoice(value, id string, checked bool) string {
	if value = strings.TrimSpace(value); value == "" {
		value = radioDefaultValue
	}
	if !f.hasChoice(value) {
		f.choices = append(f.choices, RadioChoice{Value: value, ID: id})
	}
	if checked {
		f.value = value
	}
	return value
}

func (f *RadioField) hasChoice(value string) bool {
	for _, choice := range f.choices {
		if choice.Value == value {
			return true
		}
	}
	return false
}

func (f *RadioField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *RadioField) Fix() {
	if values, ok := f.value.([]string); ok {
		if len(values) == 0 {
			f.value = nil
			return
		}
		f.value = values[0]
	}
	f.fixString()
}

func (f *RadioField) Check() *Failure {
	return f.runChecks(func() *Failure {
		value, _ := f.value.(string)
		if !f.hasChoice(value) {
			return f.fail(KindBadValue)
		}
		return nil
	})
}

// ChoiceHTML renders the single input declaring value, or "" when the group
// has no such choice.
func (f *RadioField) ChoiceHTML(value string) string {
	for _, choice := range f.choices {
		if choice.Value == value {
			return f.choiceHTML(choice)
		}
	}
	return ""
}

func (f *RadioField) choiceHTML(choice RadioChoice) string {
	var sb strings.Builder
	sb.WriteString(`<input type="radio" name="`)
	sb.WriteString(html.EscapeString(f.name))
	sb.WriteString(`"`)
	if choice.ID != "" {
		sb.WriteString(` id="`)
		sb.WriteString(html.EscapeString(choice.ID))
		sb.WriteString(`"`)
	}
	sb.WriteString(` value="`)
	sb.WriteString(html.EscapeString(choice.Value))
	sb.WriteString(`"`)
	f.attrs.write(&sb)
	if current, ok := f.value.(string); ok && current == choice.Value {
		sb.WriteString(" checked")
	}
	sb.WriteString(" />")
	return sb.String()
}

// HTML renders every choice back to back.
func (f *RadioField) HTML() string {
	var sb strings.Builder
	for _, choice := range f.choices {
		sb.WriteString(f.choiceHTML(choice))
	}
	return sb.String()
}

func (f *RadioField) Clone() Field {
	return &RadioField{Base: f.cloneBase(), choices: append([]RadioChoice(nil), f.choices...)}
}

type radioState struct {
	Base    baseState     `json:"base"`
	Choices []RadioChoice `json:"choices,omitempty"`
}

func (f *RadioField) MarshalState() ([]byte, error) {
	return json.Marshal(radioState{Base: f.state(), Choices: f.choices})
}

func (f *RadioField) UnmarshalState(data []byte) error {
	var s radioState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.restore(s.Base)
	f.choices = s.Choices
	f.Fix()
	return nil
}
