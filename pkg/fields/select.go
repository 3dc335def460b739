package fields

import (
	"fmt"
	"html"
	"maps"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Option is a single <option> of a SelectField.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SelectField offers a closed list of options. Options can be declared in the
// markup or fed at runtime through a named source.
type SelectField struct {
	Base
	options  []Option
	multiple bool
	source   string
	classes  map[string]string
}

// NewSelect constructs a select field.
func NewSelect(string) *SelectField {
	return &SelectField{Base: newBase("select")}
}

// Options returns a copy of the declared options.
func (f *SelectField) Options() []Option {
	return append([]Option(nil), f.options...)
}

// Multiple reports whether several options may be selected.
func (f *SelectField) Multiple() bool { return f.multiple }

// SourceName returns the source the options are bound to, if any.
func (f *SelectField) SourceName() string { return f.source }

// SetOptionClass sets the class rendered on the option holding value. The
// class is keyed by value, so it also applies to options fed later by a
// source. An empty class removes it.
func (f *SelectField) SetOptionClass(value, class string) {
	if class == "" {
		delete(f.classes, value)
		return
	}
	if f.classes == nil {
		f.classes = make(map[string]string)
	}
	f.classes[value] = class
}

// OptionClass returns the class set for value.
func (f *SelectField) OptionClass(value string) string { return f.classes[value] }

// AddOption appends an option. An empty label reuses the value.
func (f *SelectField) AddOption(value, label string) {
	if label == "" {
		label = value
	}
	f.options = append(f.options, Option{Value: value, Label: label})
}

// SetOptions replaces the options from a source payload. Accepted shapes are
// []Option, []string (value doubles as label) and map[string]string (sorted
// by value).
func (f *SelectField) SetOptions(data any) error {
	switch v := data.(type) {
	case []Option:
		f.options = append([]Option(nil), v...)
	case []string:
		f.options = f.options[:0:0]
		for _, value := range v {
			f.AddOption(value, "")
		}
	case map[string]string:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		f.options = f.options[:0:0]
		for _, key := range keys {
			f.AddOption(key, v[key])
		}
	default:
		return fmt.Errorf("fields: select %q cannot use options of type %T", f.name, data)
	}
	return nil
}

func (f *SelectField) Push(attr string, value any) error {
	switch attr {
	case "multiple":
		f.multiple = flag(value)
		if f.multiple {
			f.attrs.Set(attr, true)
		} else {
			f.attrs.Delete(attr)
		}
		return nil
	case "source":
		f.source = toString(value)
		f.attrs.Set(attr, f.source)
		return nil
	}
	return f.Base.Push(attr, value)
}

func (f *SelectField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *SelectField) Fix() {
	if !f.multiple {
		if values, ok := f.value.([]string); ok {
			if len(values) == 0 {
				f.value = nil
				return
			}
			f.value = values[0]
		}
		f.fixString()
		return
	}
	var selected []string
	switch v := f.value.(type) {
	case []string:
		selected = v
	case []any:
		for _, item := range v {
			selected = append(selected, toString(item))
		}
	case nil:
	default:
		selected = []string{toString(v)}
	}
	out := make([]string, 0, len(selected))
	for _, item := range selected {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		f.value = nil
		return
	}
	f.value = out
}

func (f *SelectField) Check() *Failure {
	return f.runChecks(func() *Failure {
		for _, value := range f.selected() {
			if !f.hasOption(value) {
				return f.fail(KindBadValue)
			}
		}
		return nil
	})
}

func (f *SelectField) selected() []string {
	switch v := f.value.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	default:
		return nil
	}
}

func (f *SelectField) hasOption(value string) bool {
	for _, opt := range f.options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

func (f *SelectField) HTML() string {
	selected := make(map[string]bool)
	for _, value := range f.selected() {
		selected[value] = true
	}
	var sb strings.Builder
	f.open("select", &sb)
	for _, opt := range f.options {
		sb.WriteString(`<option value="`)
		sb.WriteString(html.EscapeString(opt.Value))
		sb.WriteString(`"`)
		if class := f.classes[opt.Value]; class != "" {
			sb.WriteString(` class="`)
			sb.WriteString(html.EscapeString(class))
			sb.WriteString(`"`)
		}
		if selected[opt.Value] {
			sb.WriteString(" selected")
		}
		sb.WriteString(">")
		sb.WriteString(html.EscapeString(opt.Label))
		sb.WriteString("</option>")
	}
	sb.WriteString("</select>")
	return sb.String()
}

func (f *SelectField) Clone() Field {
	return &SelectField{
		Base:     f.cloneBase(),
		options:  append([]Option(nil), f.options...),
		multiple: f.multiple,
		source:   f.source,
		classes:  maps.Clone(f.classes),
	}
}

type selectState struct {
	Base     baseState         `json:"base"`
	Options  []Option          `json:"options,omitempty"`
	Multiple bool              `json:"multiple,omitempty"`
	Source   string            `json:"source,omitempty"`
	Classes  map[string]string `json:"classes,omitempty"`
}

func (f *SelectField) MarshalState() ([]byte, error) {
	return json.Marshal(selectState{
		Base:     f.state(),
		Options:  f.options,
		Multiple: f.multiple,
		Source:   f.source,
		Classes:  f.classes,
	})
}

func (f *SelectField) UnmarshalState(data []byte) error {
	var s selectState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.restore(s.Base)
	f.options, f.multiple, f.source, f.classes = s.Options, s.Multiple, s.Source, s.Classes
	f.Fix()
	return nil
}
