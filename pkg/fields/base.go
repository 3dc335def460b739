package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// Base carries the state every variant shares. Variants embed it and call
// runChecks from their Check method so the empty/required short-circuit and
// the constraint pass behave identically across the family.
type Base struct {
	name        string
	typ         string
	label       string
	labelKey    string
	value       any
	required    bool
	readOnly    bool
	changed     bool
	mapping     string
	minLength   int
	maxLength   int
	pattern     string
	visibleWhen string
	attrs       Attributes

	regex       *regexp.Regexp
	constraints []Constraint
	lang        Labeler
}

func newBase(tag string) Base {
	return Base{typ: tag}
}

// Name returns the submission key of the field.
func (b *Base) Name() string { return b.name }

// Type returns the declared type tag (text, number, datetime-local, ...).
func (b *Base) Type() string { return b.typ }

// Common returns the receiver; it lets Field implementations expose Base.
func (b *Base) Common() *Base { return b }

// Value returns the current normalised value.
func (b *Base) Value() any { return b.value }

// Required reports whether the field must hold a value.
func (b *Base) Required() bool { return b.required }

// SetRequired toggles the required flag and its rendered attribute.
func (b *Base) SetRequired(required bool) {
	b.required = required
	if required {
		b.attrs.Set("required", true)
	} else {
		b.attrs.Delete("required")
	}
}

// ReadOnly reports whether submissions may change the field.
func (b *Base) ReadOnly() bool { return b.readOnly }

// MappingName is the entity property the field binds to, empty when unmapped.
func (b *Base) MappingName() string { return b.mapping }

// VisibleWhen returns the conditional visibility rule, if any.
func (b *Base) VisibleWhen() string { return b.visibleWhen }

// Attributes exposes the ordered attribute mapping.
func (b *Base) Attributes() *Attributes { return &b.attrs }

// Attribute returns a single attribute value.
func (b *Base) Attribute(name string) (any, bool) { return b.attrs.Get(name) }

// SetLanguage binds the language used to print the field label.
func (b *Base) SetLanguage(lang Labeler) { b.lang = lang }

// AddConstraint appends a validator run after the built-in checks.
func (b *Base) AddConstraint(c Constraint) {
	if c == nil {
		return
	}
	b.constraints = append(b.constraints, c)
}

// PrintName returns the label shown to users in error messages.
func (b *Base) PrintName() string {
	text := b.label
	if text == "" {
		text = b.name
	}
	if b.labelKey != "" && b.lang != nil {
		return b.lang.Label(b.labelKey, text)
	}
	return text
}

// Push handles the attributes every variant understands. Anything it does not
// recognise is stored verbatim in the attribute mapping.
func (b *Base) Push(attr string, value any) error {
	switch attr {
	case "name":
		b.name = toString(value)
	case "type":
		// The type tag is fixed by the constructor.
	case "label":
		b.label = toString(value)
	case attrLabelKey:
		b.labelKey = toString(value)
	case "mapping":
		b.mapping = toString(value)
	case "value":
		b.value = value
	case "required":
		b.SetRequired(flag(value))
	case "readonly":
		b.readOnly = flag(value)
		if b.readOnly {
			b.attrs.Set(attr, true)
		} else {
			b.attrs.Delete(attr)
		}
	case "minlength", "maxlength":
		n, err := cast.ToIntE(strings.TrimSpace(toString(value)))
		if err != nil || n < 0 {
			return mismatch(b.name, attr, "a non-negative integer", value)
		}
		if attr == "minlength" {
			b.minLength = n
		} else {
			b.maxLength = n
		}
		b.attrs.Set(attr, n)
	case "pattern":
		expr := toString(value)
		re, err := regexp.Compile("^(?:" + expr + ")$")
		if err != nil {
			return mismatch(b.name, attr, "a valid regular expression", value)
		}
		b.pattern = expr
		b.regex = re
		b.attrs.Set(attr, expr)
	case attrVisibleWhen:
		b.visibleWhen = toString(value)
		b.attrs.Set(attr, b.visibleWhen)
	default:
		b.attrs.Set(attr, value)
	}
	return nil
}

// assign stores a raw value, honouring the read-only policy. It reports
// whether the value was actually replaced.
func (b *Base) assign(value any, asDefault bool) bool {
	if b.readOnly && !asDefault {
		if toString(value) != toString(b.value) {
			b.changed = true
		}
		return false
	}
	b.value = value
	return true
}

// fixString trims string input and maps blank strings to an absent value.
func (b *Base) fixString() {
	switch v := b.value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			b.value = nil
			return
		}
		b.value = trimmed
	case []byte:
		b.value = strings.TrimSpace(string(v))
		b.fixString()
	case nil:
	default:
		b.value = toString(v)
	}
}

func (b *Base) fail(kind string, args ...any) *Failure {
	return &Failure{Kind: kind, Label: b.PrintName(), Args: args}
}

// check runs the generic validations: read-only tampering, required-ness,
// length bounds and pattern.
func (b *Base) check() *Failure {
	if b.readOnly && b.changed {
		return b.fail(KindReadOnly)
	}
	if isEmpty(b.value) {
		if b.required {
			return b.fail(KindRequired)
		}
		return nil
	}
	text, ok := b.value.(string)
	if !ok {
		return nil
	}
	length := utf8.RuneCountInString(text)
	if b.minLength > 0 && length < b.minLength {
		return b.fail(KindTooShort, b.minLength)
	}
	if b.maxLength > 0 && length > b.maxLength {
		return b.fail(KindTooLong, b.maxLength)
	}
	if re := b.compiledPattern(); re != nil && !re.MatchString(text) {
		return b.fail(KindBadFormat)
	}
	return nil
}

func (b *Base) compiledPattern() *regexp.Regexp {
	if b.pattern == "" {
		return nil
	}
	if b.regex == nil {
		re, err := regexp.Compile("^(?:" + b.pattern + ")$")
		if err != nil {
			return nil
		}
		b.regex = re
	}
	return b.regex
}

func (b *Base) checkConstraints() *Failure {
	for _, c := range b.constraints {
		if ok, message := c.Validate(b.value); !ok {
			return b.fail(KindConstraint, message)
		}
	}
	return nil
}

// runChecks applies the policy shared by all variants: an optional empty field
// passes, the generic check short-circuits, then the variant-specific checks
// run, then user constraints.
func (b *Base) runChecks(variant func() *Failure) *Failure {
	if !b.required && isEmpty(b.value) {
		return nil
	}
	if failure := b.check(); failure != nil {
		return failure
	}
	if variant != nil {
		if failure := variant(); failure != nil {
			return failure
		}
	}
	return b.checkConstraints()
}

func (b *Base) cloneBase() Base {
	out := *b
	out.attrs = b.attrs.Clone()
	out.constraints = append([]Constraint(nil), b.constraints...)
	out.value = cloneValue(b.value)
	return out
}

type baseState struct {
	Name        string     `json:"name"`
	Type        string     `json:"type"`
	Label       string     `json:"label,omitempty"`
	LabelKey    string     `json:"labelKey,omitempty"`
	Value       any        `json:"value,omitempty"`
	Required    bool       `json:"required,omitempty"`
	ReadOnly    bool       `json:"readOnly,omitempty"`
	Mapping     string     `json:"mapping,omitempty"`
	MinLength   int        `json:"minLength,omitempty"`
	MaxLength   int        `json:"maxLength,omitempty"`
	Pattern     string     `json:"pattern,omitempty"`
	VisibleWhen string     `json:"visibleWhen,omitempty"`
	Attributes  Attributes `json:"attributes"`
}

func (b *Base) state() baseState {
	return baseState{
		Name:        b.name,
		Type:        b.typ,
		Label:       b.label,
		LabelKey:    b.labelKey,
		Value:       b.value,
		Required:    b.required,
		ReadOnly:    b.readOnly,
		Mapping:     b.mapping,
		MinLength:   b.minLength,
		MaxLength:   b.maxLength,
		Pattern:     b.pattern,
		VisibleWhen: b.visibleWhen,
		Attributes:  b.attrs,
	}
}

func (b *Base) restore(s baseState) {
	*b = Base{
		name:        s.Name,
		typ:         s.Type,
		label:       s.Label,
		labelKey:    s.LabelKey,
		value:       s.Value,
		required:    s.Required,
		readOnly:    s.ReadOnly,
		mapping:     s.Mapping,
		minLength:   s.MinLength,
		maxLength:   s.MaxLength,
		pattern:     s.Pattern,
		visibleWhen: s.VisibleWhen,
		attrs:       s.Attributes,
	}
}

// MarshalState encodes the shared state; variants with extra state override it.
func (b *Base) MarshalState() ([]byte, error) {
	return json.Marshal(b.state())
}

// UnmarshalState restores state written by MarshalState.
func (b *Base) UnmarshalState(data []byte) error {
	var s baseState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("fields: decode state: %w", err)
	}
	b.restore(s)
	return nil
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case *Upload:
		return v == nil
	default:
		return false
	}
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case *Upload:
		if v == nil {
			return v
		}
		copied := *v
		return &copied
	default:
		return value
	}
}

// flag interprets HTML boolean attribute values: presence (nil or "") means
// true, otherwise the value is parsed as a boolean.
func flag(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return true
		}
		parsed, err := strconv.ParseBool(trimmed)
		if err != nil {
			return true
		}
		return parsed
	default:
		return cast.ToBool(v)
	}
}

func toString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return s
	}
}
