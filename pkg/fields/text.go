package fields

import (
	"html"
	"net/mail"
	"strings"
)

// TextField covers the single-line inputs: text, email, password, hidden,
// search, tel, url, color, time, week and month. Email inputs additionally
// validate the address.
type TextField struct {
	Base
}

// NewText constructs a text-like field for the given type tag.
func NewText(tag string) *TextField {
	if tag == "" {
		tag = "text"
	}
	return &TextField{Base: newBase(tag)}
}

func (f *TextField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *TextField) Fix() {
	if f.typ == "password" {
		// Passwords keep surrounding whitespace.
		if s, ok := f.value.(string); ok && s == "" {
			f.value = nil
		}
		return
	}
	f.fixString()
}

func (f *TextField) Check() *Failure {
	return f.runChecks(func() *Failure {
		if f.typ != "email" {
			return nil
		}
		text, _ := f.value.(string)
		addr, err := mail.ParseAddress(text)
		if err != nil || addr.Address != text {
			return f.fail(KindBadEmail)
		}
		return nil
	})
}

func (f *TextField) HTML() string {
	value := formatValue(f.value)
	if f.typ == "password" {
		value = ""
	}
	return f.input(f.typ, value)
}

func (f *TextField) Clone() Field {
	return &TextField{Base: f.cloneBase()}
}

// TextareaField renders a multi-line <textarea>.
type TextareaField struct {
	Base
}

// NewTextarea constructs a textarea field.
func NewTextarea(string) *TextareaField {
	return &TextareaField{Base: newBase("textarea")}
}

func (f *TextareaField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *TextareaField) Fix() {
	if s, ok := f.value.(string); ok && strings.TrimSpace(s) == "" {
		f.value = nil
		return
	}
	if _, ok := f.value.(string); !ok && f.value != nil {
		f.value = toString(f.value)
	}
}

func (f *TextareaField) Check() *Failure {
	return f.runChecks(nil)
}

func (f *TextareaField) HTML() string {
	var sb strings.Builder
	f.open("textarea", &sb)
	sb.WriteString(html.EscapeString(formatValue(f.value)))
	sb.WriteString("</textarea>")
	return sb.String()
}

func (f *TextareaField) Clone() Field {
	return &TextareaField{Base: f.cloneBase()}
}
