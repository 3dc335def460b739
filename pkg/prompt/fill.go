// Package prompt fills a form interactively from a terminal. Each visible,
// writable field becomes a prompt matching its type; answers are checked
// against the field before they are accepted.
package prompt

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cast"

	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/form"
)

// maxAttempts bounds re-prompts for choices that fail their check. Text
// prompts validate inline and are not bounded.
const maxAttempts = 3

// Filler walks the fields of a form and asks a Driver for their values.
type Filler struct {
	driver Driver
}

// NewFiller returns a Filler. A nil driver uses the survey terminal driver.
func NewFiller(driver Driver) *Filler {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Filler{driver: driver}
}

// Fill prompts for every visible field that is neither hidden, read-only nor
// a file upload, then returns the failures of a final form check.
func (p *Filler) Fill(ctx context.Context, f *form.Form) ([]*form.Error, error) {
	for _, field := range f.Fields() {
		if skip(f, field) {
			continue
		}
		if err := p.ask(ctx, f, field); err != nil {
			return nil, err
		}
	}
	return f.Check(), nil
}

func skip(f *form.Form, field fields.Field) bool {
	switch field.Type() {
	case "hidden", "file":
		return true
	}
	return field.Common().ReadOnly() || !f.Visible(field.Name())
}

func (p *Filler) ask(ctx context.Context, f *form.Form, field fields.Field) error {
	base := field.Common()
	message := base.PrintName()
	if base.Required() {
		message += " *"
	}
	current := cast.ToString(field.Value())
	validate := func(answer string) error {
		failure, err := f.Try(field.Name(), answer)
		if err != nil {
			return err
		}
		if failure != nil {
			return errors.New(failure.Message())
		}
		return nil
	}

	switch typed := field.(type) {
	case *fields.CheckboxField:
		checked, err := p.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: typed.Checked()})
		if err != nil {
			return err
		}
		field.SetValue(checked, false)
		return nil
	case *fields.SelectField:
		return p.choose(ctx, f, typed, message)
	case *fields.RadioField:
		return p.choose(ctx, f, typed, message)
	case *fields.TextareaField:
		answer, err := p.driver.TextArea(ctx, TextAreaConfig{Message: message, Default: current, Validator: validate})
		if err != nil {
			return err
		}
		field.SetValue(answer, false)
		return nil
	}

	ask := p.driver.Input
	if field.Type() == "password" {
		ask = p.driver.Password
		current = ""
	}
	answer, err := ask(ctx, InputConfig{Message: message, Default: current, Validator: validate})
	if err != nil {
		return err
	}
	field.SetValue(answer, false)
	return nil
}

// choiceField is a field offering a closed list of options: selects and
// radio groups.
type choiceField interface {
	fields.Field
	Options() []fields.Option
}

func multiple(field choiceField) bool {
	m, ok := field.(interface{ Multiple() bool })
	return ok && m.Multiple()
}

func (p *Filler) choose(ctx context.Context, f *form.Form, field choiceField, message string) error {
	options := field.Options()
	labels := make([]string, len(options))
	for i, opt := range options {
		labels[i] = opt.Label
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var value any
		if multiple(field) {
			indices, err := p.driver.MultiSelect(ctx, SelectConfig{Message: message, Options: labels})
			if err != nil {
				return err
			}
			values := make([]string, 0, len(indices))
			for _, idx := range indices {
				if idx >= 0 && idx < len(options) {
					values = append(values, options[idx].Value)
				}
			}
			value = values
		} else {
			idx, err := p.driver.Select(ctx, SelectConfig{Message: message, Options: labels, DefaultIndex: selectedIndex(field)})
			if err != nil {
				return err
			}
			if idx >= 0 && idx < len(options) {
				value = options[idx].Value
			}
		}

		failure, err := f.Try(field.Name(), value)
		if err != nil {
			return err
		}
		if failure == nil {
			field.SetValue(value, false)
			return nil
		}
		if err := p.driver.Info(ctx, failure.Message()); err != nil {
			return err
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.Name())
}

func selectedIndex(field choiceField) int {
	current, _ := field.Value().(string)
	for i, opt := range field.Options() {
		if opt.Value == current {
			return i
		}
	}
	return -1
}
