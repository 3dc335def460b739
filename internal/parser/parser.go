package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/model"
	pkgparser "github.com/goliatone/go-formidable/pkg/parser"
)

// Parser implements model.Parser over the golang.org/x/net/html tokenizer.
// Markup outside of <input>, <textarea> and <select> elements is copied
// verbatim into static entries. A post indicator is inserted right after the
// opening <form> tag.
type Parser struct {
	registry *fields.Registry
	logger   *zap.Logger
}

// Ensure the implementation satisfies the public interface.
var _ model.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgparser.Options) *Parser {
	p := &Parser{registry: options.Registry, logger: options.Logger}
	if p.registry == nil {
		p.registry = fields.DefaultRegistry()
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Input types that render as plain markup instead of becoming fields.
var passthroughInputs = map[string]bool{
	"submit": true,
	"button": true,
	"reset":  true,
	"image":  true,
}

// Attributes that belong to a single radio input rather than to its group.
var choiceAttributes = map[string]bool{
	"value":   true,
	"checked": true,
	"id":      true,
}

// Attributes whose bare presence means true.
var booleanAttributes = map[string]bool{
	"autofocus":  true,
	"checked":    true,
	"disabled":   true,
	"hidden":     true,
	"multiple":   true,
	"novalidate": true,
	"readonly":   true,
	"required":   true,
}

// Parse compiles markup into a model.Compiled.
func (p *Parser) Parse(ctx context.Context, markup string) (*model.Compiled, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	compiled := model.New()
	z := html.NewTokenizer(strings.NewReader(markup))

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				break
			}
			return nil, fmt.Errorf("parser: tokenize: %w", z.Err())
		}

		raw := string(z.Raw())
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			compiled.AddStatic(raw)
			continue
		}

		tok := z.Token()
		var err error
		switch tok.Data {
		case "form":
			compiled.AddStatic(raw)
			if compiled.Name == "" {
				compiled.Name = attr(tok, "name")
			}
			compiled.AddIndicator()
		case "input":
			err = p.input(compiled, tok, raw)
		case "textarea":
			err = p.textarea(compiled, z, tok)
		case "select":
			err = p.selectField(compiled, z, tok)
		default:
			compiled.AddStatic(raw)
		}
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	p.logger.Debug("parsed form markup",
		zap.String("form", compiled.Name),
		zap.Int("fields", len(compiled.Names())),
		zap.Bool("need_js", compiled.NeedJS),
	)
	return compiled, nil
}

func (p *Parser) input(compiled *model.Compiled, tok html.Token, raw string) error {
	tag := strings.ToLower(strings.TrimSpace(attr(tok, "type")))
	if tag == "" {
		tag = "text"
	}
	if passthroughInputs[tag] {
		compiled.AddStatic(raw)
		return nil
	}
	if tag == "radio" {
		return p.radio(compiled, tok)
	}
	field, err := p.newField(tag)
	if err != nil {
		return err
	}
	if err := p.configure(field, tok.Attr); err != nil {
		return err
	}
	return p.add(compiled, field)
}

// radio folds same-named radio inputs into one group. The first input
// configures the group; every input adds a choice rendered in place.
func (p *Parser) radio(compiled *model.Compiled, tok html.Token) error {
	name := attr(tok, "name")
	var group *fields.RadioField
	if existing, ok := compiled.Field(name); ok {
		radio, isRadio := existing.(*fields.RadioField)
		if !isRadio {
			return fmt.Errorf("parser: %w: %q", model.ErrDuplicateField, name)
		}
		group = radio
	} else {
		field, err := p.newField("radio")
		if err != nil {
			return err
		}
		radio, isRadio := field.(*fields.RadioField)
		if !isRadio {
			return fmt.Errorf("parser: radio constructor returned %T", field)
		}
		shared := make([]html.Attribute, 0, len(tok.Attr))
		for _, a := range tok.Attr {
			if !choiceAttributes[strings.ToLower(a.Key)] {
				shared = append(shared, a)
			}
		}
		if err := p.configure(radio, shared); err != nil {
			return err
		}
		group = radio
	}

	value, _ := lookup(tok, "value")
	_, checked := lookup(tok, "checked")
	choice := group.AddChoice(value, attr(tok, "id"), checked)
	if err := compiled.AddChoice(group, choice); err != nil {
		return fmt.Errorf("parser: %w", err)
	}
	return nil
}

func (p *Parser) textarea(compiled *model.Compiled, z *html.Tokenizer, tok html.Token) error {
	field, err := p.newField("textarea")
	if err != nil {
		return err
	}
	if err := p.configure(field, tok.Attr); err != nil {
		return err
	}
	body, err := textUntil(z, "textarea")
	if err != nil {
		return err
	}
	if body != "" {
		field.SetValue(body, true)
	}
	return p.add(compiled, field)
}

func (p *Parser) selectField(compiled *model.Compiled, z *html.Tokenizer, tok html.Token) error {
	field, err := p.newField("select")
	if err != nil {
		return err
	}
	if err := p.configure(field, tok.Attr); err != nil {
		return err
	}
	sel, ok := field.(interface {
		AddOption(value, label string)
	})
	if !ok {
		return fmt.Errorf("parser: select constructor returned %T without option support", field)
	}

	var selected []string
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return fmt.Errorf("parser: unterminated <select name=%q>", field.Name())
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "select" {
				if len(selected) > 0 {
					field.SetValue(selected, true)
				}
				return p.add(compiled, field)
			}
		case html.StartTagToken:
			opt := z.Token()
			if opt.Data != "option" {
				continue
			}
			label, err := textUntil(z, "option")
			if err != nil {
				return err
			}
			value, hasValue := lookup(opt, "value")
			if !hasValue {
				value = strings.TrimSpace(label)
			}
			sel.AddOption(value, strings.TrimSpace(label))
			if _, ok := lookup(opt, "selected"); ok {
				selected = append(selected, value)
			}
		}
	}
}

func (p *Parser) newField(tag string) (fields.Field, error) {
	field, err := p.registry.New(tag)
	if err != nil {
		return nil, fmt.Errorf("parser: %w", err)
	}
	return field, nil
}

// configure pushes every attribute in source order and normalises the default
// value afterwards. Date bounds are converted to time.Time before the push.
func (p *Parser) configure(field fields.Field, attrs []html.Attribute) error {
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if key == "type" {
			continue
		}
		var value any = a.Val
		switch {
		case booleanAttributes[key] && strings.TrimSpace(a.Val) == "":
			value = nil
		case (key == "min" || key == "max") && isDateField(field):
			bound, ok := fields.ParseTime(a.Val)
			if !ok {
				return fmt.Errorf("parser: field %q: %s %q is not a date", nameOf(field, attrs), key, a.Val)
			}
			value = bound
		}
		if err := field.Push(key, value); err != nil {
			return fmt.Errorf("parser: %w", err)
		}
	}
	field.Fix()
	return nil
}

func (p *Parser) add(compiled *model.Compiled, field fields.Field) error {
	if err := compiled.AddField(field); err != nil {
		return fmt.Errorf("parser: %w", err)
	}
	return nil
}

func isDateField(field fields.Field) bool {
	switch field.(type) {
	case *fields.DateField, *fields.DateTimeField:
		return true
	}
	return false
}

// textUntil collects the text content up to the closing tag.
func textUntil(z *html.Tokenizer, tag string) (string, error) {
	var buf bytes.Buffer
	for {
		switch z.Next() {
		case html.ErrorToken:
			return "", fmt.Errorf("parser: unterminated <%s>", tag)
		case html.TextToken:
			buf.Write(z.Text())
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == tag {
				return buf.String(), nil
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	value, _ := lookup(tok, key)
	return value
}

func lookup(tok html.Token, key string) (string, bool) {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func nameOf(field fields.Field, attrs []html.Attribute) string {
	if name := field.Name(); name != "" {
		return name
	}
	for _, a := range attrs {
		if a.Key == "name" {
			return a.Val
		}
	}
	return ""
}
