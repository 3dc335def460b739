package model

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formidable/pkg/fields"
)

// EntryKind tags the members of the ordered entry sequence.
type EntryKind string

const (
	EntryStatic    EntryKind = "static"
	EntryField     EntryKind = "field"
	EntryIndicator EntryKind = "indicator"
)

// Entry is one element of the rendered sequence. Static entries carry Text,
// field entries carry the field Name, indicator entries carry neither. A
// field entry with a Choice renders only that choice of a grouped field.
type Entry struct {
	Kind   EntryKind `json:"kind"`
	Text   string    `json:"text,omitempty"`
	Name   string    `json:"name,omitempty"`
	Choice string    `json:"choice,omitempty"`
}

// ErrDuplicateField is returned when two fields share a name.
var ErrDuplicateField = errors.New("model: duplicate field name")

// Parser turns raw markup into a Compiled representation.
type Parser interface {
	Parse(ctx context.Context, markup string) (*Compiled, error)
}

// ParserFunc adapts a function into a Parser.
type ParserFunc func(ctx context.Context, markup string) (*Compiled, error)

// Parse implements Parser.
func (fn ParserFunc) Parse(ctx context.Context, markup string) (*Compiled, error) {
	return fn(ctx, markup)
}

// Compiled is the Compiled Form Representation.
type Compiled struct {
	// Name is the name attribute of the enclosing <form>, if any.
	Name    string
	Entries []Entry
	Sources map[string][]string
	NeedJS  bool

	fields map[string]fields.Field
	order  []string
}

// New returns an empty representation.
func New() *Compiled {
	return &Compiled{
		Sources: make(map[string][]string),
		fields:  make(map[string]fields.Field),
	}
}

// AddStatic appends a markup chunk, merging it with a preceding static entry.
func (c *Compiled) AddStatic(text string) {
	if text == "" {
		return
	}
	if n := len(c.Entries); n > 0 && c.Entries[n-1].Kind == EntryStatic {
		c.Entries[n-1].Text += text
		return
	}
	c.Entries = append(c.Entries, Entry{Kind: EntryStatic, Text: text})
}

// AddField registers f and appends it to the entry sequence. Fields bound to a
// source are indexed under that source name.
func (c *Compiled) AddField(f fields.Field) error {
	if err := c.register(f); err != nil {
		return err
	}
	c.Entries = append(c.Entries, Entry{Kind: EntryField, Name: f.Name()})
	return nil
}

// AddChoice appends an entry rendering one choice of a grouped field such as
// a radio set. The field is registered on first use; later calls must pass
// the same instance.
func (c *Compiled) AddChoice(f fields.Field, choice string) error {
	if f == nil {
		return fmt.Errorf("model: field is required")
	}
	existing, ok := c.fields[f.Name()]
	switch {
	case !ok:
		if err := c.register(f); err != nil {
			return err
		}
	case existing != f:
		return fmt.Errorf("%w: %q", ErrDuplicateField, f.Name())
	}
	c.Entries = append(c.Entries, Entry{Kind: EntryField, Name: f.Name(), Choice: choice})
	return nil
}

func (c *Compiled) register(f fields.Field) error {
	if f == nil {
		return fmt.Errorf("model: field is required")
	}
	name := f.Name()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("model: %s field without a name", f.Type())
	}
	c.ensure()
	if _, exists := c.fields[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateField, name)
	}
	c.fields[name] = f
	c.order = append(c.order, name)

	if sourced, ok := f.(interface{ SourceName() string }); ok {
		if source := sourced.SourceName(); source != "" {
			c.Sources[source] = append(c.Sources[source], name)
		}
	}
	if f.Common().VisibleWhen() != "" {
		c.NeedJS = true
	}
	return nil
}

// AddIndicator appends the post-indicator placeholder. Only the first call has
// an effect.
func (c *Compiled) AddIndicator() {
	if c.HasIndicator() {
		return
	}
	c.Entries = append(c.Entries, Entry{Kind: EntryIndicator})
}

// HasIndicator reports whether the sequence holds a post-indicator entry.
func (c *Compiled) HasIndicator() bool {
	for _, entry := range c.Entries {
		if entry.Kind == EntryIndicator {
			return true
		}
	}
	return false
}

// Field returns the field registered under name.
func (c *Compiled) Field(name string) (fields.Field, bool) {
	f, ok := c.fields[name]
	return f, ok
}

// Fields returns the fields in declaration order.
func (c *Compiled) Fields() []fields.Field {
	out := make([]fields.Field, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.fields[name])
	}
	return out
}

// Names returns the field names in declaration order.
func (c *Compiled) Names() []string {
	return append([]string(nil), c.order...)
}

// Clone returns a structural deep copy. Every field is cloned through its own
// Clone method; nothing mutable is shared with the receiver.
func (c *Compiled) Clone() *Compiled {
	out := &Compiled{
		Name:    c.Name,
		Entries: append([]Entry(nil), c.Entries...),
		Sources: make(map[string][]string, len(c.Sources)),
		NeedJS:  c.NeedJS,
		fields:  make(map[string]fields.Field, len(c.fields)),
		order:   append([]string(nil), c.order...),
	}
	for source, names := range c.Sources {
		out.Sources[source] = append([]string(nil), names...)
	}
	for name, f := range c.fields {
		out.fields[name] = f.Clone()
	}
	return out
}

func (c *Compiled) ensure() {
	if c.fields == nil {
		c.fields = make(map[string]fields.Field)
	}
	if c.Sources == nil {
		c.Sources = make(map[string][]string)
	}
}
