package model

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/goliatone/go-formidable/pkg/fields"
)

type compiledDocument struct {
	Version int                 `json:"version"`
	Name    string              `json:"name,omitempty"`
	Entries []Entry             `json:"entries"`
	Fields  []fields.Envelope   `json:"fields"`
	Sources map[string][]string `json:"sources,omitempty"`
	NeedJS  bool                `json:"needJs,omitempty"`
}

const documentVersion = 1

// MarshalJSON encodes the representation with fields in declaration order.
func (c *Compiled) MarshalJSON() ([]byte, error) {
	doc := compiledDocument{
		Version: documentVersion,
		Name:    c.Name,
		Entries: c.Entries,
		Fields:  make([]fields.Envelope, 0, len(c.order)),
		Sources: c.Sources,
		NeedJS:  c.NeedJS,
	}
	for _, name := range c.order {
		env, err := fields.Encode(c.fields[name])
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		doc.Fields = append(doc.Fields, env)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON restores a representation using the default field registry.
func (c *Compiled) UnmarshalJSON(data []byte) error {
	decoded, err := Decode(data, nil)
	if err != nil {
		return err
	}
	*c = *decoded
	return nil
}

// Encode serialises c for persistence.
func Encode(c *Compiled) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("model: compiled form is nil")
	}
	return c.MarshalJSON()
}

// Decode restores a representation written by Encode. Custom field types are
// resolved through reg; a nil reg uses fields.DefaultRegistry.
func Decode(data []byte, reg *fields.Registry) (*Compiled, error) {
	var doc compiledDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("model: decode compiled form: %w", err)
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("model: unsupported document version %d", doc.Version)
	}

	out := New()
	out.Name = doc.Name
	out.NeedJS = doc.NeedJS
	for source, names := range doc.Sources {
		out.Sources[source] = append([]string(nil), names...)
	}
	for _, env := range doc.Fields {
		f, err := fields.Decode(reg, env)
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		if _, exists := out.fields[f.Name()]; exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateField, f.Name())
		}
		out.fields[f.Name()] = f
		out.order = append(out.order, f.Name())
	}
	for _, entry := range doc.Entries {
		if entry.Kind == EntryField {
			if _, ok := out.fields[entry.Name]; !ok {
				return nil, fmt.Errorf("model: entry references unknown field %q", entry.Name)
			}
		}
	}
	out.Entries = append([]Entry(nil), doc.Entries...)
	return out, nil
}
