package fields

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Envelope wraps a persisted field with the type tag needed to restore it.
type Envelope struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
}

// Encode snapshots a field. Constraints and the bound language are runtime
// state and are not persisted.
func Encode(f Field) (Envelope, error) {
	state, err := f.MarshalState()
	if err != nil {
		return Envelope{}, fmt.Errorf("fields: encode %q: %w", f.Name(), err)
	}
	return Envelope{Type: f.Type(), State: state}, nil
}

// Decode restores a field using the constructor registered for its tag. A nil
// registry falls back to DefaultRegistry.
func Decode(reg *Registry, env Envelope) (Field, error) {
	if reg == nil {
		reg = DefaultRegistry()
	}
	f, err := reg.New(env.Type)
	if err != nil {
		return nil, err
	}
	if err := f.UnmarshalState(env.State); err != nil {
		return nil, fmt.Errorf("fields: decode %s field: %w", env.Type, err)
	}
	return f, nil
}
