package fields

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Constructor builds an empty field for a type tag.
type Constructor func(tag string) Field

// Registry maps type tags to constructors. Parsers use it to pick a variant
// for a tag and the codec uses it to restore persisted fields.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: make(map[string]Constructor)}
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// DefaultRegistry returns the shared registry holding the built-in variants.
func DefaultRegistry() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.registerBuiltins()
	})
	return defaultRegistry
}

func (r *Registry) registerBuiltins() {
	text := func(tag string) Field { return NewText(tag) }
	for _, tag := range []string{"text", "email", "password", "hidden", "search", "tel", "url", "color", "time", "week", "month"} {
		r.MustRegister(tag, text)
	}
	number := func(tag string) Field { return NewNumber(tag) }
	r.MustRegister("number", number)
	r.MustRegister("range", number)
	r.MustRegister("textarea", func(tag string) Field { return NewTextarea(tag) })
	r.MustRegister("date", func(tag string) Field { return NewDate(tag) })
	r.MustRegister("datetime-local", func(tag string) Field { return NewDateTime(tag) })
	r.MustRegister("file", func(tag string) Field { return NewFile(tag) })
	r.MustRegister("select", func(tag string) Field { return NewSelect(tag) })
	r.MustRegister("checkbox", func(tag string) Field { return NewCheckbox(tag) })
	r.MustRegister("radio", func(tag string) Field { return NewRadio(tag) })
}

// Register adds a constructor for tag. Duplicate tags return an error.
func (r *Registry) Register(tag string, ctor Constructor) error {
	if ctor == nil {
		return fmt.Errorf("fields: constructor is required")
	}
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return fmt.Errorf("fields: type tag is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ctors[tag]; exists {
		return fmt.Errorf("fields: type %q already registered", tag)
	}
	r.ctors[tag] = ctor
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(tag string, ctor Constructor) {
	if err := r.Register(tag, ctor); err != nil {
		panic(err)
	}
}

// New builds an empty field for tag.
func (r *Registry) New(tag string) (Field, error) {
	tag = strings.ToLower(strings.TrimSpace(tag))

	r.mu.RLock()
	ctor, ok := r.ctors[tag]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("fields: type %q not registered", tag)
	}
	return ctor(tag), nil
}

// Has reports whether tag is registered.
func (r *Registry) Has(tag string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.ctors[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// List returns the registered tags sorted alphabetically.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.ctors))
	for tag := range r.ctors {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
