package language

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

//go:embed locales/*.yaml
var builtinLocales embed.FS

// ErrMissingKey is returned by Bundle.Translate for unknown keys.
var ErrMissingKey = errors.New("language: missing translation")

// Bundle holds catalogs for several locales and negotiates between them.
type Bundle struct {
	mu       sync.RWMutex
	catalogs map[language.Tag]*Catalog
	tags     []language.Tag
	matcher  language.Matcher
	matched  []language.Tag
	fallback language.Tag
}

// BuiltinFS exposes the built-in catalog files, one YAML document per locale.
func BuiltinFS() fs.FS {
	sub, err := fs.Sub(builtinLocales, "locales")
	if err != nil {
		return builtinLocales
	}
	return sub
}

// NewBundle returns a bundle preloaded with the built-in catalogs (en, fr).
// English is the fallback locale.
func NewBundle() (*Bundle, error) {
	b := &Bundle{catalogs: make(map[language.Tag]*Catalog), fallback: language.English}
	if err := b.LoadFS(BuiltinFS()); err != nil {
		return nil, err
	}
	return b, nil
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// DefaultBundle returns a shared bundle with the built-in catalogs.
func DefaultBundle() *Bundle {
	defaultOnce.Do(func() {
		b, err := NewBundle()
		if err != nil {
			panic(err)
		}
		defaultBundle = b
	})
	return defaultBundle
}

// Default returns the English language of the default bundle.
func Default() Language {
	return DefaultBundle().Language("en")
}

// LoadFS merges every catalog found in fsys into the bundle.
func (b *Bundle) LoadFS(fsys fs.FS) error {
	catalogs, err := LoadFS(fsys)
	if err != nil {
		return err
	}
	for _, c := range catalogs {
		b.Add(c)
	}
	return nil
}

// Add merges c into the bundle. Keys already present for the same locale are
// overwritten.
func (b *Bundle) Add(c *Catalog) {
	if c == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	existing, ok := b.catalogs[c.tag]
	if !ok {
		b.catalogs[c.tag] = c
		b.tags = append(b.tags, c.tag)
		b.matcher = nil
		return
	}
	for key, message := range c.Messages {
		existing.Messages[key] = message
	}
	for key, label := range c.Labels {
		existing.Labels[key] = label
	}
	if c.DateFormat != "" {
		existing.DateFormat = c.DateFormat
	}
	if c.DateTimeFormat != "" {
		existing.DateTimeFormat = c.DateTimeFormat
	}
}

// Locales returns the locales the bundle can serve.
func (b *Bundle) Locales() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]string, 0, len(b.tags))
	for _, tag := range b.tags {
		out = append(out, tag.String())
	}
	return out
}

// Language negotiates the best catalog for preference, which may be a single
// locale ("fr-CA") or an Accept-Language header value.
func (b *Bundle) Language(preference string) Language {
	primary := b.match(preference)
	fallback := b.catalog(b.fallback)
	if fallback == primary {
		fallback = nil
	}
	return FromCatalog(primary, fallback)
}

// Translate looks key up as a message kind, then as a label key, in the
// catalog matching locale. Args are applied like Language.Translate.
func (b *Bundle) Translate(locale, key string, args ...any) (string, error) {
	c := b.match(locale)
	lang := &catalogLanguage{primary: c}
	if message, ok := c.Messages[key]; ok {
		return lang.expand(message, args), nil
	}
	if label, ok := c.Labels[key]; ok {
		return lang.expand(label, args), nil
	}
	return "", fmt.Errorf("%w: %s (%s)", ErrMissingKey, key, c.Locale)
}

func (b *Bundle) match(preference string) *Catalog {
	b.mu.Lock()
	if b.matcher == nil {
		b.matched = []language.Tag{b.fallback}
		for _, tag := range b.tags {
			if tag != b.fallback {
				b.matched = append(b.matched, tag)
			}
		}
		b.matcher = language.NewMatcher(b.matched)
	}
	matcher, matched := b.matcher, b.matched
	b.mu.Unlock()

	desired, _, err := language.ParseAcceptLanguage(strings.TrimSpace(preference))
	if err != nil || len(desired) == 0 {
		return b.catalog(b.fallback)
	}
	_, idx, confidence := matcher.Match(desired...)
	if confidence == language.No {
		return b.catalog(b.fallback)
	}
	return b.catalog(matched[idx])
}

func (b *Bundle) catalog(tag language.Tag) *Catalog {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if c, ok := b.catalogs[tag]; ok {
		return c
	}
	for _, c := range b.catalogs {
		return c
	}
	return &Catalog{Locale: tag.String(), Messages: map[string]string{}, Labels: map[string]string{}, tag: tag}
}
