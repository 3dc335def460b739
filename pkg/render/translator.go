// Package render holds the presentation helpers shared by forms: hidden
// inputs, grouping of error messages per field, and the translation hooks
// installed into template engines.
package render

import (
	"errors"
	"strings"
)

// ErrMissingTranslator is passed to MissingTranslationHandler when no
// Translator was configured.
var ErrMissingTranslator = errors.New("render: translator is not configured")

// Translator resolves a message key for a locale. *language.Bundle
// satisfies it.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to print when a key cannot be
// translated. err is nil when the translator returned an empty string.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

// missingTranslationDefault prints the "default" entry of a trailing
// map[string]any argument when present, the key otherwise.
func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	if len(args) > 0 {
		if opts, ok := args[len(args)-1].(map[string]any); ok {
			if fallback, ok := opts["default"].(string); ok && strings.TrimSpace(fallback) != "" {
				return fallback
			}
		}
	}
	return key
}
