package language

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Language renders failure messages and field labels for one locale. Fields
// hold it to print their labels; form errors use it to render messages.
type Language interface {
	Locale() string
	// Translate renders the message for kind. args[0] is the field label, the
	// remaining values are the failure arguments.
	Translate(kind string, args ...any) string
	// Label resolves a label key, returning fallback when it is unknown.
	Label(key, fallback string) string
}

// catalogLanguage serves a catalog and falls back to a second one (English by
// default) for keys the first does not define.
type catalogLanguage struct {
	primary  *Catalog
	fallback *Catalog
}

var _ Language = (*catalogLanguage)(nil)

// FromCatalog wraps c as a Language. fallback may be nil.
func FromCatalog(c, fallback *Catalog) Language {
	return &catalogLanguage{primary: c, fallback: fallback}
}

func (l *catalogLanguage) Locale() string { return l.primary.Locale }

func (l *catalogLanguage) Translate(kind string, args ...any) string {
	message, ok := l.primary.Messages[kind]
	if !ok && l.fallback != nil {
		message, ok = l.fallback.Messages[kind]
	}
	if !ok {
		message = "{label}: " + kind
	}
	return l.expand(message, args)
}

func (l *catalogLanguage) Label(key, fallback string) string {
	if text, ok := l.primary.Labels[key]; ok && text != "" {
		return text
	}
	if l.fallback != nil {
		if text, ok := l.fallback.Labels[key]; ok && text != "" {
			return text
		}
	}
	return fallback
}

var placeholder = regexp.MustCompile(`\{(label|[0-9]+)\}`)

func (l *catalogLanguage) expand(message string, args []any) string {
	return placeholder.ReplaceAllStringFunc(message, func(match string) string {
		name := match[1 : len(match)-1]
		idx := 0
		if name != "label" {
			n, err := strconv.Atoi(name)
			if err != nil {
				return match
			}
			idx = n
		}
		if idx >= len(args) {
			return match
		}
		return l.format(args[idx])
	})
}

// format prints an argument using the catalog date layouts. Midnight times are
// printed as dates.
func (l *catalogLanguage) format(arg any) string {
	switch v := arg.(type) {
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format(l.layout(func(c *Catalog) string { return c.DateFormat }, "2006-01-02"))
		}
		return v.Format(l.layout(func(c *Catalog) string { return c.DateTimeFormat }, "2006-01-02 15:04"))
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	}
	s, err := cast.ToStringE(arg)
	if err != nil {
		return fmt.Sprint(arg)
	}
	return s
}

func (l *catalogLanguage) layout(pick func(*Catalog) string, def string) string {
	if layout := pick(l.primary); layout != "" {
		return layout
	}
	if l.fallback != nil {
		if layout := pick(l.fallback); layout != "" {
			return layout
		}
	}
	return def
}
