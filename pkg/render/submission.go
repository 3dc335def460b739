package render

import (
	"html"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// HiddenField is a hidden input rendered after a form's markup: the post
// indicator token, CSRF tokens, record versions.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: cast.ToString(value),
	}
}

// CSRFToken constructs a hidden field carrying the provided token under the
// input name the backend expects ("_csrf", "csrf_token", ...).
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// HTML renders the field as an <input type="hidden" />.
func (h HiddenField) HTML() string {
	return `<input type="hidden" name="` + html.EscapeString(h.Name) + `" value="` + html.EscapeString(h.Value) + `" />`
}

// MergeHiddenFields returns a copy of base with the provided fields applied.
// Empty names are ignored; later fields win on name collisions.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		if name := strings.TrimSpace(field.Name); name != "" {
			out[name] = field.Value
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	result := make([]HiddenField, 0, len(fields))
	for name, value := range fields {
		if name = strings.TrimSpace(name); name != "" {
			result = append(result, HiddenField{Name: name, Value: value})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if len(result) == 0 {
		return nil
	}
	return result
}

// HiddenHTML renders the fields in name order, one per line.
func HiddenHTML(fields map[string]string) string {
	var sb strings.Builder
	for _, field := range SortedHiddenFields(fields) {
		sb.WriteString(field.HTML())
		sb.WriteByte('\n')
	}
	return sb.String()
}
