package render

import (
	"strconv"
	"strings"
)

// ErrorMapping groups rendered messages by the field they belong to. Messages
// that match no field land in Form.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Messages returns the messages of one field.
func (m ErrorMapping) Messages(field string) []string {
	return m.Fields[field]
}

// Empty reports whether the mapping carries no message at all.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// dropping duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

// MapErrors assigns payload messages to the known field names. Keys may be
// plain names, dotted mapping paths or JSON pointers as produced by API
// validators ("/body/email", "$.items[0].sku"); unknown keys become
// form-level messages so nothing is lost.
func MapErrors(fieldNames []string, payload map[string][]string) ErrorMapping {
	mapping := ErrorMapping{Fields: make(map[string][]string)}
	known := make(map[string]struct{}, len(fieldNames))
	for _, name := range fieldNames {
		if name = strings.TrimSpace(name); name != "" {
			known[name] = struct{}{}
		}
	}

	for rawPath, messages := range payload {
		clean := normalizeMessages(messages)
		if len(clean) == 0 {
			continue
		}
		if field := matchField(rawPath, known); field != "" {
			mapping.Fields[field] = normalizeMessages(append(mapping.Fields[field], clean...))
			continue
		}
		mapping.Form = append(mapping.Form, clean...)
	}

	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	mapping.Form = normalizeMessages(mapping.Form)
	return mapping
}

func normalizeMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	seen := make(map[string]struct{}, len(messages))
	for _, message := range messages {
		trimmed := strings.TrimSpace(message)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// matchField returns the longest known field path prefixing raw, trying the
// path as given, without wrapper segments and without list indexes.
func matchField(raw string, known map[string]struct{}) string {
	if _, ok := known[strings.TrimSpace(raw)]; ok {
		return strings.TrimSpace(raw)
	}
	if isFormLevelKey(raw) {
		return ""
	}
	segments := splitPath(raw)
	if len(segments) == 0 {
		return ""
	}

	unwrapped := dropWrappers(segments)
	best := ""
	for _, variant := range [][]string{segments, unwrapped, dropIndexes(segments), dropIndexes(unwrapped)} {
		for end := len(variant); end > 0; end-- {
			candidate := strings.Join(variant[:end], ".")
			if _, ok := known[candidate]; ok {
				if strings.Count(candidate, ".") > strings.Count(best, ".") || best == "" {
					best = candidate
				}
				break
			}
		}
	}
	return best
}

func splitPath(path string) []string {
	clean := strings.TrimLeft(strings.TrimSpace(path), "#$/.")
	clean = strings.NewReplacer("[", ".", "]", "").Replace(clean)
	parts := strings.FieldsFunc(clean, func(r rune) bool { return r == '.' || r == '/' })

	out := parts[:0]
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		part = strings.ReplaceAll(part, "~1", "/")
		part = strings.ReplaceAll(part, "~0", "~")
		out = append(out, part)
	}
	return out
}

var wrapperSegments = map[string]struct{}{
	"body":       {},
	"request":    {},
	"payload":    {},
	"data":       {},
	"attributes": {},
}

func dropWrappers(segments []string) []string {
	for len(segments) > 0 {
		if _, ok := wrapperSegments[strings.ToLower(segments[0])]; !ok {
			break
		}
		segments = segments[1:]
	}
	return segments
}

func dropIndexes(segments []string) []string {
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if _, err := strconv.Atoi(segment); err == nil {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func isFormLevelKey(key string) bool {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "", ".", "/", "#", "$", "form", "__all__", "non_field_errors", "non-field-errors":
		return true
	}
	return false
}
