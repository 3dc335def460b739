package fields

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Attributes is an insertion-ordered string-keyed mapping of renderable
// values. Order is preserved so rendered markup stays deterministic and
// matches the source template.
type Attributes struct {
	keys   []string
	values map[string]any
}

// Set stores value under name, keeping the original position when the name
// already exists.
func (a *Attributes) Set(name string, value any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	if _, exists := a.values[name]; !exists {
		a.keys = append(a.keys, name)
	}
	a.values[name] = value
}

// Get returns the value stored under name.
func (a *Attributes) Get(name string) (any, bool) {
	if a == nil || a.values == nil {
		return nil, false
	}
	value, ok := a.values[name]
	return value, ok
}

// Delete removes name.
func (a *Attributes) Delete(name string) {
	if a.values == nil {
		return
	}
	if _, exists := a.values[name]; !exists {
		return
	}
	delete(a.values, name)
	for idx, key := range a.keys {
		if key == name {
			a.keys = append(a.keys[:idx], a.keys[idx+1:]...)
			break
		}
	}
}

// Keys returns the attribute names in insertion order.
func (a *Attributes) Keys() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

// Len reports the number of attributes.
func (a *Attributes) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	out := Attributes{
		keys:   append([]string(nil), a.keys...),
		values: make(map[string]any, len(a.values)),
	}
	for key, value := range a.values {
		out.values[key] = value
	}
	return out
}

type attributePair struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// MarshalJSON encodes the attributes as an ordered list of pairs.
func (a Attributes) MarshalJSON() ([]byte, error) {
	pairs := make([]attributePair, 0, len(a.keys))
	for _, key := range a.keys {
		pairs = append(pairs, attributePair{Name: key, Value: a.values[key]})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON restores attributes encoded by MarshalJSON.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var pairs []attributePair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	*a = Attributes{}
	for _, pair := range pairs {
		a.Set(pair.Name, pair.Value)
	}
	return nil
}

// write renders the attributes as ` name="value"` pairs. Boolean true and nil
// values render as bare attributes, false is omitted.
func (a *Attributes) write(sb *strings.Builder) {
	if a == nil {
		return
	}
	for _, key := range a.keys {
		value := a.values[key]
		switch v := value.(type) {
		case nil:
			sb.WriteString(" " + html.EscapeString(key))
			continue
		case bool:
			if v {
				sb.WriteString(" " + html.EscapeString(key))
			}
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(html.EscapeString(key))
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(formatValue(value)))
		sb.WriteString(`"`)
	}
}

// formatValue converts an attribute or field value into its markup form.
func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(dateLayout)
	case []string:
		return strings.Join(v, ",")
	default:
		return toString(v)
	}
}
