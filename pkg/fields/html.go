package fields

import (
	"html"
	"strings"
)

// input renders a void <input> element for the field. The value attribute is
// skipped when value is empty.
func (b *Base) input(inputType, value string) string {
	var sb strings.Builder
	sb.WriteString(`<input type="`)
	sb.WriteString(html.EscapeString(inputType))
	sb.WriteString(`" name="`)
	sb.WriteString(html.EscapeString(b.name))
	sb.WriteString(`"`)
	if value != "" {
		sb.WriteString(` value="`)
		sb.WriteString(html.EscapeString(value))
		sb.WriteString(`"`)
	}
	b.attrs.write(&sb)
	sb.WriteString(" />")
	return sb.String()
}

// open renders an opening tag carrying the field name and attributes.
func (b *Base) open(tag string, sb *strings.Builder) {
	sb.WriteString("<")
	sb.WriteString(tag)
	sb.WriteString(` name="`)
	sb.WriteString(html.EscapeString(b.name))
	sb.WriteString(`"`)
	b.attrs.write(sb)
	sb.WriteString(">")
}
