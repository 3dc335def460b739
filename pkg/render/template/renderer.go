// Package template defines the engine seam used to expand templated form
// sources before they are compiled.
package template

import (
	"io"
	"strings"
)

// TemplateRenderer renders named templates or inline template content.
// gotemplate.Engine is the pongo2-backed implementation.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}

// IsTemplateContent reports whether s carries template markers rather than
// plain markup.
func IsTemplateContent(s string) bool {
	for _, marker := range []string{"{{", "{%", "{#"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}
