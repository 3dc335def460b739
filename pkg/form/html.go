package form

import (
	"embed"
	"io/fs"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formidable/pkg/model"
	"github.com/goliatone/go-formidable/pkg/render"
)

//go:embed assets/*.js
var assets embed.FS

// ScriptName is the file name of the visibility script inside Assets.
const ScriptName = "formidable.js"

// Assets exposes the browser script so applications can serve it instead of
// relying on the inline copy.
func Assets() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return assets
	}
	return sub
}

// Script returns the visibility script source.
func Script() string {
	data, err := fs.ReadFile(Assets(), ScriptName)
	if err != nil {
		return ""
	}
	return string(data)
}

// HTML renders the form: the visibility script when a field carries a rule,
// then the markup with every field rendered from its current state and the
// hidden inputs at the post-indicator position. The output ends with a
// newline.
func (f *Form) HTML() string {
	var sb strings.Builder
	if f.compiled.NeedJS {
		sb.WriteString(`<script type="text/javascript">`)
		sb.WriteString(Script())
		sb.WriteString("</script>\n")
	}

	for _, entry := range f.compiled.Entries {
		switch entry.Kind {
		case model.EntryStatic:
			sb.WriteString(entry.Text)
		case model.EntryField:
			field, ok := f.compiled.Field(entry.Name)
			if !ok {
				continue
			}
			if grouped, isGroup := field.(interface{ ChoiceHTML(string) string }); isGroup && entry.Choice != "" {
				sb.WriteString(grouped.ChoiceHTML(entry.Choice))
				continue
			}
			sb.WriteString(field.HTML())
		case model.EntryIndicator:
			sb.WriteString(f.hiddenHTML())
		}
	}

	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}

// String implements fmt.Stringer.
func (f *Form) String() string { return f.HTML() }

func (f *Form) hiddenHTML() string {
	hidden := f.hidden
	token, err := f.indicator.Token()
	if err != nil {
		f.logger.Warn("post indicator token unavailable", zap.Error(err))
	} else {
		hidden = render.MergeHiddenFields(hidden, render.Hidden(f.indicator.Name(), token))
	}
	return render.HiddenHTML(hidden)
}
