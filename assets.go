package formidable

import (
	"io/fs"

	"github.com/goliatone/go-formidable/pkg/form"
	"github.com/goliatone/go-formidable/pkg/language"
)

// RuntimeAssetsFS exposes the browser script that toggles fields carrying a
// data-visible-when rule, so applications can serve it from a static route
// instead of the copy inlined by Form.HTML.
//
//	mux.Handle("/formidable/",
//	  http.StripPrefix("/formidable/",
//	    http.FileServerFS(formidable.RuntimeAssetsFS()),
//	  ),
//	)
func RuntimeAssetsFS() fs.FS {
	return form.Assets()
}

// EmbeddedLocales exposes the built-in message catalogs so callers can copy
// and extend them.
func EmbeddedLocales() fs.FS {
	return language.BuiltinFS()
}
