package form

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formidable/pkg/fields"
)

// maxMemory bounds the multipart parts kept in memory while parsing a
// submission; larger files spill to disk.
const maxMemory = 32 << 20

// Posted reports whether r is a submission of this form. When it is, the
// posted values and uploaded files are applied to the fields.
func (f *Form) Posted(r *http.Request) (bool, error) {
	if r == nil || r.Method != http.MethodPost {
		return false, nil
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return false, fmt.Errorf("form: parse submission: %w", err)
	}
	if !f.indicator.Posted(r) {
		return false, nil
	}

	values := make(map[string]any, len(r.PostForm))
	for _, field := range f.compiled.Fields() {
		name := field.Name()
		submitted, ok := r.PostForm[name]
		if !ok || len(submitted) == 0 {
			continue
		}
		if sel, isSelect := field.(*fields.SelectField); isSelect && sel.Multiple() {
			values[name] = submitted
			continue
		}
		values[name] = submitted[0]
	}

	var files map[string]*fields.Upload
	if r.MultipartForm != nil {
		files = make(map[string]*fields.Upload, len(r.MultipartForm.File))
		for name, headers := range r.MultipartForm.File {
			if len(headers) > 0 {
				files[name] = fields.UploadFromHeader(headers[0])
			}
		}
	}

	f.SetValues(values, files)
	f.logger.Debug("form submitted",
		zap.String("form", f.compiled.Name),
		zap.Int("values", len(values)),
		zap.Int("files", len(files)),
	)
	return true, nil
}

// Handle processes a submission: when r posts this form the fields are
// checked, and either onSuccess receives the mapped data or onFailure the
// failures. It returns the failures, nil when the request is not a
// submission or the check passed.
func (f *Form) Handle(r *http.Request, onSuccess func(data map[string]any), onFailure func(errs []*Error)) ([]*Error, error) {
	posted, err := f.Posted(r)
	if err != nil || !posted {
		return nil, err
	}
	if errs := f.Check(); len(errs) > 0 {
		if onFailure != nil {
			onFailure(errs)
		}
		return errs, nil
	}
	if onSuccess != nil {
		onSuccess(f.Data())
	}
	return nil, nil
}
