package fields

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// Upload describes a submitted file. Header is kept for callers that need to
// open the multipart part; it is never persisted.
type Upload struct {
	Filename    string                `json:"filename"`
	ContentType string                `json:"contentType,omitempty"`
	Size        int64                 `json:"size"`
	Header      *multipart.FileHeader `json:"-"`
}

// UploadFromHeader converts a multipart header into an Upload.
func UploadFromHeader(header *multipart.FileHeader) *Upload {
	if header == nil {
		return nil
	}
	return &Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Header:      header,
	}
}

// FileField is an upload input validated against maxsize and accept.
type FileField struct {
	Base
	maxSize int64
	accept  []string
}

// NewFile constructs a file field.
func NewFile(string) *FileField {
	return &FileField{Base: newBase("file")}
}

func (f *FileField) Push(attr string, value any) error {
	switch attr {
	case "maxsize":
		n, err := cast.ToInt64E(strings.TrimSpace(toString(value)))
		if err != nil || n < 0 {
			return mismatch(f.name, attr, "a non-negative byte count", value)
		}
		f.maxSize = n
		f.attrs.Set(attr, n)
		return nil
	case "accept":
		f.accept = nil
		for _, token := range strings.Split(toString(value), ",") {
			if token = strings.ToLower(strings.TrimSpace(token)); token != "" {
				f.accept = append(f.accept, token)
			}
		}
		f.attrs.Set(attr, strings.Join(f.accept, ","))
		return nil
	}
	return f.Base.Push(attr, value)
}

func (f *FileField) SetValue(value any, asDefault bool) {
	if f.assign(value, asDefault) {
		f.Fix()
	}
}

func (f *FileField) Fix() {
	switch v := f.value.(type) {
	case *Upload:
		if v == nil || v.Filename == "" {
			f.value = nil
		}
	case Upload:
		if v.Filename == "" {
			f.value = nil
			return
		}
		f.value = &v
	case *multipart.FileHeader:
		if upload := UploadFromHeader(v); upload != nil {
			f.value = upload
			return
		}
		f.value = nil
	default:
		f.value = nil
	}
}

func (f *FileField) Check() *Failure {
	return f.runChecks(func() *Failure {
		upload, ok := f.value.(*Upload)
		if !ok {
			return f.fail(KindBadValue)
		}
		if f.maxSize > 0 && upload.Size > f.maxSize {
			return f.fail(KindFileTooBig, f.maxSize)
		}
		if len(f.accept) > 0 && !accepts(f.accept, upload) {
			return f.fail(KindFileType, strings.Join(f.accept, ", "))
		}
		return nil
	})
}

// accepts matches an upload against accept tokens: extensions (".pdf"),
// exact MIME types and wildcards ("image/*").
func accepts(tokens []string, upload *Upload) bool {
	ext := strings.ToLower(filepath.Ext(upload.Filename))
	mime := strings.ToLower(strings.TrimSpace(upload.ContentType))
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = strings.TrimSpace(mime[:idx])
	}
	for _, token := range tokens {
		switch {
		case strings.HasPrefix(token, "."):
			if ext == token {
				return true
			}
		case strings.HasSuffix(token, "/*"):
			if strings.HasPrefix(mime, strings.TrimSuffix(token, "*")) {
				return true
			}
		case mime == token:
			return true
		}
	}
	return false
}

func (f *FileField) HTML() string {
	return f.input("file", "")
}

func (f *FileField) Clone() Field {
	return &FileField{
		Base:    f.cloneBase(),
		maxSize: f.maxSize,
		accept:  append([]string(nil), f.accept...),
	}
}

type fileState struct {
	Base    baseState `json:"base"`
	MaxSize int64     `json:"maxSize,omitempty"`
	Accept  []string  `json:"accept,omitempty"`
}

func (f *FileField) MarshalState() ([]byte, error) {
	state := f.state()
	state.Value = nil
	return json.Marshal(fileState{Base: state, MaxSize: f.maxSize, Accept: f.accept})
}

func (f *FileField) UnmarshalState(data []byte) error {
	var s fileState
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	f.restore(s.Base)
	f.maxSize, f.accept = s.MaxSize, s.Accept
	return nil
}
