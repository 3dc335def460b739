package form

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/goliatone/go-formidable/pkg/cache"
	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/language"
	"github.com/goliatone/go-formidable/pkg/model"
	"github.com/goliatone/go-formidable/pkg/postindicator"
	"github.com/goliatone/go-formidable/pkg/render"
	"github.com/goliatone/go-formidable/pkg/render/template"
	"github.com/goliatone/go-formidable/pkg/visibility"
)

var (
	// ErrInvalidCacheMode is returned by New when WithCache receives
	// something other than a bool, nil or a cache.Store.
	ErrInvalidCacheMode = errors.New("form: cache mode must be false, true or a cache.Store")
	// ErrUnknownField is returned when an operation names a missing field.
	ErrUnknownField = errors.New("form: unknown field")
	// ErrUnknownSource is returned by Source for names no select is bound to.
	ErrUnknownSource = errors.New("form: unknown source")
)

// contentThreshold separates literal markup from file paths: longer sources,
// or sources spanning several lines, are markup.
const contentThreshold = 100

// Option configures a single form.
type Option func(*settings)

type settings struct {
	factory   *Factory
	cacheMode any
	variables map[string]any
}

// WithFactory builds the form with the given factory instead of the default.
func WithFactory(f *Factory) Option {
	return func(s *settings) {
		s.factory = f
	}
}

// WithCache enables caching of the compiled representation. mode is false
// (or nil) to disable, true for the factory's file store, or a cache.Store.
func WithCache(mode any) Option {
	return func(s *settings) {
		s.cacheMode = mode
	}
}

// WithVariables binds template variables for path sources.
func WithVariables(vars map[string]any) Option {
	return func(s *settings) {
		s.variables = vars
	}
}

// Form is a per-request instance. It owns a private deep copy of the compiled
// representation and is not safe for concurrent use.
type Form struct {
	factory   *Factory
	logger    *zap.Logger
	lang      language.Language
	path      string
	content   string
	variables map[string]any
	cached    bool

	master    *model.Compiled
	compiled  *model.Compiled
	indicator postindicator.Indicator
	hidden    map[string]string

	constraints map[string][]fields.Constraint
}

// New compiles src, or loads its compiled representation from the cache,
// and returns a reset form. src is literal markup when it is longer than 100
// bytes or contains a newline, and a file path otherwise.
func New(ctx context.Context, src string, opts ...Option) (*Form, error) {
	cfg := settings{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.factory == nil {
		cfg.factory = DefaultFactory()
	}

	f := &Form{
		factory: cfg.factory,
		logger:  cfg.factory.logger.Named("form"),
		lang:    cfg.factory.language,
		cached:  true,
	}
	if len(src) > contentThreshold || strings.Contains(src, "\n") {
		f.content = src
	} else {
		f.path = src
		f.variables = cfg.variables
	}

	store, err := f.resolveStore(cfg.cacheMode)
	if err != nil {
		return nil, err
	}
	if err := f.compile(ctx, store); err != nil {
		return nil, err
	}
	f.Reset()

	f.logger.Debug("form ready",
		zap.String("path", f.path),
		zap.Bool("cached", f.cached),
		zap.Int("fields", len(f.master.Names())),
	)
	return f, nil
}

func (f *Form) resolveStore(mode any) (cache.Store, error) {
	switch v := mode.(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
		return f.factory.DefaultStore()
	case cache.Store:
		return v, nil
	}
	return nil, fmt.Errorf("%w: got %T", ErrInvalidCacheMode, mode)
}

func (f *Form) compile(ctx context.Context, store cache.Store) error {
	if store == nil {
		compiled, err := f.generate(ctx)
		if err != nil {
			return err
		}
		f.master = compiled
		return nil
	}

	key, err := f.fingerprint()
	if err != nil {
		return err
	}
	cond := cache.Conditions{}
	if f.path != "" {
		cond.YoungerThan = f.path
	}

	data, err := store.GetOrCreate(ctx, key, cond, func(ctx context.Context) ([]byte, error) {
		compiled, err := f.generate(ctx)
		if err != nil {
			return nil, err
		}
		return model.Encode(compiled)
	})
	if err != nil {
		return fmt.Errorf("form: load compiled form: %w", err)
	}
	master, err := model.Decode(data, f.factory.registry)
	if err != nil {
		return fmt.Errorf("form: decode cached form: %w", err)
	}
	f.master = master
	return nil
}

// generate runs the parser. It marks the form as not served from cache.
func (f *Form) generate(ctx context.Context) (*model.Compiled, error) {
	markup, err := f.markup()
	if err != nil {
		return nil, err
	}
	f.cached = false
	compiled, err := f.factory.parser.Parse(ctx, markup)
	if err != nil {
		return nil, fmt.Errorf("form: parse: %w", err)
	}
	return compiled, nil
}

// markup returns the literal content, or reads the path source and expands
// it through the template engine when it carries variables or markers.
func (f *Form) markup() (string, error) {
	if f.path == "" {
		return f.content, nil
	}
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return "", fmt.Errorf("form: read %s: %w", f.path, err)
	}
	content := string(raw)
	if f.variables == nil && !template.IsTemplateContent(content) {
		return content, nil
	}
	engine, err := f.factory.engineFor(f.path)
	if err != nil {
		return "", err
	}
	rendered, err := engine.RenderString(content, f.variables)
	if err != nil {
		return "", fmt.Errorf("form: render %s: %w", f.path, err)
	}
	return rendered, nil
}

// fingerprint keys the cache on the path, the literal content and the bound
// variables.
func (f *Form) fingerprint() (string, error) {
	vars := ""
	if len(f.variables) > 0 {
		raw, err := json.Marshal(f.variables)
		if err != nil {
			return "", fmt.Errorf("form: variables: %w", err)
		}
		vars = string(raw)
	}
	return cache.Fingerprint(f.path, f.content, vars), nil
}

// Reset discards every value and attribute change by taking a fresh copy of
// the compiled representation. Constraints added with AddConstraint are
// re-applied to the fresh copy; the language and hidden inputs are kept.
func (f *Form) Reset() {
	f.compiled = f.master.Clone()
	f.indicator = f.factory.indicators.For(f.compiled.Name)
	f.pushLanguage()
	for name, constraints := range f.constraints {
		field, ok := f.compiled.Field(name)
		if !ok {
			continue
		}
		for _, c := range constraints {
			field.Common().AddConstraint(c)
		}
	}
}

// IsCached reports whether the compiled representation came from the cache
// without running the parser.
func (f *Form) IsCached() bool { return f.cached }

// Name returns the name attribute of the <form> element.
func (f *Form) Name() string { return f.compiled.Name }

// Factory returns the factory the form was built with.
func (f *Form) Factory() *Factory { return f.factory }

// SetLanguage switches the language used for labels and messages.
func (f *Form) SetLanguage(lang language.Language) {
	if lang == nil {
		return
	}
	f.lang = lang
	f.pushLanguage()
}

// Language returns the language used for labels and messages.
func (f *Form) Language() language.Language { return f.lang }

func (f *Form) pushLanguage() {
	for _, field := range f.compiled.Fields() {
		field.Common().SetLanguage(f.lang)
	}
}

// Field returns the named field.
func (f *Form) Field(name string) (fields.Field, bool) {
	return f.compiled.Field(name)
}

// Fields returns the fields in declaration order.
func (f *Form) Fields() []fields.Field {
	return f.compiled.Fields()
}

func (f *Form) field(name string) (fields.Field, error) {
	field, ok := f.compiled.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return field, nil
}

// Values returns the current value of every field keyed by name.
func (f *Form) Values() map[string]any {
	values := make(map[string]any)
	for _, field := range f.compiled.Fields() {
		values[field.Name()] = field.Value()
	}
	return values
}

// SetValues applies submitted values. Fields missing from values are
// emptied, except file fields, which are fed from files.
func (f *Form) SetValues(values map[string]any, files map[string]*fields.Upload) {
	for _, field := range f.compiled.Fields() {
		name := field.Name()
		if v, ok := values[name]; ok && v != nil {
			field.SetValue(v, false)
			continue
		}
		if upload, ok := files[name]; ok && upload != nil {
			if _, isFile := field.(*fields.FileField); isFile {
				field.SetValue(upload, false)
				continue
			}
		}
		field.SetValue("", false)
	}
}

// SetValue sets an application value; read-only fields accept it.
func (f *Form) SetValue(name string, value any) error {
	field, err := f.field(name)
	if err != nil {
		return err
	}
	field.SetValue(value, true)
	return nil
}

// Value returns the value of the named field, nil when it does not exist.
func (f *Form) Value(name string) any {
	if field, ok := f.compiled.Field(name); ok {
		return field.Value()
	}
	return nil
}

// AddConstraint appends a validator to the named field. It is kept across
// Reset.
func (f *Form) AddConstraint(name string, c fields.Constraint) error {
	field, err := f.field(name)
	if err != nil {
		return err
	}
	if c == nil {
		return nil
	}
	field.Common().AddConstraint(c)
	if f.constraints == nil {
		f.constraints = make(map[string][]fields.Constraint)
	}
	f.constraints[name] = append(f.constraints[name], c)
	return nil
}

// SetAttribute pushes an attribute to the named field, keeping the typed
// state (min, max, step, required...) in sync with the rendered attributes.
func (f *Form) SetAttribute(name, attr string, value any) error {
	field, err := f.field(name)
	if err != nil {
		return err
	}
	if err := field.Push(attr, value); err != nil {
		return fmt.Errorf("form: %w", err)
	}
	field.Fix()
	return nil
}

// SetOptionClass sets the class of one option of the named select.
func (f *Form) SetOptionClass(name, value, class string) error {
	field, err := f.field(name)
	if err != nil {
		return err
	}
	sel, ok := field.(*fields.SelectField)
	if !ok {
		return fmt.Errorf("form: %q is a %s field, not a select", name, field.Type())
	}
	sel.SetOptionClass(value, class)
	return nil
}

// Attribute returns an attribute of the named field.
func (f *Form) Attribute(name, attr string) (any, bool) {
	field, ok := f.compiled.Field(name)
	if !ok {
		return nil, false
	}
	return field.Common().Attribute(attr)
}

// Source feeds options into every select bound to the named source.
func (f *Form) Source(name string, data any) error {
	bound, ok := f.compiled.Sources[name]
	if !ok || len(bound) == 0 {
		return fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
	for _, fieldName := range bound {
		field, err := f.field(fieldName)
		if err != nil {
			return err
		}
		sourced, ok := field.(interface{ SetOptions(any) error })
		if !ok {
			continue
		}
		if err := sourced.SetOptions(data); err != nil {
			return fmt.Errorf("form: source %q: %w", name, err)
		}
	}
	return nil
}

// Sources returns the source names declared by the markup, sorted.
func (f *Form) Sources() []string {
	names := make([]string, 0, len(f.compiled.Sources))
	for name := range f.compiled.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetData copies entity properties into mapped fields. Read-only and
// unmapped fields are left alone. Maps only provide the keys they hold.
func (f *Form) SetData(entity any) error {
	for _, field := range f.compiled.Fields() {
		base := field.Common()
		mapping := base.MappingName()
		if mapping == "" || base.ReadOnly() {
			continue
		}
		if m, ok := entity.(map[string]any); ok {
			if v, ok := m[mapping]; ok && v != nil {
				field.SetValue(v, true)
			}
			continue
		}
		value, err := f.factory.accessor.GetValue(entity, mapping)
		if err != nil {
			return fmt.Errorf("form: set data %s: %w", field.Name(), err)
		}
		field.SetValue(value, true)
	}
	return nil
}

// GetData writes mapped field values into entity, a map[string]any or a
// struct pointer.
func (f *Form) GetData(entity any) error {
	for _, field := range f.compiled.Fields() {
		mapping := field.Common().MappingName()
		if mapping == "" {
			continue
		}
		if m, ok := entity.(map[string]any); ok {
			m[mapping] = field.Value()
			continue
		}
		if err := f.factory.accessor.SetValue(entity, mapping, field.Value()); err != nil {
			return fmt.Errorf("form: get data %s: %w", field.Name(), err)
		}
	}
	return nil
}

// Data returns the mapped values in a new map.
func (f *Form) Data() map[string]any {
	data := make(map[string]any)
	_ = f.GetData(data)
	return data
}

// Check validates the named fields, or every field when names is empty, and
// returns the failures in declaration order. Fields hidden by their
// data-visible-when rule are skipped.
func (f *Form) Check(names ...string) []*Error {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var (
		errs []*Error
		ctx  *visibility.Context
	)
	for _, field := range f.compiled.Fields() {
		if len(wanted) > 0 && !wanted[field.Name()] {
			continue
		}
		if rule := field.Common().VisibleWhen(); rule != "" {
			if ctx == nil {
				ctx = &visibility.Context{Values: f.Values()}
			}
			if !f.visible(field.Name(), rule, *ctx) {
				continue
			}
		}
		if failure := field.Check(); failure != nil {
			errs = append(errs, newError(field.Name(), *failure, f.lang))
		}
	}
	return errs
}

// Try checks value against a copy of the named field, leaving the form
// untouched. It returns nil when the value would pass.
func (f *Form) Try(name string, value any) (*Error, error) {
	field, err := f.field(name)
	if err != nil {
		return nil, err
	}
	probe := field.Clone()
	probe.SetValue(value, false)
	if failure := probe.Check(); failure != nil {
		return newError(name, *failure, f.lang), nil
	}
	return nil, nil
}

// Visible reports whether the named field is shown given the current values.
// Fields without a data-visible-when rule are always visible.
func (f *Form) Visible(name string) bool {
	field, ok := f.compiled.Field(name)
	if !ok {
		return false
	}
	rule := field.Common().VisibleWhen()
	if rule == "" {
		return true
	}
	return f.visible(name, rule, visibility.Context{Values: f.Values()})
}

// visible evaluates a visibility rule; a rule that cannot be evaluated keeps
// the field visible.
func (f *Form) visible(name, rule string, ctx visibility.Context) bool {
	ok, err := f.factory.evaluator.Eval(name, rule, ctx)
	if err != nil {
		f.logger.Warn("visibility rule failed", zap.String("field", name), zap.Error(err))
		return true
	}
	return ok
}

// ErrorMapping groups error messages by field name.
func (f *Form) ErrorMapping(errs []*Error) render.ErrorMapping {
	payload := make(map[string][]string, len(errs))
	for _, e := range errs {
		payload[e.Field()] = append(payload[e.Field()], e.Message())
	}
	return render.MapErrors(f.compiled.Names(), payload)
}

// Token returns the post-indicator token rendered with the form.
func (f *Form) Token() (string, error) {
	return f.indicator.Token()
}

// SetHidden adds hidden inputs rendered next to the post indicator.
func (f *Form) SetHidden(hidden ...render.HiddenField) {
	f.hidden = render.MergeHiddenFields(f.hidden, hidden...)
}
