package form

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	internalparser "github.com/goliatone/go-formidable/internal/parser"
	"github.com/goliatone/go-formidable/pkg/cache"
	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/language"
	"github.com/goliatone/go-formidable/pkg/model"
	pkgparser "github.com/goliatone/go-formidable/pkg/parser"
	"github.com/goliatone/go-formidable/pkg/postindicator"
	"github.com/goliatone/go-formidable/pkg/propertyaccess"
	"github.com/goliatone/go-formidable/pkg/render"
	"github.com/goliatone/go-formidable/pkg/render/template"
	"github.com/goliatone/go-formidable/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formidable/pkg/visibility"
	"github.com/goliatone/go-formidable/pkg/visibility/expr"
)

// FactoryOption customises a Factory.
type FactoryOption func(*Factory)

// WithLanguage sets the language pushed into every form.
func WithLanguage(lang language.Language) FactoryOption {
	return func(f *Factory) {
		f.language = lang
	}
}

// WithLocale picks the language from the factory bundle. Accept-Language
// header values are accepted.
func WithLocale(locale string) FactoryOption {
	return func(f *Factory) {
		f.locale = locale
	}
}

// WithBundle replaces the built-in message catalogs.
func WithBundle(bundle *language.Bundle) FactoryOption {
	return func(f *Factory) {
		f.bundle = bundle
	}
}

// WithParser injects a custom markup parser.
func WithParser(parser model.Parser) FactoryOption {
	return func(f *Factory) {
		f.parser = parser
	}
}

// WithRegistry sets the field registry used by the default parser and when
// decoding cached forms.
func WithRegistry(reg *fields.Registry) FactoryOption {
	return func(f *Factory) {
		f.registry = reg
	}
}

// WithTemplateEngine renders templated path sources with engine instead of a
// pongo2 engine rooted at the source directory.
func WithTemplateEngine(engine template.TemplateRenderer) FactoryOption {
	return func(f *Factory) {
		f.templates = engine
	}
}

// WithIndicators shares a post-indicator token store between factories.
func WithIndicators(store *postindicator.Store) FactoryOption {
	return func(f *Factory) {
		f.indicators = store
	}
}

// WithEvaluator replaces the data-visible-when evaluator.
func WithEvaluator(eval visibility.Evaluator) FactoryOption {
	return func(f *Factory) {
		f.evaluator = eval
	}
}

// WithAccessor replaces the entity property accessor used by SetData/GetData.
func WithAccessor(acc propertyaccess.Accessor) FactoryOption {
	return func(f *Factory) {
		f.accessor = acc
	}
}

// WithCacheDir sets the directory of the default file cache store.
func WithCacheDir(dir string) FactoryOption {
	return func(f *Factory) {
		f.cacheDir = dir
	}
}

// WithLogger sets the logger shared by the factory and its collaborators.
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// Factory holds the collaborators shared by forms: language, parser,
// template engine, post-indicator tokens, visibility evaluator and the
// default cache store. A Factory is safe for concurrent use.
type Factory struct {
	language   language.Language
	locale     string
	bundle     *language.Bundle
	parser     model.Parser
	registry   *fields.Registry
	templates  template.TemplateRenderer
	indicators *postindicator.Store
	evaluator  visibility.Evaluator
	accessor   propertyaccess.Accessor
	cacheDir   string
	logger     *zap.Logger

	storeOnce sync.Once
	store     cache.Store
	storeErr  error
}

// NewFactory constructs a Factory, filling unset collaborators with the
// built-in implementations.
func NewFactory(options ...FactoryOption) *Factory {
	f := &Factory{}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if f.logger == nil {
		f.logger = zap.NewNop()
	}
	if f.registry == nil {
		f.registry = fields.DefaultRegistry()
	}
	if f.bundle == nil {
		f.bundle = language.DefaultBundle()
	}
	if f.language == nil {
		f.language = f.bundle.Language(f.locale)
	}
	if f.parser == nil {
		f.parser = internalparser.New(pkgparser.NewOptions(
			pkgparser.WithRegistry(f.registry),
			pkgparser.WithLogger(f.logger.Named("parser")),
		))
	}
	if f.indicators == nil {
		f.indicators = postindicator.NewStore()
	}
	if f.evaluator == nil {
		f.evaluator = expr.New()
	}
	if f.accessor == nil {
		f.accessor = propertyaccess.New()
	}
	if f.cacheDir == "" {
		f.cacheDir = filepath.Join(os.TempDir(), "formidable")
	}
	return f
}

var (
	defaultFactoryOnce sync.Once
	defaultFactory     *Factory
)

// DefaultFactory returns the factory used when New receives no WithFactory.
func DefaultFactory() *Factory {
	defaultFactoryOnce.Do(func() {
		defaultFactory = NewFactory()
	})
	return defaultFactory
}

// Language returns the language pushed into new forms.
func (f *Factory) Language() language.Language { return f.language }

// Bundle returns the message catalogs backing the factory.
func (f *Factory) Bundle() *language.Bundle { return f.bundle }

// Parser returns the markup parser.
func (f *Factory) Parser() model.Parser { return f.parser }

// Logger returns the factory logger.
func (f *Factory) Logger() *zap.Logger { return f.logger }

// Form compiles (or loads from cache) the source and returns a fresh form.
func (f *Factory) Form(ctx context.Context, src string, opts ...Option) (*Form, error) {
	return New(ctx, src, append([]Option{WithFactory(f)}, opts...)...)
}

// DefaultStore returns the file cache store under the factory cache dir,
// creating it on first use.
func (f *Factory) DefaultStore() (cache.Store, error) {
	f.storeOnce.Do(func() {
		f.store, f.storeErr = cache.NewFileStore(f.cacheDir, cache.WithLogger(f.logger.Named("cache")))
	})
	return f.store, f.storeErr
}

// engineFor returns the engine used to expand a path source.
func (f *Factory) engineFor(path string) (template.TemplateRenderer, error) {
	if f.templates != nil {
		return f.templates, nil
	}
	engine, err := gotemplate.New(
		gotemplate.WithBaseDir(filepath.Dir(path)),
		gotemplate.WithTemplateFunc(render.TemplateI18nFuncs(f.bundle, render.TemplateI18nConfig{})),
		gotemplate.WithGlobalData(map[string]any{"locale": f.language.Locale()}),
	)
	if err != nil {
		return nil, fmt.Errorf("form: template engine: %w", err)
	}
	return engine, nil
}
