// Package formidable compiles templated HTML forms once and serves
// per-request form instances that fill, validate and map submitted values.
//
// The root package re-exports the entry points most callers need; the
// building blocks live under pkg/.
package formidable

import (
	"context"

	internalparser "github.com/goliatone/go-formidable/internal/parser"
	"github.com/goliatone/go-formidable/pkg/fields"
	"github.com/goliatone/go-formidable/pkg/form"
	"github.com/goliatone/go-formidable/pkg/model"
	pkgparser "github.com/goliatone/go-formidable/pkg/parser"
)

// Form is a per-request form instance.
type Form = form.Form

// Factory holds the collaborators shared by forms.
type Factory = form.Factory

// Error is a failed field check.
type Error = form.Error

// Option configures a single form.
type Option = form.Option

// FactoryOption configures a Factory.
type FactoryOption = form.FactoryOption

// Upload describes a submitted file.
type Upload = fields.Upload

// New compiles src (a path or literal markup) and returns a fresh form built
// with the default factory unless WithFactory is passed.
func New(ctx context.Context, src string, options ...Option) (*Form, error) {
	return form.New(ctx, src, options...)
}

// NewFactory exposes the factory constructor from the top-level module.
func NewFactory(options ...FactoryOption) *Factory {
	return form.NewFactory(options...)
}

// NewParser constructs the markup parser backed by the internal
// implementation while keeping the concrete type hidden.
func NewParser(options ...pkgparser.Option) model.Parser {
	return internalparser.New(pkgparser.NewOptions(options...))
}

// WithCache enables compiled-form caching: true for the factory file store,
// or a cache.Store.
func WithCache(mode any) Option { return form.WithCache(mode) }

// WithVariables binds template variables for path sources.
func WithVariables(vars map[string]any) Option { return form.WithVariables(vars) }

// WithFactory builds the form with f.
func WithFactory(f *Factory) Option { return form.WithFactory(f) }
