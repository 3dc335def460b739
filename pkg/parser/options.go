package parser

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-formidable/pkg/fields"
)

// Options configures the markup parser.
type Options struct {
	// Registry resolves type tags to field constructors. Nil uses
	// fields.DefaultRegistry, which covers the built-in variants.
	Registry *fields.Registry

	// Logger receives a debug entry per parsed document. Defaults to a no-op
	// logger.
	Logger *zap.Logger
}

// Option mutates Options during construction.
type Option func(*Options)

// WithRegistry swaps the field registry, typically to add custom variants.
func WithRegistry(reg *fields.Registry) Option {
	return func(opts *Options) {
		opts.Registry = reg
	}
}

// WithLogger sets the parser logger.
func WithLogger(logger *zap.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// NewOptions applies Option functions and returns the resulting
// configuration. Implementations under internal/parser call this helper so
// defaults stay in one place.
func NewOptions(options ...Option) Options {
	cfg := Options{
		Registry: fields.DefaultRegistry(),
		Logger:   zap.NewNop(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Registry == nil {
		cfg.Registry = fields.DefaultRegistry()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}
