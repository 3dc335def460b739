// Command formidable renders, checks, lints and interactively fills form
// markup from the terminal.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-formidable/pkg/cache"
	"github.com/goliatone/go-formidable/pkg/form"
)

var (
	// configFile is set by the --config flag.
	configFile string
	verbose    bool

	app *application
)

// application carries what every subcommand needs once configuration is
// loaded.
type application struct {
	logger  *zap.Logger
	factory *form.Factory
	store   cache.Store
	closers []func() error
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "formidable",
	Short: "Compile and exercise HTML forms",
	Long: `formidable compiles templated HTML form markup into fields, renders it
back with the post indicator, and validates values against the markup
constraints.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: ./formidable.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().String("language", "", "locale or Accept-Language value used for messages")
	rootCmd.PersistentFlags().String("cache", "", "compiled form cache: file, memory, sqlite or none")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(lintCmd)
}

func setup(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configFile, cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		if logger, err = zap.NewDevelopment(); err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
	}

	app = &application{logger: logger}
	app.closers = append(app.closers, func() error {
		_ = logger.Sync()
		return nil
	})
	app.factory = form.NewFactory(
		form.WithLogger(logger),
		form.WithLocale(cfg.GetString(cfgKeyLanguage)),
		form.WithCacheDir(cfg.GetString(cfgKeyCacheDir)),
	)
	return app.openStore(cmd, cfg.GetString(cfgKeyCacheMode), cfg.GetString(cfgKeyCacheDSN))
}

func (a *application) openStore(cmd *cobra.Command, mode, dsn string) error {
	storeLogger := cache.WithLogger(a.logger.Named("cache"))
	switch mode {
	case "", "none":
		return nil
	case "file":
		store, err := a.factory.DefaultStore()
		if err != nil {
			return fmt.Errorf("open file cache: %w", err)
		}
		a.store = store
	case "memory":
		a.store = cache.NewMemoryStore(0, storeLogger)
	case "sqlite":
		if dsn != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
				return fmt.Errorf("open sqlite cache: %w", err)
			}
		}
		store, err := cache.OpenSQLStore(cmd.Context(), dsn, storeLogger)
		if err != nil {
			return fmt.Errorf("open sqlite cache: %w", err)
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	default:
		return fmt.Errorf("unknown cache mode %q (valid: file, memory, sqlite, none)", mode)
	}
	return nil
}

// formOptions returns the per-form options derived from configuration.
func (a *application) formOptions(extra ...form.Option) []form.Option {
	opts := []form.Option{form.WithFactory(a.factory)}
	if a.store != nil {
		opts = append(opts, form.WithCache(a.store))
	}
	return append(opts, extra...)
}

func teardown() error {
	if app == nil {
		return nil
	}
	var first error
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
