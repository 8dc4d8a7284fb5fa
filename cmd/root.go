package cmd

import (
	"log/slog"
	"os"

	"github.com/jsphweid/loopgen/config"
	"github.com/jsphweid/loopgen/db"
	"github.com/jsphweid/loopgen/engine"
	"github.com/jsphweid/loopgen/library"
	"github.com/jsphweid/loopgen/sample"
	"github.com/jsphweid/loopgen/timeline"
	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "loopgen",
	Short: "Drum loop generator",
	Long: `loopgen renders drum loops from a library of step patterns and a pool of
drum samples, and bundles per-instrument stems into a zip archive.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

// NewCatalog returns nil when no catalog is configured.
func NewCatalog(cfg config.Config) (*db.Catalog, error) {
	if !cfg.Catalog.Enabled() {
		return nil, nil
	}
	return db.NewCatalog(cfg.Catalog.Endpoint, cfg.Catalog.Region, cfg.Catalog.Table)
}

// NewEngine loads the pattern library and sample pool named by cfg.
func NewEngine(cfg config.Config, logger *slog.Logger, catalog *db.Catalog) (*engine.Engine, error) {
	lib, err := library.Load(cfg.PatternsPath)
	if err != nil {
		return nil, err
	}
	pool, err := sample.NewPool(cfg.SamplesDir())
	if err != nil {
		return nil, err
	}

	tail := timeline.TailDrop
	if cfg.WrapTails {
		tail = timeline.TailWrap
	}
	opts := []engine.Option{
		engine.WithSampleRate(cfg.SampleRate),
		engine.WithStemWorkers(cfg.StemWorkers),
		engine.WithTailPolicy(tail),
		engine.WithLogger(logger),
	}
	if catalog != nil {
		opts = append(opts, engine.WithRecorder(catalog))
	}
	return engine.New(lib, pool, opts...), nil
}
