// Package cmd provides the CLI commands for ftopsis.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/server"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

type rootOptions struct {
	configFile string
	verbose    bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "ftopsis",
		Short: "Rank and classify alternatives with fuzzy TOPSIS",
		Long: `ftopsis evaluates multi-criteria decision documents built on triangular or
trapezoidal fuzzy numbers. It ranks alternatives with Fuzzy TOPSIS or assigns them
to reference profiles with FTOPSIS-Class.

Examples:
  ftopsis run data.json
  ftopsis run --mode rank --format json data.json
  ftopsis run --format xlsx --output report.xlsx data.json
  ftopsis sample --kind trapezoidal --elements 8 > sample.json
  ftopsis serve --config ftopsis.yaml`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (YAML)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newRunCommand(opts),
		newDetectCommand(),
		newSampleCommand(),
		newHistoryCommand(opts),
		newServeCommand(opts),
	)
	return root
}

// Execute runs the CLI.
func Execute() error {
	return NewRootCommand().Execute()
}

func (o *rootOptions) load() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if o.verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, server.NewLogger(cfg.Logging, os.Stderr), nil
}

// historyStore opens the configured run store. The CLI has no use for an in-memory store, so
// the memory driver falls back to the SQLite file.
func historyStore(ctx context.Context, cfg config.DatabaseConfig) (store.Store, error) {
	if cfg.Driver == "" || cfg.Driver == "memory" {
		cfg.Driver = "sqlite"
	}
	return store.Open(ctx, cfg)
}
