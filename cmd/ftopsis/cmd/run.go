package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/engine"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/report"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

type runOptions struct {
	root          *rootOptions
	mode          string
	format        string
	output        string
	negativeIdeal string
	record        bool
}

func newRunCommand(root *rootOptions) *cobra.Command {
	opts := &runOptions{root: root}
	c := &cobra.Command{
		Use:   "run <file>",
		Short: "Evaluate a decision document",
		Long: `Rank or classify the alternatives in a JSON decision document.

The fuzzy variant and the mode are detected from the document layout: a "parameters"
object is ranked, linguistic_terms (trapezoidal) or linguistic_variables_alternatives
(triangular) documents are classified. --mode rank ranks any document.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd.Context(), cmd.OutOrStdout(), args[0])
		},
	}
	c.Flags().StringVarP(&opts.mode, "mode", "m", "auto", "evaluation mode (auto, rank, classify)")
	c.Flags().StringVarP(&opts.format, "format", "f", "table", "output format (table, json, xlsx)")
	c.Flags().StringVarP(&opts.output, "output", "o", "", "write output to file instead of stdout")
	c.Flags().StringVar(&opts.negativeIdeal, "negative-ideal", "", "classification negative ideal (adjacent, farthest); overrides config")
	c.Flags().BoolVar(&opts.record, "record", false, "record the run in the run store")
	return c
}

func (o *runOptions) run(ctx context.Context, stdout io.Writer, path string) error {
	mode, err := input.ParseMode(o.mode)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(o.format)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && o.output == "" {
		return errors.New("xlsx output needs --output")
	}

	cfg, logger, err := o.root.load()
	if err != nil {
		return err
	}
	if o.negativeIdeal != "" {
		cfg.Engine.NegativeIdeal = o.negativeIdeal
	}

	p, err := input.Load(path)
	if err != nil {
		var syntax *json.SyntaxError
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return fmt.Errorf("input file not found: %s", path)
		case errors.As(err, &syntax):
			return fmt.Errorf("invalid JSON in %s: %w", path, syntax)
		}
		return err
	}

	eng, err := engine.New(cfg.Engine, cfg.Report, nil, logger)
	if err != nil {
		return err
	}
	start := time.Now().UTC()
	res, err := eng.Evaluate(ctx, p, mode)
	if err != nil {
		return err
	}

	render := func(w io.Writer) error {
		if err := eng.Renderer().Write(w, format, res.Result); err != nil {
			return fmt.Errorf("write %s: %w", format, err)
		}
		return nil
	}
	if o.output == "" {
		err = render(stdout)
	} else {
		err = writeFile(o.output, render)
	}
	if err != nil {
		return err
	}

	if o.record {
		if err := recordRun(ctx, cfg.Database, path, eng, res, start); err != nil {
			return err
		}
		logger.Info("run recorded", "database", cfg.Database.Path)
	}
	return nil
}

// createOutput opens the --output destination.
var createOutput = func(name string) (io.WriteCloser, error) { return os.Create(name) }

// writeFile reports a failed Close, which is where buffered data can be lost.
func writeFile(name string, write func(io.Writer) error) (err error) {
	f, err := createOutput(name)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}()
	return write(f)
}

func recordRun(ctx context.Context, db config.DatabaseConfig, path string, eng *engine.Engine, res *engine.Result, start time.Time) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	result, err := json.Marshal(eng.Document(res))
	if err != nil {
		return err
	}

	s, err := historyStore(ctx, db)
	if err != nil {
		return fmt.Errorf("open run store: %w", err)
	}
	defer s.Close()

	run := &store.Run{
		Mode:   string(res.Mode),
		Kind:   res.Kind.String(),
		Status: store.StatusRunning,
		Source: "cli",
		Input:  data,
	}
	if err := s.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	done := start.Add(res.Took)
	run.Status = store.StatusCompleted
	run.Result = result
	run.StartedAt = &start
	run.CompletedAt = &done
	if err := s.UpdateRun(ctx, run); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}
