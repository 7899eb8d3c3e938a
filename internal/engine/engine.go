// Package engine evaluates decoded problems with the configured fuzzy variants.
package engine

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/ftopsis"
	"github.com/MikeSquared-Agency/Ftopsis/internal/fuzzy"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/metrics"
	"github.com/MikeSquared-Agency/Ftopsis/internal/report"
)

type Engine struct {
	cfg      config.EngineConfig
	strategy ftopsis.NegativeStrategy
	renderer *report.Renderer
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Result is an evaluation outcome together with what produced it.
type Result struct {
	report.Result
	Mode     input.Mode
	Kind     fuzzy.Kind
	Elements int
	Took     time.Duration
}

func New(cfg config.EngineConfig, rep config.ReportConfig, m *metrics.Metrics, logger *slog.Logger) (*Engine, error) {
	strategy, err := ftopsis.ParseNegativeStrategy(cfg.NegativeIdeal)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		cfg:      cfg,
		strategy: strategy,
		renderer: report.New(report.Options{
			RankingDecimals:        rep.RankingDecimals,
			ClassificationDecimals: rep.ClassificationDecimals,
		}),
		metrics: m,
		logger:  logger,
	}, nil
}

func (e *Engine) Renderer() *report.Renderer { return e.renderer }

// Document is the JSON form of res as served and stored.
func (e *Engine) Document(res *Result) any { return e.renderer.Document(res.Result) }

func (e *Engine) precision(kind fuzzy.Kind) int {
	if kind == fuzzy.KindTrapezoidal {
		return e.cfg.TrapezoidalPrecision
	}
	return e.cfg.TriangularPrecision
}

func (e *Engine) pipeline(kind fuzzy.Kind, precision int) (*ftopsis.Pipeline, error) {
	v, err := ftopsis.VariantFor(kind, precision)
	if err != nil {
		return nil, err
	}
	return ftopsis.NewPipeline(v,
		ftopsis.WithLogger(e.logger),
		ftopsis.WithNegativeStrategy(e.strategy),
	), nil
}

// EvaluateDocument parses data and evaluates it. An empty mode uses the document's own.
func (e *Engine) EvaluateDocument(ctx context.Context, data []byte, mode input.Mode) (*Result, error) {
	p, err := input.Parse(data)
	if err != nil {
		label := string(mode)
		if label == "" {
			label = "auto"
		}
		e.metrics.ObserveRun(label, "unknown", 0, 0, err)
		return nil, err
	}
	return e.Evaluate(ctx, p, mode)
}

// Evaluate ranks or classifies p.
func (e *Engine) Evaluate(ctx context.Context, p *input.Problem, mode input.Mode) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if mode == "" {
		mode = p.Mode
	}

	start := time.Now()
	res := &Result{Mode: mode, Kind: p.Kind, Elements: p.Decision.Len()}
	var err error
	switch mode {
	case input.ModeRank:
		res.Ranking, err = e.rank(p)
	case input.ModeClassify:
		res.Classification, err = e.classify(p)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	res.Took = time.Since(start)

	e.metrics.ObserveRun(string(mode), p.Kind.String(), res.Elements, res.Took, err)
	if err != nil {
		e.logger.Warn("evaluation failed", "mode", mode, "kind", p.Kind.String(), "error", err)
		return nil, err
	}
	e.logger.Debug("evaluation complete",
		"mode", mode,
		"kind", p.Kind.String(),
		"elements", res.Elements,
		"took", res.Took,
	)
	return res, nil
}

func (e *Engine) rank(p *input.Problem) (*ftopsis.Ranking, error) {
	precision := ftopsis.NoRounding
	if e.cfg.RoundRanking {
		precision = e.precision(p.Kind)
	}
	pl, err := e.pipeline(p.Kind, precision)
	if err != nil {
		return nil, err
	}
	return pl.Rank(p.RankInput())
}

func (e *Engine) classify(p *input.Problem) (*ftopsis.Classification, error) {
	in, err := p.ClassifyInput()
	if err != nil {
		return nil, err
	}
	pl, err := e.pipeline(p.Kind, e.precision(p.Kind))
	if err != nil {
		return nil, err
	}
	return pl.Classify(in)
}
