package broker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/engine"
	"github.com/MikeSquared-Agency/Ftopsis/internal/hermes"
	"github.com/MikeSquared-Agency/Ftopsis/internal/input"
	"github.com/MikeSquared-Agency/Ftopsis/internal/metrics"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

// Evaluator turns a stored document into a result. *engine.Engine satisfies it.
type Evaluator interface {
	EvaluateDocument(ctx context.Context, data []byte, mode input.Mode) (*engine.Result, error)
	Document(res *engine.Result) any
}

// Broker drains queued runs in the background.
type Broker struct {
	store   store.Store
	hermes  hermes.Client
	eval    Evaluator
	metrics *metrics.Metrics
	cfg     config.BrokerConfig
	logger  *slog.Logger

	statsInterval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func New(s store.Store, h hermes.Client, eval Evaluator, m *metrics.Metrics, cfg config.BrokerConfig, logger *slog.Logger) *Broker {
	if h == nil {
		h = hermes.NopClient{}
	}
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &Broker{
		store:         s,
		hermes:        h,
		eval:          eval,
		metrics:       m,
		cfg:           cfg,
		logger:        logger,
		statsInterval: 30 * time.Second,
		stopCh:        make(chan struct{}),
	}
}

func (b *Broker) tickInterval() time.Duration {
	if b.cfg.TickIntervalMs <= 0 {
		return 2 * time.Second
	}
	return time.Duration(b.cfg.TickIntervalMs) * time.Millisecond
}

func (b *Broker) Start(ctx context.Context) {
	b.wg.Add(2)
	go b.runLoop(ctx)
	go b.statsLoop(ctx)
}

func (b *Broker) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.wg.Wait()
}

func (b *Broker) runLoop(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.tickInterval())
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.ProcessPending(ctx)
		}
	}
}

func (b *Broker) statsLoop(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.publishStats(ctx)
		}
	}
}

// Submit validates the mode, stores a pending run and announces it.
func (b *Broker) Submit(ctx context.Context, document []byte, mode, source string) (*store.Run, error) {
	m, err := input.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	if !json.Valid(document) {
		return nil, errors.New("document is not valid JSON")
	}
	if source == "" {
		source = "api"
	}

	run := &store.Run{
		Mode:   string(m),
		Status: store.StatusPending,
		Source: source,
		Input:  document,
	}
	if err := b.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	_ = b.hermes.Publish(hermes.SubjectRunCreated(run.ID.String()), hermes.RunCreatedEvent{
		RunID:  run.ID.String(),
		Mode:   run.Mode,
		Source: run.Source,
	})
	b.logger.Info("run queued", "run_id", run.ID, "mode", run.Mode, "source", run.Source)
	return run, nil
}

// ProcessPending claims up to one batch of pending runs and evaluates them, at most
// MaxConcurrent at a time. It returns the number of runs it processed.
func (b *Broker) ProcessPending(ctx context.Context) int {
	runs, err := b.store.GetPendingRuns(ctx, b.cfg.BatchSize)
	if err != nil {
		b.logger.Error("failed to get pending runs", "error", err)
		return 0
	}
	b.metrics.SetPending(len(runs))
	if len(runs) == 0 {
		return 0
	}

	b.logger.Info("processing pending runs", "count", len(runs))
	var g errgroup.Group
	g.SetLimit(b.cfg.MaxConcurrent)

	processed := 0
	for _, run := range runs {
		if ctx.Err() != nil {
			break
		}
		ok, err := b.store.ClaimRun(ctx, run.ID)
		if err != nil {
			b.logger.Warn("failed to claim run", "run_id", run.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		processed++
		run := run
		g.Go(func() error {
			b.execute(ctx, run)
			return nil
		})
	}
	_ = g.Wait()
	return processed
}

// persistTimeout bounds the write of a run outcome once the caller's context is gone.
const persistTimeout = 10 * time.Second

func (b *Broker) execute(ctx context.Context, run *store.Run) {
	runID := run.ID.String()
	_ = b.hermes.Publish(hermes.SubjectRunStarted(runID), hermes.RunStartedEvent{RunID: runID})

	started := time.Now().UTC()
	if run.StartedAt == nil {
		run.StartedAt = &started
	}
	res, err := b.eval.EvaluateDocument(ctx, run.Input, input.Mode(run.Mode))
	if err == nil {
		run.Result, err = json.Marshal(b.eval.Document(res))
	}

	// The outcome is written even when ctx was cancelled during evaluation.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	if interrupted(ctx, err) {
		run.Status = store.StatusPending
		run.StartedAt = nil
		run.CompletedAt = nil
		run.Result = nil
		run.Error = ""
		if uerr := b.store.UpdateRun(persistCtx, run); uerr != nil {
			b.logger.Error("failed to requeue run", "run_id", run.ID, "error", uerr)
			return
		}
		b.logger.Info("run requeued", "run_id", run.ID, "reason", err)
		return
	}

	done := time.Now().UTC()
	run.CompletedAt = &done

	if err != nil {
		run.Status = store.StatusFailed
		run.Error = err.Error()
		if uerr := b.store.UpdateRun(persistCtx, run); uerr != nil {
			b.logger.Error("failed to store failed run", "run_id", run.ID, "error", uerr)
		}
		_ = b.hermes.Publish(hermes.SubjectRunFailed(runID), hermes.RunFailedEvent{RunID: runID, Error: run.Error})
		b.logger.Warn("run failed", "run_id", run.ID, "error", err)
		return
	}

	run.Status = store.StatusCompleted
	run.Mode = string(res.Mode)
	run.Kind = res.Kind.String()
	run.Error = ""
	if err := b.store.UpdateRun(persistCtx, run); err != nil {
		b.logger.Error("failed to store completed run", "run_id", run.ID, "error", err)
		return
	}
	_ = b.hermes.Publish(hermes.SubjectRunCompleted(runID), hermes.RunCompletedEvent{
		RunID:      runID,
		Mode:       run.Mode,
		Kind:       run.Kind,
		Elements:   res.Elements,
		DurationMs: float64(res.Took) / float64(time.Millisecond),
		Result:     run.Result,
	})
	b.logger.Info("run completed", "run_id", run.ID, "mode", run.Mode, "kind", run.Kind, "elements", res.Elements)
}

// interrupted reports whether err comes from ctx ending rather than from the document.
// Such runs go back to pending so the next broker picks them up.
func interrupted(ctx context.Context, err error) bool {
	if err == nil || ctx.Err() == nil {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (b *Broker) publishStats(ctx context.Context) {
	stats, err := b.store.GetStats(ctx)
	if err != nil {
		b.logger.Warn("failed to get run stats", "error", err)
		return
	}
	_ = b.hermes.Publish(hermes.SubjectStats, hermes.StatsEvent{
		Pending:   stats.TotalPending,
		Running:   stats.TotalRunning,
		Completed: stats.TotalCompleted,
		Failed:    stats.TotalFailed,
		AvgMs:     stats.AvgCompletionMs,
		Timestamp: time.Now().UTC(),
	})
}

// SetupSubscriptions queues runs requested over NATS.
func (b *Broker) SetupSubscriptions() {
	err := b.hermes.Subscribe(hermes.SubjectRunRequest, func(_ string, data []byte) {
		var req hermes.RunRequestEvent
		if err := json.Unmarshal(data, &req); err != nil {
			b.logger.Warn("invalid run request event", "error", err)
			return
		}
		source := req.Source
		if source == "" {
			source = "hermes"
		}
		if _, err := b.Submit(context.Background(), req.Document, req.Mode, source); err != nil {
			b.logger.Error("failed to queue run from NATS request", "error", err)
		}
	})
	if err != nil {
		b.logger.Warn("failed to subscribe to run requests", "error", err)
	}
}
