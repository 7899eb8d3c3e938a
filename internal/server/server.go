// Package server assembles the daemon: run store, event bus, engine, broker and the API and
// metrics listeners.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/MikeSquared-Agency/Ftopsis/internal/api"
	"github.com/MikeSquared-Agency/Ftopsis/internal/broker"
	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/engine"
	"github.com/MikeSquared-Agency/Ftopsis/internal/hermes"
	"github.com/MikeSquared-Agency/Ftopsis/internal/metrics"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

const shutdownTimeout = 10 * time.Second

// NewLogger builds a slog logger from the logging section. Unknown levels fall back to info.
func NewLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Run serves until ctx is cancelled, then shuts both listeners down.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	logger.Info("run store ready", "driver", cfg.Database.Driver)

	// Hermes (optional)
	var hermesClient hermes.Client = hermes.NopClient{}
	if cfg.Hermes.URL != "" {
		hc, err := hermes.NewNATSClient(ctx, cfg.Hermes.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to hermes, running without events", "error", err)
		} else {
			hermesClient = hc
			defer hc.Close()
			logger.Info("connected to hermes")
		}
	}

	eng, err := engine.New(cfg.Engine, cfg.Report, m, logger)
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}

	b := broker.New(db, hermesClient, eng, m, cfg.Broker, logger)
	b.Start(ctx)
	defer b.Stop()
	b.SetupSubscriptions()
	logger.Info("broker started", "tick_interval", cfg.TickInterval())

	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(db, eng, b, cfg.Server, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(reg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API server starting", "port", cfg.Server.Port)
		return listen(apiServer)
	})
	g.Go(func() error {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		return listen(metricsServer)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen %s: %w", srv.Addr, err)
	}
	return nil
}
