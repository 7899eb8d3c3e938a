package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Ftopsis/internal/broker"
	"github.com/MikeSquared-Agency/Ftopsis/internal/config"
	"github.com/MikeSquared-Agency/Ftopsis/internal/report"
	"github.com/MikeSquared-Agency/Ftopsis/internal/store"
)

// Evaluator evaluates documents synchronously. *engine.Engine satisfies it.
type Evaluator interface {
	broker.Evaluator
	Renderer() *report.Renderer
}

// Submitter queues documents for background evaluation. *broker.Broker satisfies it.
type Submitter interface {
	Submit(ctx context.Context, document []byte, mode, source string) (*store.Run, error)
}

func NewRouter(s store.Store, e Evaluator, sub Submitter, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))

	maxBody := int64(cfg.MaxBodyKiB) << 10
	eval := NewEvaluateHandler(e, maxBody)
	runs := NewRunsHandler(s, sub, maxBody)
	admin := NewAdminHandler(s)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rank", eval.Rank)
		r.Post("/classify", eval.Classify)
		r.Post("/evaluate", eval.Evaluate)
		r.Post("/detect", eval.Detect)

		r.Post("/runs", runs.Create)
		r.Get("/runs", runs.List)
		r.Get("/runs/{id}", runs.Get)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(cfg.AdminToken))
			r.Get("/stats", admin.Stats)
		})
	})

	return r
}

// NewMetricsRouter serves /health and the collectors gathered by g.
func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
