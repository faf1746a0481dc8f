package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leasehub/exposure-rotation/internal/api/handler"
	apimw "github.com/leasehub/exposure-rotation/internal/api/middleware"
	"github.com/leasehub/exposure-rotation/internal/queue"
	"github.com/leasehub/exposure-rotation/internal/service"
)

// Services bundles the application services the HTTP layer calls into.
type Services struct {
	Homepage   *service.HomepageService
	Feed       *service.FeedService
	Activation *service.ActivationService
	Compaction *service.CompactionService

	// Health lists the dependency probes reported by /health.
	Health []handler.Check
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc Services,
	tasks *queue.TaskQueue,
	reg prometheus.Gatherer,
	adminSecret string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)        // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	hp := handler.NewHomepageHandler(svc.Homepage)
	fh := handler.NewFeedHandler(svc.Feed, logger)
	ah := handler.NewActivationHandler(svc.Activation, logger)
	ch := handler.NewCompactionHandler(svc.Compaction)
	mh := handler.NewMetricsHandler(tasks)
	hh := handler.NewHealthHandler(svc.Health...)

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/homepage", hp.Get)
		r.With(apimw.Session).Get("/feed", fh.Get)

		// JSON metrics snapshot
		r.Get("/metrics", mh.GetMetrics)

		// Called by the payment workflow and the daily scheduler only.
		r.Route("/internal", func(r chi.Router) {
			r.Use(apimw.BearerAuth(adminSecret))
			r.Post("/placements/{id}/activate", ah.Activate)
			r.Post("/compaction", ch.Compact)
		})
	})

	return r
}
