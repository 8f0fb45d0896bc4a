package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/duetapp/notify/internal/handler"
	custommw "github.com/duetapp/notify/internal/middleware"
)

func NewRouter(eventHandler *handler.EventHandler, healthHandler *handler.HealthHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(custommw.MetricsMiddleware)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Post("/events", eventHandler.Ingest)

	r.Get("/healthz", healthHandler.Liveness)
	r.Get("/readyz", healthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
