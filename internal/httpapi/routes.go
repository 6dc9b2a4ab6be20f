package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mindduel/backend/internal/hub"
	"github.com/mindduel/backend/internal/ws"
	"github.com/mindduel/backend/pkg/metrics"
)

func SetupRoutes(h *hub.Hub, log *zap.Logger, met *metrics.Metrics, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", Healthz)
	r.Get("/pools", ListPools(h))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/ws", ws.Handler(h, log, met))
	return r
}
