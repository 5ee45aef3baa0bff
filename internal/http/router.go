package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/replicawatch/internal/http/handlers"
	"github.com/preston-bernstein/replicawatch/internal/http/middleware"
	"github.com/preston-bernstein/replicawatch/internal/metrics"
)

// Routes groups the handlers mounted by NewRouter. Admin and Watch are optional.
type Routes struct {
	Handler *handlers.Handler
	Admin   *handlers.AdminHandler
	Watch   *handlers.WatchHandler
}

// NewRouter registers HTTP routes on a chi router wrapped with request logging and metrics.
func NewRouter(routes Routes, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	h := routes.Handler
	r := chi.NewRouter()
	r.Use(func(next nethttp.Handler) nethttp.Handler {
		return middleware.LoggingMiddleware(logger, recorder, next)
	})
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Route("/api/v2/replicas", func(r chi.Router) {
		r.Get("/", h.Replicas)
		if routes.Admin != nil {
			r.Post("/refresh", routes.Admin.RefreshReplicas)
		}
		if routes.Watch != nil {
			r.Get("/watch", routes.Watch.Watch)
		}
		r.Get("/unhealthy", h.UnhealthyReplicas)
		r.Get("/{id}", h.ReplicaByID)
	})
	return r
}
