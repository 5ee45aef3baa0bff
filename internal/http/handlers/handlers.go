package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/preston-bernstein/replicawatch/internal/app/replicas"
	domainreplicas "github.com/preston-bernstein/replicawatch/internal/domain/replicas"
	"github.com/preston-bernstein/replicawatch/internal/logging"
	"github.com/preston-bernstein/replicawatch/internal/poller"
)

// StateSource exposes the poller's current state.
type StateSource interface {
	State() poller.State
}

// Handler wires the read-only HTTP routes to the replica service and poller.
type Handler struct {
	svc    *replicas.Service
	state  StateSource
	logger *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(svc *replicas.Service, state StateSource, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		state:  state,
		logger: logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic (e.g., for Kubernetes probes).
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.state == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	st := h.state.State()
	if st.IsReady() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	msg := "not ready"
	if st.LastError != nil {
		msg = st.LastError.Error()
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// Replicas returns the poll state: status, the last good replica list, and the last error.
func (h *Handler) Replicas(w http.ResponseWriter, r *http.Request) {
	if h.state == nil {
		writeError(w, r, http.StatusServiceUnavailable, "poller not configured", h.logger)
		return
	}
	resp := h.state.State().Response()
	logging.Debug(loggerFromContext(r, h.logger), "served replicas",
		slog.String(logging.FieldState, resp.Status),
		slog.Int(logging.FieldCount, len(resp.Replicas)),
	)
	writeJSON(w, http.StatusOK, resp, h.logger)
}

// ReplicaByID returns one replica from the last successful snapshot.
func (h *Handler) ReplicaByID(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid replica id", h.logger)
		return
	}

	replica, ok := h.svc.ReplicaByID(id)
	if !ok {
		writeError(w, r, http.StatusNotFound, "replica not found", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, replica, h.logger)
}

// UnhealthyReplicas lists replicas from the last successful snapshot that report an error.
func (h *Handler) UnhealthyReplicas(w http.ResponseWriter, r *http.Request) {
	out := make([]domainreplicas.Replica, 0)
	for _, replica := range h.svc.Replicas() {
		if !replica.Healthy() {
			out = append(out, replica)
		}
	}
	logging.Debug(loggerFromContext(r, h.logger), "served unhealthy replicas",
		slog.Int(logging.FieldCount, len(out)),
	)
	writeJSON(w, http.StatusOK, out, h.logger)
}

// NotFound renders unknown routes as JSON.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, "not found", h.logger)
}

// MethodNotAllowed renders wrong-method requests as JSON.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}
