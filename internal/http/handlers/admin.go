package handlers

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/preston-bernstein/replicawatch/internal/http/requestutil"
	"github.com/preston-bernstein/replicawatch/internal/logging"
	"github.com/preston-bernstein/replicawatch/internal/poller"
)

// Refresher triggers an immediate poll.
type Refresher interface {
	RequestRefresh() bool
	State() poller.State
}

// AdminHandler exposes operator endpoints.
type AdminHandler struct {
	refresher Refresher
	token     string
	logger    *slog.Logger
}

// NewAdminHandler constructs an AdminHandler. An empty token leaves the endpoints open.
func NewAdminHandler(refresher Refresher, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		refresher: refresher,
		token:     token,
		logger:    logger,
	}
}

// RefreshReplicas asks the poller to fetch now. 202 when a fetch was started,
// 200 with triggered=false when one was already running.
func (h *AdminHandler) RefreshReplicas(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if !h.authorize(r) {
		logging.Warn(logger, "admin unauthorized",
			slog.String(logging.FieldPath, r.URL.Path),
			slog.String(logging.FieldClientIP, requestutil.ClientIP(r)),
		)
		writeError(w, r, http.StatusUnauthorized, "unauthorized", logger)
		return
	}
	if h.refresher == nil {
		writeError(w, r, http.StatusServiceUnavailable, "poller not configured", logger)
		return
	}

	triggered := h.refresher.RequestRefresh()
	status := http.StatusOK
	if triggered {
		status = http.StatusAccepted
	}
	writeJSON(w, status, map[string]any{
		"triggered": triggered,
		"status":    string(h.refresher.State().Status),
	}, logger)
	logging.Info(logger, "admin refresh requested", slog.Bool("triggered", triggered))
}

func (h *AdminHandler) authorize(r *http.Request) bool {
	if h.token == "" {
		return true
	}
	token, ok := requestutil.BearerToken(r)
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) == 1
}
