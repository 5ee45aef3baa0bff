package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/preston-bernstein/replicawatch/internal/logging"
	"github.com/preston-bernstein/replicawatch/internal/poller"
)

const (
	defaultWriteTimeout = 5 * time.Second
	pingInterval        = 30 * time.Second
)

// Subscriber streams poll state transitions.
type Subscriber interface {
	Subscribe() (<-chan poller.State, func())
}

// WatchHandler streams poll states to WebSocket clients.
type WatchHandler struct {
	subscriber   Subscriber
	logger       *slog.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
}

// NewWatchHandler constructs a WatchHandler.
func NewWatchHandler(subscriber Subscriber, logger *slog.Logger) *WatchHandler {
	return &WatchHandler{
		subscriber: subscriber,
		logger:     logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		writeTimeout: defaultWriteTimeout,
		pingInterval: pingInterval,
	}
}

// Watch sends the current state, then one message per transition, until the
// client goes away or the poller stops.
func (h *WatchHandler) Watch(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	if h.subscriber == nil {
		writeError(w, r, http.StatusServiceUnavailable, "poller not configured", logger)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(logger, "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	updates, unsubscribe := h.subscriber.Subscribe()
	defer unsubscribe()

	// Reads only exist to notice the client closing.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(h.pingInterval)
	defer ping.Stop()

	logging.Debug(logger, "watch client connected")
	sent := 0
	for {
		select {
		case <-gone:
			logging.Debug(logger, "watch client disconnected", slog.Int(logging.FieldCount, sent))
			return
		case <-r.Context().Done():
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				return
			}
		case st, ok := <-updates:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "poller stopped")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeTimeout))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
			if err := conn.WriteJSON(st.Response()); err != nil {
				logging.Debug(logger, "watch write failed", slog.Any("error", err))
				return
			}
			sent++
		}
	}
}
