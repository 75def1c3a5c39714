package http

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"providerpulse/internal/config"
	apierrors "providerpulse/internal/errors"
	"providerpulse/internal/infrastructure"
	pulsemw "providerpulse/internal/middleware"
	ws "providerpulse/internal/websocket"
)

// WebSocketHandler upgrades /ws requests and attaches them to the hub
type WebSocketHandler struct {
	hub      *ws.Hub
	cfg      config.WebSocketConfig
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewWebSocketHandler creates a websocket handler. Origins are checked
// against the CORS allow list; an empty list allows any origin. Rejected
// handshakes are answered as problem details.
func NewWebSocketHandler(hub *ws.Hub, cfg config.WebSocketConfig, allowedOrigins []string, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WebSocketHandler {
	cors := pulsemw.CORSConfig{AllowedOrigins: allowedOrigins}
	return &WebSocketHandler{
		hub: hub,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || cors.Allows(origin)
			},
			Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
				errorHandler.HandleError(w, r, apierrors.WebSocketUpgradeError(status, reason))
			},
		},
		logger: logger.With(slog.String("component", "websocket_handler")),
	}
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader's Error hook has already responded
		h.logger.WarnContext(r.Context(), "websocket upgrade failed",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("error", err.Error()))
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	client := ws.NewClient(h.hub, ws.WrapConn(conn), h.cfg, traceID, h.logger)
	h.logger.InfoContext(r.Context(), "websocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", conn.RemoteAddr().String()))
	client.Serve()
}
