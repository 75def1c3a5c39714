package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	ws "providerpulse/internal/websocket"
)

// MetricsHandler serves the Prometheus scrape endpoint and hub statistics
type MetricsHandler struct {
	prometheus http.Handler
	hub        *ws.Hub
}

// NewMetricsHandler creates a new metrics handler. prometheus may be nil
// when the metrics exporter is disabled.
func NewMetricsHandler(prometheus http.Handler, hub *ws.Hub) *MetricsHandler {
	return &MetricsHandler{prometheus: prometheus, hub: hub}
}

// Routes sets up the metrics routes
func (h *MetricsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Scrape)
	r.Get("/websocket", h.WebSocketStats)
	return r
}

// Scrape handles GET /metrics
func (h *MetricsHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	if h.prometheus == nil {
		http.NotFound(w, r)
		return
	}
	h.prometheus.ServeHTTP(w, r)
}

// WebSocketStats handles GET /metrics/websocket
func (h *MetricsHandler) WebSocketStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.hub.Stats(),
	})
}
