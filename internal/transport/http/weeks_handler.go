package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "providerpulse/internal/errors"
	pulsemw "providerpulse/internal/middleware"
	"providerpulse/internal/weeks"
)

// OrderRequest is the body of POST /api/weeks/order
type OrderRequest struct {
	Labels []string `json:"labels" validate:"required,min=1,max=1000,dive,weeklabel"`
}

// OrderResponse lists labels canonicalized and in chronological order
type OrderResponse struct {
	Labels []string `json:"labels"`
	Dated  int      `json:"dated"`
}

// WeeksHandler exposes the week label normalizer
type WeeksHandler struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewWeeksHandler creates a new weeks handler
func NewWeeksHandler(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *WeeksHandler {
	return &WeeksHandler{
		validate:     pulsemw.NewValidator(),
		logger:       logger.With(slog.String("component", "weeks_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the weeks routes
func (h *WeeksHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Post("/order", h.Order)
	return r
}

// Order handles POST /api/weeks/order
func (h *WeeksHandler) Order(w http.ResponseWriter, r *http.Request) {
	var req OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := pulsemw.ValidateStruct(h.validate, req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	labels := make([]string, len(req.Labels))
	for i, label := range req.Labels {
		labels[i] = weeks.Canonicalize(label)
	}
	ordered := weeks.CanonicalOrder(labels)
	dated := 0
	for _, label := range ordered {
		if _, _, ok := weeks.MonthDay(label); ok {
			dated++
		}
	}

	h.logger.DebugContext(r.Context(), "labels ordered",
		slog.Int("input", len(req.Labels)),
		slog.Int("distinct", len(ordered)),
		slog.Int("dated", dated))

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   OrderResponse{Labels: ordered, Dated: dated},
		"count":  len(ordered),
	})
}
