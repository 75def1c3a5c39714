package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apierrors "providerpulse/internal/errors"
	pulsemw "providerpulse/internal/middleware"
	"providerpulse/pkg/contracts/domain"
)

// multipartOverhead is allowed on top of the workbook size for form
// boundaries and headers
const multipartOverhead = 1 << 20

// DatasetHandler handles dataset upload and query requests
type DatasetHandler struct {
	service      DatasetServiceInterface
	maxUpload    int64
	validate     *validator.Validate
	query        *pulsemw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// uploadRequest is the validated part of a multipart upload
type uploadRequest struct {
	Filename string `json:"file" validate:"required,workbook"`
}

// rangeQuery holds the week range query parameters
type rangeQuery struct {
	From string `json:"from" validate:"required_with=To,omitempty,weeklabel"`
	To   string `json:"to" validate:"required_with=From,omitempty,weeklabel"`
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, maxUpload int64, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DatasetHandler {
	return &DatasetHandler{
		service:      service,
		maxUpload:    maxUpload,
		validate:     pulsemw.NewValidator(),
		query:        pulsemw.NewQueryParamValidator(errorHandler),
		logger:       logger.With(slog.String("component", "dataset_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Post("/", h.Upload)

	r.Route("/{id}", func(r chi.Router) {
		r.Use(h.DatasetCtx)
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/records", h.Records)
		r.Get("/providers", h.Providers)
		r.Get("/weeks", h.Weeks)
		r.Get("/summary", h.Summary)
		r.Get("/warnings", h.Warnings)
	})

	return r
}

// DatasetCtx rejects ids that are not UUIDs before they reach the service
func (h *DatasetHandler) DatasetCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := uuid.Parse(chi.URLParam(r, "id")); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("id", "Dataset id must be a UUID"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Upload handles POST /api/datasets with a multipart "file" field
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetReqID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, apierrors.PayloadTooLargeError(h.maxUpload))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A workbook must be uploaded in the file field"))
		return
	}
	defer file.Close()

	if err := pulsemw.ValidateStruct(h.validate, uploadRequest{Filename: header.Filename}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "workbook upload",
		slog.String("request_id", reqID),
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size))

	ds, err := h.service.Ingest(r.Context(), header.Filename, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, header.Filename, h.maxUpload))
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ds.Info(),
	})
}

// List handles GET /api/datasets
func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	infos := h.service.List(r.Context())
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   infos,
		"count":  len(infos),
	})
}

// Get handles GET /api/datasets/{id}
func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ds, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   ds,
	})
}

// Delete handles DELETE /api/datasets/{id}
func (h *DatasetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Records handles GET /api/datasets/{id}/records
func (h *DatasetHandler) Records(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	criteria, ok := h.parseCriteria(w, r)
	if !ok {
		return
	}

	records, err := h.service.Records(r.Context(), id, criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   records,
		"count":  len(records),
	})
}

// Providers handles GET /api/datasets/{id}/providers
func (h *DatasetHandler) Providers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	providers, err := h.service.Providers(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   providers,
		"count":  len(providers),
	})
}

// Weeks handles GET /api/datasets/{id}/weeks
func (h *DatasetHandler) Weeks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	labels, err := h.service.Weeks(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   labels,
		"count":  len(labels),
	})
}

// Summary handles GET /api/datasets/{id}/summary
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	criteria, ok := h.parseCriteria(w, r)
	if !ok {
		return
	}

	stats, err := h.service.Summary(r.Context(), id, criteria)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   stats,
	})
}

// Warnings handles GET /api/datasets/{id}/warnings
func (h *DatasetHandler) Warnings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	warnings, err := h.service.Warnings(r.Context(), id)
	if err != nil {
		h.errorHandler.HandleError(w, r, toAPIError(err, id, h.maxUpload))
		return
	}
	if warnings == nil {
		warnings = []domain.ValidationWarning{}
	}
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   warnings,
		"count":  len(warnings),
	})
}

// parseCriteria reads provider, from, to, min_percent and min_visits.
// It writes the error response itself and reports false on bad input.
func (h *DatasetHandler) parseCriteria(w http.ResponseWriter, r *http.Request) (domain.FilterCriteria, bool) {
	q := r.URL.Query()
	criteria := domain.FilterCriteria{Providers: q["provider"]}

	wr := rangeQuery{From: q.Get("from"), To: q.Get("to")}
	if err := pulsemw.ValidateStruct(h.validate, wr); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return criteria, false
	}
	if wr.From != "" {
		criteria.WeekRange = &domain.WeekRange{From: wr.From, To: wr.To}
	}

	var ok bool
	if criteria.MinPercent, ok = h.query.ValidateFloat(w, r, "min_percent", 0, 100); !ok {
		return criteria, false
	}
	if criteria.MinTotalVisits, ok = h.query.ValidateFloat(w, r, "min_visits", 0, math.MaxInt32); !ok {
		return criteria, false
	}
	return criteria, true
}
