package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Is matches on error code so a detailed copy still satisfies errors.Is
// against the predefined value.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.ErrorCode == t.ErrorCode
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeDatasetNotFound  = "DATASET_NOT_FOUND"
	CodeNoDataFound      = "NO_DATA_FOUND"
	CodeInvalidWorkbook  = "INVALID_WORKBOOK"
	CodeInvalidWeekRange = "INVALID_WEEK_RANGE"
	CodePayloadTooLarge  = "PAYLOAD_TOO_LARGE"
	CodeRateLimit        = "RATE_LIMIT_EXCEEDED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeWebSocket        = "WEBSOCKET_UPGRADE_FAILED"
)

// Predefined errors
var (
	// 400 Bad Request
	ErrInvalidRequest   = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrInvalidWorkbook  = New(http.StatusBadRequest, CodeInvalidWorkbook, "The uploaded file is not a readable .xlsx workbook")
	ErrInvalidWeekRange = New(http.StatusBadRequest, CodeInvalidWeekRange, "Week range bounds must be known week labels")

	// 404 Not Found
	ErrNotFound        = New(http.StatusNotFound, CodeNotFound, "The requested resource was not found")
	ErrDatasetNotFound = New(http.StatusNotFound, CodeDatasetNotFound, "Dataset not found")

	// 413 Payload Too Large
	ErrPayloadTooLarge = New(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, "The uploaded file exceeds the maximum allowed size")

	// 422 Unprocessable Entity
	ErrNoDataFound = New(http.StatusUnprocessableEntity, CodeNoDataFound, "No data found. Please check the file format.")

	// 429 Too Many Requests
	ErrRateLimitExceeded = New(http.StatusTooManyRequests, CodeRateLimit, "Rate limit exceeded")

	// 500 Internal Server Error
	ErrInternalServer = New(http.StatusInternalServerError, CodeInternal, "An unexpected error occurred while processing your request")
)

// InvalidRequestWithError creates an invalid request error carrying the cause
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, ErrInvalidRequest.Message, err.Error())
}

// ErrValidation creates a validation error for a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, ErrValidationFailed.Message, ValidationError{
		Field:   field,
		Message: message,
	})
}

// DatasetNotFoundError names the dataset id that could not be found
func DatasetNotFoundError(id string) *APIError {
	return NewWithDetails(ErrDatasetNotFound.StatusCode, ErrDatasetNotFound.ErrorCode, fmt.Sprintf("dataset %s not found", id), map[string]string{"dataset_id": id})
}

// NoDataFoundError reports a workbook that yielded no records
func NoDataFoundError(filename string) *APIError {
	return NewWithDetails(http.StatusUnprocessableEntity, CodeNoDataFound, ErrNoDataFound.Message, map[string]string{"filename": filename})
}

// InvalidWorkbookError reports a file that could not be opened as xlsx
func InvalidWorkbookError(filename string, err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidWorkbook, ErrInvalidWorkbook.Message, map[string]string{
		"filename": filename,
		"cause":    err.Error(),
	})
}

// PayloadTooLargeError names the limit that was exceeded
func PayloadTooLargeError(limit int64) *APIError {
	return NewWithDetails(http.StatusRequestEntityTooLarge, CodePayloadTooLarge, ErrPayloadTooLarge.Message, map[string]int64{"max_bytes": limit})
}

// InvalidWeekRangeError reports a week range that cannot be ordered
func InvalidWeekRangeError(detail string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidWeekRange, ErrInvalidWeekRange.Message, detail)
}

// WebSocketUpgradeError reports a rejected websocket handshake with the
// status the upgrader chose
func WebSocketUpgradeError(status int, reason error) *APIError {
	return NewWithDetails(status, CodeWebSocket, "WebSocket upgrade failed", reason.Error())
}

// ValidationErrors groups several field errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates validation errors from multiple fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		ErrValidationFailed.Message,
		ValidationErrors{Errors: errs},
	)
}
