package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same value", ErrNoDataFound, ErrNoDataFound, true},
		{"detailed copy", NoDataFoundError("export.xlsx"), ErrNoDataFound, true},
		{"wrapped copy", fmt.Errorf("ingest: %w", DatasetNotFoundError("abc")), ErrDatasetNotFound, true},
		{"different code", ErrInvalidWorkbook, ErrNoDataFound, false},
		{"plain error", errors.New("no data"), ErrNoDataFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name       string
		err        *APIError
		wantStatus int
		wantCode   string
	}{
		{"validation", ErrValidation("labels", "labels is required"), http.StatusBadRequest, CodeValidationFailed},
		{"dataset not found", DatasetNotFoundError("abc"), http.StatusNotFound, CodeDatasetNotFound},
		{"no data", NoDataFoundError("a.xlsx"), http.StatusUnprocessableEntity, CodeNoDataFound},
		{"invalid workbook", InvalidWorkbookError("a.xlsx", errors.New("zip: not a valid zip file")), http.StatusBadRequest, CodeInvalidWorkbook},
		{"payload too large", PayloadTooLargeError(1024), http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{"week range", InvalidWeekRangeError(`unknown week "Week 99"`), http.StatusBadRequest, CodeInvalidWeekRange},
		{"websocket upgrade", WebSocketUpgradeError(http.StatusForbidden, errors.New("origin not allowed")), http.StatusForbidden, CodeWebSocket},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, tt.err.StatusCode)
			assert.Equal(t, tt.wantCode, tt.err.ErrorCode)
			assert.NotEmpty(t, tt.err.Error())
			assert.NotNil(t, tt.err.Details)
		})
	}
}

func TestNoDataFoundMessage(t *testing.T) {
	assert.Equal(t, "No data found. Please check the file format.", NoDataFoundError("x.xlsx").Message)
}

func TestAppError(t *testing.T) {
	cause := errors.New("zip: not a valid zip file")
	err := NewParsingError("open workbook", cause).WithContext("file", "a.xlsx")

	assert.Equal(t, "[PARSING] open workbook: zip: not a valid zip file", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "a.xlsx", err.Context["file"])

	assert.Equal(t, "[CONFIG] bad port", NewConfigError("bad port", nil).Error())
	assert.Equal(t, ErrTypeConfig, NewConfigError("x", nil).Type)
}

func TestProblemDetails_MarshalJSON(t *testing.T) {
	p := NewProblemDetails(http.StatusNotFound, TypeDatasetNotFound, "Not Found", "dataset abc not found", "/api/datasets/abc").
		WithExtension("trace_id", "req-1").
		WithExtension("status", 200)

	data, err := json.Marshal(p)
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, TypeDatasetNotFound, got["type"])
	assert.Equal(t, "req-1", got["trace_id"])
	assert.Equal(t, float64(http.StatusNotFound), got["status"], "extensions must not override standard members")
	assert.Equal(t, "/api/datasets/abc", got["instance"])
}

func TestProblemDetails_OmitsEmptyMembers(t *testing.T) {
	data, err := json.Marshal(&ProblemDetails{Type: TypeInternal, Title: "x", Status: 500})
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &got))
	assert.NotContains(t, got, "detail")
	assert.NotContains(t, got, "instance")
}
