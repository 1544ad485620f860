package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/infrastructure/http/response"
	"github.com/rezkam/central/internal/recurring"
)

// unencodable fails during JSON encoding.
type unencodable struct{}

func (unencodable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("cannot encode")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) response.ErrorResponse {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var resp response.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestOK_EncodingFailure_Returns500WithErrorJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, unencodable{})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "failed to encode response", resp.Error.Message)
}

func TestCreated_EncodingFailure_Returns500WithErrorJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Created(rec, unencodable{})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", decodeError(t, rec).Error.Code)
}

func TestOK_Success_ReturnsValidJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	response.OK(rec, map[string]any{"id": "123", "items": []string{"a", "b"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"123","items":["a","b"]}`, rec.Body.String())
}

func TestNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	response.NoContent(rec)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestError_DetailsAlwaysArray(t *testing.T) {
	rec := httptest.NewRecorder()
	response.Error(rec, "INVALID_INPUT", "missing required field", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"INVALID_INPUT","message":"missing required field","details":[]}}`,
		rec.Body.String())
}

func TestFromDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantField  string
	}{
		{"invalid id", fmt.Errorf("wrap: %w", domain.ErrInvalidID), http.StatusBadRequest, "VALIDATION_ERROR", "id"},
		{"template required", domain.ErrTemplateIDRequired, http.StatusBadRequest, "VALIDATION_ERROR", "templateId"},
		{"start date required", domain.ErrStartDateRequired, http.StatusBadRequest, "VALIDATION_ERROR", "startDate"},
		{"bad date format", domain.ErrInvalidDateFormat, http.StatusBadRequest, "VALIDATION_ERROR", "date"},
		{"invalid range", domain.ErrInvalidRange, http.StatusBadRequest, "VALIDATION_ERROR", "range"},
		{"iteration limit", recurring.ErrIterationLimit, http.StatusBadRequest, "VALIDATION_ERROR", "range"},
		{"unknown frequency", domain.ErrInvalidRecurrence, http.StatusBadRequest, "VALIDATION_ERROR", "recurrence"},
		{"malformed config", recurring.ErrMalformedConfig, http.StatusBadRequest, "INVALID_REQUEST", ""},
		{"not found", fmt.Errorf("failed to get rule: %w", domain.ErrRuleNotFound), http.StatusNotFound, "NOT_FOUND", ""},
		{"version conflict", domain.ErrVersionConflict, http.StatusConflict, "CONFLICT", ""},
		{"rule exists", domain.ErrRuleExists, http.StatusConflict, "CONFLICT", ""},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_ERROR", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			response.FromDomainError(rec, req, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			if tt.wantField != "" {
				require.Len(t, resp.Error.Details, 1)
				assert.Equal(t, tt.wantField, resp.Error.Details[0].Field)
			}
		})
	}
}

func TestFromDomainError_InternalErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	response.FromDomainError(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("password=hunter2"))

	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestFromDomainError_ListsEveryViolation(t *testing.T) {
	verr := &domain.ValidationError{Violations: []domain.FieldViolation{
		{Field: "interval", Code: domain.CodeOutOfRange, Message: "must be between 1 and 99"},
		{Field: "daysOfWeek", Code: domain.CodeDaysOfWeekRequired, Message: "weekly recurrence needs at least one day"},
	}}

	rec := httptest.NewRecorder()
	response.FromDomainError(rec, httptest.NewRequest(http.MethodPost, "/", nil), fmt.Errorf("validate: %w", verr))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, []response.ErrorField{
		{Field: "interval", Issue: domain.CodeOutOfRange, Message: "must be between 1 and 99"},
		{Field: "daysOfWeek", Issue: domain.CodeDaysOfWeekRequired, Message: "weekly recurrence needs at least one day"},
	}, resp.Error.Details)
}
