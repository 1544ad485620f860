// Package response writes JSON success and error bodies and maps domain
// errors to HTTP status codes.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/recurring"
)

// Error codes used in the envelope.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodePayloadTooLarge = "PAYLOAD_TOO_LARGE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternalError   = "INTERNAL_ERROR"
)

// encodeFailureJSON is written when the response itself cannot be marshaled.
const encodeFailureJSON = `{"error":{"code":"INTERNAL_ERROR","message":"failed to encode response","details":[]}}`

// ErrorResponse is the standard error response format.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Details []ErrorField `json:"details"` // Always an array, never null
}

// ErrorField describes a field-specific error.
type ErrorField struct {
	Field   string `json:"field"`
	Issue   string `json:"issue"`
	Message string `json:"message,omitempty"`
}

// BadRequest sends a 400 Bad Request error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, CodeInvalidRequest, message, http.StatusBadRequest)
}

// ValidationError sends a 400 validation error with a single field detail.
func ValidationError(w http.ResponseWriter, field, issue string) {
	ValidationErrors(w, []ErrorField{{Field: field, Issue: issue}})
}

// ValidationErrors sends a 400 validation error listing every field detail.
func ValidationErrors(w http.ResponseWriter, details []ErrorField) {
	write(w, http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    CodeValidationError,
			Message: "validation failed",
			Details: details,
		},
	})
}

// NotFound sends a 404 Not Found error.
func NotFound(w http.ResponseWriter, resource string) {
	Error(w, CodeNotFound, resource+" not found", http.StatusNotFound)
}

// Conflict sends a 409 Conflict error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, CodeConflict, message, http.StatusConflict)
}

// PayloadTooLarge sends a 413 naming the configured body limit.
func PayloadTooLarge(w http.ResponseWriter, limit int64) {
	Error(w, CodePayloadTooLarge, fmt.Sprintf("request body exceeds %d bytes", limit), http.StatusRequestEntityTooLarge)
}

// TooManyRequests sends a 429.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, CodeRateLimited, "too many requests", http.StatusTooManyRequests)
}

// InternalError sends a 500 Internal Server Error.
// The error is logged server-side; the client only sees a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		slog.ErrorContext(r.Context(), "internal server error", "error", err)
	}
	Error(w, CodeInternalError, "an internal error occurred", http.StatusInternalServerError)
}

// Error sends a generic error response.
func Error(w http.ResponseWriter, code, message string, statusCode int) {
	write(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: []ErrorField{},
		},
	})
}

// FromDomainError maps domain errors to HTTP responses.
func FromDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	// Validation errors (400)
	case errors.As(err, &verr):
		details := make([]ErrorField, 0, len(verr.Violations))
		for _, v := range verr.Violations {
			details = append(details, ErrorField{Field: v.Field, Issue: v.Code, Message: v.Message})
		}
		ValidationErrors(w, details)
	case errors.Is(err, domain.ErrInvalidRecurrence):
		ValidationError(w, "recurrence", err.Error())
	case errors.Is(err, recurring.ErrMalformedConfig):
		BadRequest(w, "recurrence must be a JSON object")
	case errors.Is(err, domain.ErrInvalidID):
		ValidationError(w, "id", "invalid ID format")
	case errors.Is(err, domain.ErrTemplateIDRequired):
		ValidationError(w, "templateId", "required field missing")
	case errors.Is(err, domain.ErrStartDateRequired):
		ValidationError(w, "startDate", "required field missing")
	case errors.Is(err, domain.ErrInvalidDateFormat), errors.Is(err, domain.ErrInvalidDate):
		ValidationError(w, "date", err.Error())
	case errors.Is(err, domain.ErrInvalidRange):
		ValidationError(w, "range", err.Error())
	case errors.Is(err, recurring.ErrIterationLimit):
		ValidationError(w, "range", "window is too far from the series start")

	// Not found errors (404)
	case errors.Is(err, domain.ErrRuleNotFound):
		NotFound(w, "recurrence rule")

	// Concurrency errors (409)
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, domain.ErrRuleExists):
		Conflict(w, err.Error())

	default:
		InternalError(w, r, err)
	}
}

// write marshals body before touching the response so an encoding failure
// still yields a 500 with a JSON error.
func write(w http.ResponseWriter, statusCode int, body any) {
	data, err := json.Marshal(body)
	w.Header().Set("Content-Type", "application/json")
	if err != nil {
		slog.Error("failed to marshal response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(encodeFailureJSON))
		return
	}
	w.WriteHeader(statusCode)
	if _, err := w.Write(data); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
