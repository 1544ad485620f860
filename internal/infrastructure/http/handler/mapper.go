package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/recurring"
)

// RuleDTO is the wire form of a recurrence rule.
type RuleDTO struct {
	ID         string                 `json:"id"`
	TemplateID string                 `json:"templateId"`
	StartDate  domain.Date            `json:"startDate"`
	Recurrence domain.RecurringConfig `json:"recurrence"`
	CreatedAt  time.Time              `json:"createdAt"`
	UpdatedAt  time.Time              `json:"updatedAt"`
	Version    int                    `json:"version"`
	Etag       string                 `json:"etag"`
}

// MapRuleToDTO converts a domain rule to its wire form.
func MapRuleToDTO(rule *domain.RecurringRule) RuleDTO {
	return RuleDTO{
		ID:         rule.ID,
		TemplateID: rule.TemplateID,
		StartDate:  rule.StartDate,
		Recurrence: rule.Config,
		CreatedAt:  rule.CreatedAt,
		UpdatedAt:  rule.UpdatedAt,
		Version:    rule.Version,
		Etag:       rule.Etag(),
	}
}

// errBadRequest marks request-shape problems answered with 400 INVALID_REQUEST.
var errBadRequest = errors.New("bad request")

// decodeJSON decodes a JSON request body into dst, rejecting trailing data.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errBadRequest)
	}
	return nil
}

// decodeRecurrence turns the "recurrence" member of a request into a Raw
// config. Type mismatches come back as a *domain.ValidationError.
func decodeRecurrence(data json.RawMessage) (recurring.Raw, error) {
	if len(data) == 0 || string(data) == "null" {
		return recurring.Raw{}, &domain.ValidationError{Violations: []domain.FieldViolation{{
			Field:   "recurrence",
			Code:    domain.CodeRequired,
			Message: "recurrence is required",
		}}}
	}
	return recurring.DecodeRaw(data)
}

// optionalDate parses an optional ISO date, reporting field on failure.
func optionalDate(field, s string) (domain.Date, error) {
	if s == "" {
		return domain.Date{}, nil
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		return domain.Date{}, fieldError(field, domain.CodeInvalidDate, err)
	}
	return d, nil
}

// parseBool accepts the usual query-string booleans; empty means false.
func parseBool(field, s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return false, fieldError(field, domain.CodeInvalidType, fmt.Errorf("%q is not a boolean", s))
	}
	return b, nil
}

func fieldError(field, code string, err error) error {
	return &domain.ValidationError{Violations: []domain.FieldViolation{{
		Field:   field,
		Code:    code,
		Message: err.Error(),
	}}}
}

// setEtag writes the rule's version as a strong entity tag.
func setEtag(w http.ResponseWriter, rule *domain.RecurringRule) {
	w.Header().Set("ETag", strconv.Quote(rule.Etag()))
}
