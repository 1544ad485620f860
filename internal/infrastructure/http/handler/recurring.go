package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/infrastructure/http/response"
)

// ValidateResponse is returned for a valid recurrence configuration.
type ValidateResponse struct {
	Valid  bool                   `json:"valid"`
	Config domain.RecurringConfig `json:"config"`
}

// CreateRuleRequest is the body of POST /v1/recurrence/rules.
type CreateRuleRequest struct {
	TemplateID string          `json:"templateId"`
	StartDate  string          `json:"startDate"`
	Recurrence json.RawMessage `json:"recurrence"`
}

// UpdateRuleRequest is the body of PUT /v1/recurrence/rules/{id}.
type UpdateRuleRequest struct {
	StartDate  *string         `json:"startDate"`
	Recurrence json.RawMessage `json:"recurrence"`
}

// PreviewRequest is the body of POST /v1/recurrence/preview.
type PreviewRequest struct {
	StartDate  string          `json:"startDate"`
	Recurrence json.RawMessage `json:"recurrence"`
	From       string          `json:"from"`
	Until      string          `json:"until"`
}

// OccurrencesResponse lists generated dates of a series.
type OccurrencesResponse struct {
	RuleID      string              `json:"ruleId,omitempty"`
	Occurrences []domain.Occurrence `json:"occurrences"`
}

// ListRulesResponse lists a template's rules.
type ListRulesResponse struct {
	Rules []RuleDTO `json:"rules"`
}

// ValidateRecurrence handles POST /v1/recurrence/validate.
// The body is the recurrence configuration itself.
func (h *PlannerHandler) ValidateRecurrence(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	raw, err := decodeRecurrence(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cfg, err := h.svc.ValidateRecurrence(r.Context(), raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, ValidateResponse{Valid: true, Config: cfg})
}

// PreviewOccurrences handles POST /v1/recurrence/preview.
func (h *PlannerHandler) PreviewOccurrences(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	start, err := optionalDate("startDate", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, err := optionalDate("from", req.From)
	if err != nil {
		writeError(w, r, err)
		return
	}
	until, err := optionalDate("until", req.Until)
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw, err := decodeRecurrence(req.Recurrence)
	if err != nil {
		writeError(w, r, err)
		return
	}

	occ, err := h.svc.PreviewOccurrences(r.Context(), start, raw, from, until)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, OccurrencesResponse{Occurrences: occ})
}

// CreateRule handles POST /v1/recurrence/rules.
func (h *PlannerHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	start, err := optionalDate("startDate", req.StartDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	raw, err := decodeRecurrence(req.Recurrence)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rule, err := h.svc.CreateRule(r.Context(), req.TemplateID, start, raw)
	if err != nil {
		slog.WarnContext(r.Context(), "failed to create recurrence rule via HTTP",
			"template_id", req.TemplateID,
			"error", err)
		writeError(w, r, err)
		return
	}

	setEtag(w, rule)
	w.Header().Set("Location", "/v1/recurrence/rules/"+rule.ID)
	response.Created(w, MapRuleToDTO(rule))
}

// GetRule handles GET /v1/recurrence/rules/{id}.
func (h *PlannerHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	rule, err := h.svc.GetRule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	setEtag(w, rule)
	response.OK(w, MapRuleToDTO(rule))
}

// UpdateRule handles PUT /v1/recurrence/rules/{id}.
// An If-Match header makes the update conditional on the stored version.
func (h *PlannerHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req UpdateRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	var startDate *domain.Date
	if req.StartDate != nil {
		d, err := domain.ParseDate(*req.StartDate)
		if err != nil {
			writeError(w, r, fieldError("startDate", domain.CodeInvalidDate, err))
			return
		}
		startDate = &d
	}
	raw, err := decodeRecurrence(req.Recurrence)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var etag *string
	if v := r.Header.Get("If-Match"); v != "" {
		etag = &v
	}

	rule, err := h.svc.UpdateRule(r.Context(), chi.URLParam(r, "id"), etag, startDate, raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	setEtag(w, rule)
	response.OK(w, MapRuleToDTO(rule))
}

// DeleteRule handles DELETE /v1/recurrence/rules/{id}.
func (h *PlannerHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRule(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// ListRules handles GET /v1/templates/{template_id}/recurrence/rules.
func (h *PlannerHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.ListRules(r.Context(), chi.URLParam(r, "template_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	dtos := make([]RuleDTO, 0, len(rules))
	for _, rule := range rules {
		dtos = append(dtos, MapRuleToDTO(rule))
	}
	response.OK(w, ListRulesResponse{Rules: dtos})
}

// ListOccurrences handles GET /v1/recurrence/rules/{id}/occurrences?from=&until=.
func (h *PlannerHandler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := optionalDate("from", q.Get("from"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	until, err := optionalDate("until", q.Get("until"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	occ, err := h.svc.Occurrences(r.Context(), id, from, until)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, OccurrencesResponse{RuleID: id, Occurrences: occ})
}
