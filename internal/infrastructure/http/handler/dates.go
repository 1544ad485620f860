package handler

import (
	"errors"
	"net/http"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/infrastructure/http/response"
)

// ParseDateResponse carries the parse result; Result is null when nothing
// matched.
type ParseDateResponse struct {
	Input  string             `json:"input"`
	Today  domain.Date        `json:"today"`
	Result *domain.ParsedDate `json:"result"`
}

// SuggestionsResponse carries the quick-pick menu.
type SuggestionsResponse struct {
	Today       domain.Date             `json:"today"`
	Suggestions []domain.DateSuggestion `json:"suggestions"`
}

// ParseDate handles GET /v1/dates/parse?q=.
func (h *PlannerHandler) ParseDate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	resp := ParseDateResponse{Input: q, Today: h.svc.Today()}
	if parsed, ok := h.svc.ParseDate(r.Context(), q); ok {
		resp.Result = &parsed
	}
	response.OK(w, resp)
}

// Suggestions handles GET /v1/dates/suggestions?ignore_weekends=.
func (h *PlannerHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	ignoreWeekends, err := parseBool("ignore_weekends", r.URL.Query().Get("ignore_weekends"))
	if err != nil {
		response.FromDomainError(w, r, err)
		return
	}

	response.OK(w, SuggestionsResponse{
		Today:       h.svc.Today(),
		Suggestions: h.svc.Suggestions(r.Context(), ignoreWeekends),
	})
}

// writeError answers request-shape errors with 400 and everything else
// through the domain mapper.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errBadRequest) {
		response.BadRequest(w, err.Error())
		return
	}
	response.FromDomainError(w, r, err)
}
