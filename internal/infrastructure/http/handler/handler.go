package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rezkam/central/internal/application/planner"
)

// PlannerHandler adapts HTTP requests to planner service calls.
type PlannerHandler struct {
	svc *planner.Service
}

// NewPlannerHandler creates a new HTTP API handler.
func NewPlannerHandler(svc *planner.Service) *PlannerHandler {
	return &PlannerHandler{svc: svc}
}

// NewRouter returns the /v1 API routes. Both production code and tests
// mount this router so they see identical behavior.
func NewRouter(svc *planner.Service) http.Handler {
	h := NewPlannerHandler(svc)
	r := chi.NewRouter()

	r.Route("/dates", func(r chi.Router) {
		r.Get("/parse", h.ParseDate)
		r.Get("/suggestions", h.Suggestions)
	})

	r.Route("/recurrence", func(r chi.Router) {
		r.Post("/validate", h.ValidateRecurrence)
		r.Post("/preview", h.PreviewOccurrences)
		r.Post("/rules", h.CreateRule)
		r.Route("/rules/{id}", func(r chi.Router) {
			r.Get("/", h.GetRule)
			r.Put("/", h.UpdateRule)
			r.Delete("/", h.DeleteRule)
			r.Get("/occurrences", h.ListOccurrences)
		})
	})

	r.Get("/templates/{template_id}/recurrence/rules", h.ListRules)
	r.Post("/tasks/buckets", h.GroupTasks)

	return r
}
