package handler

import (
	"net/http"

	"github.com/rezkam/central/internal/domain"
	"github.com/rezkam/central/internal/infrastructure/http/response"
)

// GroupTasksRequest is the body of POST /v1/tasks/buckets.
type GroupTasksRequest struct {
	Tasks []domain.Task `json:"tasks"`
}

// GroupTasks handles POST /v1/tasks/buckets.
func (h *PlannerHandler) GroupTasks(w http.ResponseWriter, r *http.Request) {
	var req GroupTasksRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	grouping, err := h.svc.GroupTasks(r.Context(), req.Tasks)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, grouping)
}
