package handler

import (
	"net/http"

	"github.com/todoapp/todoapp/internal/api/response"
	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/store"
)

// SystemHandler handles system-level operations.
type SystemHandler struct {
	manager *store.Manager
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(manager *store.Manager) *SystemHandler {
	return &SystemHandler{manager: manager}
}

// Health handles GET /api/health.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Ping(); err != nil {
		response.Error(w, domain.NewInternalError(err))
		return
	}
	response.OK(w, map[string]string{"status": "ok"})
}

// NotFound answers unmatched routes with a JSON 404.
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	response.Error(w, domain.NewNotFoundError())
}
