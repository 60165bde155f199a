package api

import (
	"net/http"

	"github.com/okian/meetglobe/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// MembersHandler serves read-only member routes.
type MembersHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewMembersHandler creates a members handler.
func NewMembersHandler(deps Dependencies, log logger.Logger) *MembersHandler {
	return &MembersHandler{deps: deps, logger: log}
}

// HandleList handles GET /v1/members.
func (h *MembersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListMembers(r.Context())
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.list_members", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"members": list})
}

// HandleGet handles GET /v1/members/{id}.
func (h *MembersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.get_member", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}
