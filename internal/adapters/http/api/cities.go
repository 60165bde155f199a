package api

import (
	"net/http"
	"net/url"

	"github.com/okian/meetglobe/pkg/logger"

	"github.com/go-chi/chi/v5"
)

// CitiesHandler serves city lookups and dataset refreshes.
type CitiesHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewCitiesHandler creates a cities handler.
func NewCitiesHandler(deps Dependencies, log logger.Logger) *CitiesHandler {
	return &CitiesHandler{deps: deps, logger: log}
}

// HandleGet handles GET /v1/cities/{name}.
func (h *CitiesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	c, err := h.deps.ResolveCity(r.Context(), name)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.get_city", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// HandleRefresh handles POST /v1/cities/refresh.
func (h *CitiesHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.deps.RefreshCities(r.Context())
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.refresh_cities", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"cities": n})
}
