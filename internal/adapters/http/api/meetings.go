package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/internal/domain/normalize"
	"github.com/okian/meetglobe/pkg/logger"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// createMeetingRequest is the JSON body of POST /v1/meetings. Per-participant
// problems are reported as warnings by the service, so only the envelope is
// validated here.
type createMeetingRequest struct {
	Title        string              `json:"title" validate:"required"`
	Participants []model.Participant `json:"participants" validate:"required,min=1"`
}

// MeetingsHandler serves the meeting routes.
type MeetingsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewMeetingsHandler creates a meetings handler.
func NewMeetingsHandler(deps Dependencies, log logger.Logger) *MeetingsHandler {
	return &MeetingsHandler{deps: deps, logger: log}
}

// HandleCreate handles POST /v1/meetings. The body is either JSON or a
// text/plain roster of "Name, City" lines with the title in ?title=.
func (h *MeetingsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_meeting"
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var (
		req        createMeetingRequest
		lineErrors []error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "", "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
	case "text/plain":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, codeBadRequest, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		req.Title = r.URL.Query().Get("title")
		req.Participants, lineErrors = normalize.ParseRoster(string(body))
		if len(req.Participants) == 0 && len(lineErrors) > 0 {
			writeError(w, http.StatusBadRequest, codeValidation,
				model.NewValidationError("participants", "%v", errors.Join(lineErrors...)))
			return
		}
	default:
		writeError(w, http.StatusUnsupportedMediaType, codeUnsupportedMedia, ErrUnsupportedMedia)
		return
	}
	if err := model.Validate(req); err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, err)
		return
	}

	res, err := h.deps.CreateMeeting(r.Context(), req.Title, req.Participants)
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, op, err)
		return
	}
	for _, le := range lineErrors {
		res.Warnings = append(res.Warnings, model.InvalidLine(le))
	}
	w.Header().Set("Location", "/v1/meetings/"+res.Meeting.ID)
	writeJSON(w, http.StatusCreated, res)
}

// HandleList handles GET /v1/meetings.
func (h *MeetingsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.deps.ListMeetings(r.Context())
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.list_meetings", err)
		return
	}
	summaries := make([]model.Summary, len(list))
	for i, m := range list {
		summaries[i] = m.Summary()
	}
	writeJSON(w, http.StatusOK, map[string]any{"meetings": summaries})
}

// HandleGet handles GET /v1/meetings/{id}.
func (h *MeetingsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	m, err := h.deps.GetMeeting(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.get_meeting", err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// HandleDelete handles DELETE /v1/meetings/{id}.
func (h *MeetingsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.DeleteMeeting(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.delete_meeting", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleVisualization handles GET /v1/meetings/{id}/visualization.
func (h *MeetingsHandler) HandleVisualization(w http.ResponseWriter, r *http.Request) {
	v, err := h.deps.GetVisualization(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), h.logger, w, "api.get_visualization", err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
