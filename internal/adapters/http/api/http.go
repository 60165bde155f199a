// Package api exposes the meeting service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	service "github.com/okian/meetglobe/internal/app"
	"github.com/okian/meetglobe/internal/domain/model"
	"github.com/okian/meetglobe/pkg/logger"
	"github.com/okian/meetglobe/pkg/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	CreateMeeting(ctx context.Context, title string, participants []model.Participant) (service.CreateResult, error)
	GetVisualization(ctx context.Context, id string) (model.Visualization, error)
	GetMeeting(ctx context.Context, id string) (model.Meeting, error)
	ListMeetings(ctx context.Context) ([]model.Meeting, error)
	DeleteMeeting(ctx context.Context, id string) error

	GetMember(ctx context.Context, id string) (model.Member, error)
	ListMembers(ctx context.Context) ([]model.Member, error)

	ResolveCity(ctx context.Context, name string) (model.City, error)
	RefreshCities(ctx context.Context) (int, error)
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats(ctx context.Context) map[string]any
}

// Server wires HTTP routes for the business API.
type Server struct {
	meetings *MeetingsHandler
	members  *MembersHandler
	cities   *CitiesHandler
	health   *HealthHandler
	stats    *StatsHandler

	corsOrigins []string
	extraRoutes []func(chi.Router)
	logger      logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		corsOrigins: []string{"*"},
		logger:      logger.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.meetings = NewMeetingsHandler(deps, s.logger)
	s.members = NewMembersHandler(deps, s.logger)
	s.cities = NewCitiesHandler(deps, s.logger)
	s.health = NewHealthHandler()
	s.stats = NewStatsHandler(statsProvider)
	return s
}

// Handler builds the router with every route and middleware attached.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.health.HandleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))
	r.Get("/stats", s.stats.HandleStats)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/meetings", func(r chi.Router) {
			r.Post("/", s.meetings.HandleCreate)
			r.Get("/", s.meetings.HandleList)
			r.Get("/{id}", s.meetings.HandleGet)
			r.Delete("/{id}", s.meetings.HandleDelete)
			r.Get("/{id}/visualization", s.meetings.HandleVisualization)
		})
		r.Get("/members", s.members.HandleList)
		r.Get("/members/{id}", s.members.HandleGet)
		r.Get("/cities/{name}", s.cities.HandleGet)
		r.Post("/cities/refresh", s.cities.HandleRefresh)
	})

	for _, register := range s.extraRoutes {
		register(r)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, errRouteNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, errMethodNotAllowed)
	})
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	resp := errorResponse{Code: code, Message: msg}
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
		resp.Message = ve.Message
	}
	writeJSON(w, status, resp)
}

// writeServiceError maps domain errors onto HTTP statuses. Anything that is
// neither a validation nor a not-found error is logged and reported as 500.
func writeServiceError(ctx context.Context, log logger.Logger, w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, codeValidation, err)
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, err)
	default:
		log.Error(ctx, "request failed",
			logger.String("op", op),
			logger.String("request_id", middleware.GetReqID(ctx)),
			logger.Error(err))
		writeError(w, http.StatusInternalServerError, codeInternal, errInternal)
	}
}
