package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/domain/run"
)

// ProjectService defines project operations needed by the REST API.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	Summaries(ctx context.Context) ([]project.Summary, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Update(ctx context.Context, id string, edit project.Edit) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	Runs(ctx context.Context, id string) ([]project.Run, error)
}

// RunService defines run operations needed by the REST API.
type RunService interface {
	Start(ctx context.Context, projectID string, req run.StartRequest) (*run.Handle, error)
}

// ActivityService defines activity operations needed by the REST API.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains the domain services behind the router.
type Services struct {
	Projects ProjectService
	Runs     RunService
	Activity ActivityService
}

// Options configures optional routes and middleware.
type Options struct {
	// MCP is mounted at /mcp when set.
	MCP http.Handler
	// Metrics is served at /metrics when set.
	Metrics http.Handler
	// Middleware wraps every route, e.g. request instrumentation.
	Middleware []func(http.Handler) http.Handler
	Logger     *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	services Services
	logger   *slog.Logger
}

// NewServer creates the HTTP router.
func NewServer(services Services, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range opts.Middleware {
		r.Use(mw)
	}

	srv := &Server{services: services, logger: logger}

	r.Get("/health", srv.handleHealth)
	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}
	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/projects", srv.listProjects)
		r.Post("/projects", srv.createProject)
		r.Route("/projects/{id}", func(r chi.Router) {
			r.Get("/", srv.getProject)
			r.Put("/", srv.updateProject)
			r.Delete("/", srv.deleteProject)
			r.Post("/runs", srv.startRun)
			r.Get("/runs", srv.listRuns)
		})
		r.Get("/activity", srv.listActivity)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type createProjectRequest struct {
	ID                   string `json:"id,omitempty"`
	Name                 string `json:"name"`
	MeetingURL           string `json:"meetingUrl"`
	Prompt               string `json:"prompt"`
	WikiURL              string `json:"wikiUrl,omitempty"`
	WikiTableTitle       string `json:"wikiTableTitle,omitempty"`
	SlackChannel         string `json:"slackChannel,omitempty"`
	SlackMessageTemplate string `json:"slackMessageTemplate,omitempty"`
}

type updateProjectRequest struct {
	Name                 *string `json:"name,omitempty"`
	MeetingURL           *string `json:"meetingUrl,omitempty"`
	Prompt               *string `json:"prompt,omitempty"`
	WikiURL              *string `json:"wikiUrl,omitempty"`
	WikiTableTitle       *string `json:"wikiTableTitle,omitempty"`
	SlackChannel         *string `json:"slackChannel,omitempty"`
	SlackMessageTemplate *string `json:"slackMessageTemplate,omitempty"`
}

type startRunRequest struct {
	MeetingURL string `json:"meetingUrl,omitempty"`
	CallName   string `json:"callName,omitempty"`
	Wait       bool   `json:"wait,omitempty"`
}

type runResponse struct {
	ProjectID string      `json:"projectId"`
	Run       project.Run `json:"run"`
	Discarded bool        `json:"discarded,omitempty"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.services.Projects.Summaries(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteResult(w, http.StatusOK, summaries)
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	proj, err := s.services.Projects.Create(r.Context(), project.CreateRequest{
		ID:                   req.ID,
		Name:                 req.Name,
		MeetingURL:           req.MeetingURL,
		Prompt:               req.Prompt,
		WikiURL:              req.WikiURL,
		WikiTableTitle:       req.WikiTableTitle,
		SlackChannel:         req.SlackChannel,
		SlackMessageTemplate: req.SlackMessageTemplate,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteResult(w, http.StatusCreated, proj)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	proj, err := s.services.Projects.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteResult(w, http.StatusOK, proj)
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	proj, err := s.services.Projects.Update(r.Context(), chi.URLParam(r, "id"), project.Edit{
		Name:                 req.Name,
		MeetingURL:           req.MeetingURL,
		Prompt:               req.Prompt,
		WikiURL:              req.WikiURL,
		WikiTableTitle:       req.WikiTableTitle,
		SlackChannel:         req.SlackChannel,
		SlackMessageTemplate: req.SlackMessageTemplate,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteResult(w, http.StatusOK, proj)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.services.Projects.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	projectID := chi.URLParam(r, "id")
	handle, err := s.services.Runs.Start(r.Context(), projectID, run.StartRequest{
		MeetingURL: req.MeetingURL,
		CallName:   req.CallName,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := runResponse{ProjectID: projectID, Run: handle.Run}
	if !req.Wait {
		WriteResult(w, http.StatusAccepted, resp)
		return
	}
	final, err := handle.Wait(r.Context())
	switch {
	case errors.Is(err, run.ErrDiscarded):
		resp.Discarded = true
	case err != nil:
		s.fail(w, r, err)
		return
	default:
		resp.Run = final
	}
	WriteResult(w, http.StatusOK, resp)
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.services.Projects.Runs(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteResult(w, http.StatusOK, runs)
}

func (s *Server) listActivity(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := activity.ListActivityOptions{ProjectID: q.Get("projectId")}
	if v := q.Get("runId"); v != "" {
		opts.RunID = &v
	}
	if v := q.Get("type"); v != "" {
		t := activity.ActivityType(v)
		opts.ActivityType = &t
	}
	var err error
	if opts.Limit, err = intParam(q.Get("limit")); err != nil {
		s.fail(w, r, err)
		return
	}
	if opts.Offset, err = intParam(q.Get("offset")); err != nil {
		s.fail(w, r, err)
		return
	}

	entries, err := s.services.Activity.GetRecentActivity(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []activity.ActivityEntry{}
	}
	WriteResult(w, http.StatusOK, entries)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	WriteError(w, err)
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.Join(errBadRequest, errors.New("expected a non-negative integer, got "+strconv.Quote(v)))
	}
	return n, nil
}
