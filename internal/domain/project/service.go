package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/meetflow/internal/domain/activity"
)

// Service handles project operations over the persisted collection.
//
// Every read-modify-write cycle goes through Mutate, which holds a process-wide
// lock so deferred run completions and user edits in the same process never
// overwrite each other. Separate processes sharing one store are not
// coordinated; the last SaveAll wins.
type Service struct {
	store    Store
	activity ActivityLogger
	recorder Recorder
	logger   *slog.Logger

	mu sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithActivity reports operation outcomes to the given activity logger.
func WithActivity(a ActivityLogger) Option {
	return func(s *Service) { s.activity = a }
}

// WithRecorder counts operations with the given recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a new project service.
func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{store: store, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRequest defines project creation inputs.
type CreateRequest struct {
	ID                   string
	Name                 string
	MeetingURL           string
	Prompt               string
	WikiURL              string
	WikiTableTitle       string
	SlackChannel         string
	SlackMessageTemplate string
}

// Create validates and appends a new project.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Project, error) {
	id := req.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.NewString()
	}

	proj := Project{
		ID:                   id,
		Name:                 req.Name,
		MeetingURL:           req.MeetingURL,
		Prompt:               req.Prompt,
		WikiURL:              req.WikiURL,
		WikiTableTitle:       req.WikiTableTitle,
		SlackChannel:         req.SlackChannel,
		SlackMessageTemplate: req.SlackMessageTemplate,
		CreatedAt:            now(),
		Runs:                 []Run{},
	}

	err := s.Mutate(ctx, func(projects []Project) ([]Project, error) {
		return Append(projects, proj)
	})
	s.record(ctx, "create", proj.ID, err, activity.TypeProjectCreated,
		fmt.Sprintf("Project %q has been created", proj.Name))
	if err != nil {
		return nil, err
	}
	return &proj, nil
}

// Get fetches a project by ID.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	projects, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	proj, ok := Find(projects, id)
	if !ok {
		return nil, ErrProjectNotFound
	}
	return &proj, nil
}

// List returns every project in stored order.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	projects, err := s.store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading projects: %w", err)
	}
	return projects, nil
}

// Summaries returns dashboard views of every project.
func (s *Service) Summaries(ctx context.Context) ([]Summary, error) {
	projects, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.Summarize())
	}
	return out, nil
}

// Update applies an edit to an existing project.
func (s *Service) Update(ctx context.Context, id string, edit Edit) (*Project, error) {
	var updated Project
	err := s.Mutate(ctx, func(projects []Project) ([]Project, error) {
		out, err := ApplyEdit(projects, id, edit)
		if err != nil {
			return nil, err
		}
		updated, _ = Find(out, id)
		return out, nil
	})
	s.record(ctx, "update", id, err, activity.TypeProjectUpdated,
		fmt.Sprintf("Project %q has been updated", updated.Name))
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes a project and its run history.
func (s *Service) Delete(ctx context.Context, id string) error {
	var name string
	err := s.Mutate(ctx, func(projects []Project) ([]Project, error) {
		if p, ok := Find(projects, id); ok {
			name = p.Name
		}
		return Remove(projects, id)
	})
	s.record(ctx, "delete", id, err, activity.TypeProjectDeleted,
		fmt.Sprintf("Project %q has been removed", name))
	return err
}

// Runs returns the run history of a project, newest first.
func (s *Service) Runs(ctx context.Context, id string) ([]Run, error) {
	proj, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return proj.Runs, nil
}

// Mutate loads the current collection, applies fn and saves the result.
// Nothing is written when fn returns an error.
func (s *Service) Mutate(ctx context.Context, fn func([]Project) ([]Project, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading projects: %w", err)
	}
	updated, err := fn(projects)
	if err != nil {
		return err
	}
	if err := s.store.SaveAll(ctx, updated); err != nil {
		return fmt.Errorf("saving projects: %w", err)
	}
	return nil
}

func (s *Service) record(ctx context.Context, op, projectID string, err error, typ activity.ActivityType, summary string) {
	if s.recorder != nil {
		s.recorder.ProjectOperation(op, err)
	}
	switch {
	case err == nil:
		s.notify(ctx, &activity.ActivityEntry{ProjectID: projectID, ActivityType: typ, Summary: summary})
	case errors.Is(err, ErrInvalidInput):
		s.notify(ctx, &activity.ActivityEntry{
			ProjectID:    projectID,
			ActivityType: activity.TypeValidationFailed,
			Summary:      "Please fill in all required fields",
			Details:      err.Error(),
		})
	default:
		s.logger.Warn("project operation failed", "operation", op, "project_id", projectID, "error", err)
	}
}

func (s *Service) notify(ctx context.Context, entry *activity.ActivityEntry) {
	if s.activity == nil {
		return
	}
	if err := s.activity.LogActivity(ctx, entry); err != nil {
		s.logger.Warn("failed to log activity", "type", entry.ActivityType, "error", err)
	}
}

func now() time.Time {
	return time.Now().UTC().Round(0)
}
