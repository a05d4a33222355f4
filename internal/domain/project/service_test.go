package project_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory project.Store.
type memStore struct {
	mu       sync.Mutex
	projects []project.Project
	saves    int
}

func (m *memStore) LoadAll(context.Context) ([]project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]project.Project, len(m.projects))
	copy(out, m.projects)
	return out, nil
}

func (m *memStore) SaveAll(_ context.Context, projects []project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects = make([]project.Project, len(projects))
	copy(m.projects, projects)
	m.saves++
	return nil
}

func validRequest() project.CreateRequest {
	return project.CreateRequest{
		Name:       "Weekly Sync",
		MeetingURL: "https://x/y",
		Prompt:     "summarize",
	}
}

func TestProjectService_Create(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := project.NewService(store, nil)

	proj, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, proj.ID)
	require.False(t, proj.CreatedAt.IsZero())
	require.NotNil(t, proj.Runs)
	require.Empty(t, proj.Runs)

	stored, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, *proj, stored[0])
}

func TestProjectService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}

	logger := &mocks.ActivityLogger{}
	logger.On("LogActivity", ctx, mock.MatchedBy(func(e *activity.ActivityEntry) bool {
		return e.ActivityType == activity.TypeValidationFailed
	})).Return(nil).Times(3)

	svc := project.NewService(store, nil, project.WithActivity(logger))

	for _, req := range []project.CreateRequest{
		{MeetingURL: "https://x/y", Prompt: "p"},
		{Name: "n", Prompt: "p"},
		{Name: "n", MeetingURL: "https://x/y", Prompt: "  "},
	} {
		_, err := svc.Create(ctx, req)
		require.ErrorIs(t, err, project.ErrInvalidInput)
	}

	require.Zero(t, store.saves)
	require.Empty(t, store.projects)
	logger.AssertExpectations(t)
}

func TestProjectService_UniqueIDs(t *testing.T) {
	ctx := context.Background()
	svc := project.NewService(&memStore{}, nil)

	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		proj, err := svc.Create(ctx, validRequest())
		require.NoError(t, err)
		require.False(t, seen[proj.ID], "duplicate id %s", proj.ID)
		seen[proj.ID] = true
	}
}

func TestProjectService_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	svc := project.NewService(&memStore{}, nil)

	req := validRequest()
	req.ID = "fixed"
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req)
	require.ErrorIs(t, err, project.ErrDuplicateID)
}

func TestProjectService_GetNotFound(t *testing.T) {
	svc := project.NewService(&memStore{}, nil)
	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestProjectService_Update(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	svc := project.NewService(store, nil)

	proj, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	name := "Renamed"
	updated, err := svc.Update(ctx, proj.ID, project.Edit{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, proj.CreatedAt, updated.CreatedAt)

	blank := ""
	saves := store.saves
	_, err = svc.Update(ctx, proj.ID, project.Edit{MeetingURL: &blank})
	require.ErrorIs(t, err, project.ErrInvalidInput)
	require.Equal(t, saves, store.saves)

	got, err := svc.Get(ctx, proj.ID)
	require.NoError(t, err)
	require.Equal(t, "https://x/y", got.MeetingURL)
}

func TestProjectService_Delete(t *testing.T) {
	ctx := context.Background()
	svc := project.NewService(&memStore{}, nil)

	proj, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, proj.ID))
	require.ErrorIs(t, svc.Delete(ctx, proj.ID), project.ErrProjectNotFound)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestProjectService_SaveFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("quota exceeded")

	store := &mocks.ProjectStore{}
	store.On("LoadAll", ctx).Return([]project.Project{}, nil)
	store.On("SaveAll", ctx, mock.Anything).Return(boom)

	svc := project.NewService(store, nil)
	_, err := svc.Create(ctx, validRequest())
	require.ErrorIs(t, err, boom)
}

func TestProjectService_ActivityFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()

	logger := &mocks.ActivityLogger{}
	logger.On("LogActivity", ctx, mock.Anything).Return(errors.New("log unavailable"))

	svc := project.NewService(&memStore{}, nil, project.WithActivity(logger))
	_, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
}

type countingRecorder struct {
	ops map[string]int
}

func (c *countingRecorder) ProjectOperation(op string, err error) {
	if c.ops == nil {
		c.ops = map[string]int{}
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.ops[op+":"+status]++
}

func TestProjectService_RecordsOperations(t *testing.T) {
	ctx := context.Background()
	rec := &countingRecorder{}
	svc := project.NewService(&memStore{}, nil, project.WithRecorder(rec))

	proj, err := svc.Create(ctx, validRequest())
	require.NoError(t, err)
	_, _ = svc.Create(ctx, project.CreateRequest{})
	require.NoError(t, svc.Delete(ctx, proj.ID))

	require.Equal(t, 1, rec.ops["create:ok"])
	require.Equal(t, 1, rec.ops["create:error"])
	require.Equal(t, 1, rec.ops["delete:ok"])
}

func TestProjectService_ConcurrentMutationsAreSerialized(t *testing.T) {
	ctx := context.Background()
	svc := project.NewService(&memStore{}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, validRequest())
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 20)
}
