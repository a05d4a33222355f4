package run_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/domain/run"
	"github.com/rpggio/meetflow/internal/integration/sample"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu       sync.Mutex
	projects []project.Project
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
	return nil
}

// gatedSummarizer blocks until release is closed.
type gatedSummarizer struct {
	release chan struct{}
}

func (g gatedSummarizer) Summarize(ctx context.Context, t run.Transcript, prompt string) (run.Result, error) {
	select {
	case <-g.release:
	case <-ctx.Done():
		return run.Result{}, ctx.Err()
	}
	return sample.Summarizer{}.Summarize(ctx, t, prompt)
}

type summarizerFunc func(context.Context, run.Transcript, string) (run.Result, error)

func (f summarizerFunc) Summarize(ctx context.Context, t run.Transcript, prompt string) (run.Result, error) {
	return f(ctx, t, prompt)
}

type recordingWiki struct {
	mu      sync.Mutex
	entries []run.WikiEntry
	err     error
}

func (w *recordingWiki) Publish(_ context.Context, e run.WikiEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries = append(w.entries, e)
	return w.err
}

type recordingSlack struct {
	mu   sync.Mutex
	msgs []run.SlackMessage
	err  error
}

func (s *recordingSlack) Notify(_ context.Context, m run.SlackMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return s.err
}

type recordingActivity struct {
	mu      sync.Mutex
	entries []activity.ActivityEntry
}

func (r *recordingActivity) LogActivity(_ context.Context, e *activity.ActivityEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *e)
	return nil
}

func (r *recordingActivity) types() []activity.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]activity.ActivityType, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.ActivityType)
	}
	return out
}

type countingRecorder struct {
	mu       sync.Mutex
	started  int
	finished map[project.RunStatus]int
}

func (c *countingRecorder) RunStarted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started++
}

func (c *countingRecorder) RunFinished(status project.RunStatus, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished == nil {
		c.finished = map[project.RunStatus]int{}
	}
	c.finished[status]++
}

type fixture struct {
	store    *memStore
	projects *project.Service
	activity *recordingActivity
}

func newFixture() *fixture {
	store := &memStore{}
	return &fixture{
		store:    store,
		projects: project.NewService(store, nil),
		activity: &recordingActivity{},
	}
}

func (f *fixture) lifecycle(cfg run.Config) *run.Lifecycle {
	cfg.Projects = f.projects
	if cfg.Source == nil {
		cfg.Source = sample.TranscriptSource{}
	}
	if cfg.Summarizer == nil {
		cfg.Summarizer = sample.Summarizer{}
	}
	cfg.Activity = f.activity
	return run.NewLifecycle(cfg)
}

func (f *fixture) create(t *testing.T, name string) *project.Project {
	t.Helper()
	p, err := f.projects.Create(context.Background(), project.CreateRequest{
		Name:       name,
		MeetingURL: "https://x/y",
		Prompt:     "summarize",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) get(t *testing.T, id string) *project.Project {
	t.Helper()
	p, err := f.projects.Get(context.Background(), id)
	require.NoError(t, err)
	return p
}

func waitRun(t *testing.T, h *run.Handle) (project.Run, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return h.Wait(ctx)
}

func TestLifecycle_WeeklySyncScenario(t *testing.T) {
	f := newFixture()
	other := f.create(t, "Other")
	otherRun := project.Run{ID: "old", Status: project.StatusCompleted, Summary: "kept"}
	require.NoError(t, f.projects.Mutate(context.Background(), func(ps []project.Project) ([]project.Project, error) {
		return project.InsertRun(ps, other.ID, otherRun)
	}))

	weekly := f.create(t, "Weekly Sync")
	require.Empty(t, f.get(t, weekly.ID).Runs)

	release := make(chan struct{})
	lc := f.lifecycle(run.Config{Summarizer: gatedSummarizer{release: release}})

	h, err := lc.Start(context.Background(), weekly.ID, run.StartRequest{})
	require.NoError(t, err)
	require.Equal(t, project.StatusProcessing, h.Run.Status)

	stored := f.get(t, weekly.ID)
	require.Len(t, stored.Runs, 1)
	require.Equal(t, h.Run.ID, stored.Runs[0].ID)
	require.Equal(t, project.StatusProcessing, stored.Runs[0].Status)
	require.Empty(t, stored.Runs[0].Summary)

	close(release)
	final, err := waitRun(t, h)
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, final.Status)

	stored = f.get(t, weekly.ID)
	require.Equal(t, h.Run.ID, stored.Runs[0].ID)
	require.Equal(t, project.StatusCompleted, stored.Runs[0].Status)
	require.NotEmpty(t, stored.Runs[0].Summary)
	require.Len(t, stored.Runs[0].ActionItems, 3)
	require.NotNil(t, stored.Runs[0].FinishedAt)

	require.Equal(t, []project.Run{otherRun}, f.get(t, other.ID).Runs)
	require.Equal(t, []activity.ActivityType{activity.TypeRunStarted, activity.TypeRunCompleted}, f.activity.types())
}

func TestLifecycle_DeletedProjectIsNotResurrected(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Doomed")

	release := make(chan struct{})
	lc := f.lifecycle(run.Config{Summarizer: gatedSummarizer{release: release}})
	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)

	require.NoError(t, f.projects.Delete(context.Background(), p.ID))
	close(release)

	_, err = waitRun(t, h)
	require.ErrorIs(t, err, run.ErrDiscarded)

	list, err := f.projects.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestLifecycle_RunInProgress(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Busy")

	release := make(chan struct{})
	lc := f.lifecycle(run.Config{Summarizer: gatedSummarizer{release: release}})
	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)

	_, err = lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.ErrorIs(t, err, project.ErrRunInProgress)
	require.Len(t, f.get(t, p.ID).Runs, 1)

	close(release)
	_, err = waitRun(t, h)
	require.NoError(t, err)

	h2, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)
	_, err = waitRun(t, h2)
	require.NoError(t, err)

	runs := f.get(t, p.ID).Runs
	require.Len(t, runs, 2)
	require.Equal(t, h2.Run.ID, runs[0].ID)
	require.NotEqual(t, runs[0].ID, runs[1].ID)
}

func TestLifecycle_UnknownProject(t *testing.T) {
	f := newFixture()
	lc := f.lifecycle(run.Config{})

	_, err := lc.Start(context.Background(), "missing", run.StartRequest{})
	require.ErrorIs(t, err, project.ErrProjectNotFound)
	require.Empty(t, f.activity.types())
}

func TestLifecycle_MeetingURLOverride(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Override")
	lc := f.lifecycle(run.Config{})

	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{
		MeetingURL: " https://teams/new ",
		CallName:   "Sprint review",
	})
	require.NoError(t, err)
	require.Equal(t, "https://teams/new", h.Run.MeetingURL)
	require.Equal(t, "Sprint review", h.Run.CallName)

	_, err = waitRun(t, h)
	require.NoError(t, err)

	stored := f.get(t, p.ID)
	require.Equal(t, "https://teams/new", stored.MeetingURL)
	require.Equal(t, "Sprint review", stored.Runs[0].CallName)
}

func TestLifecycle_EditsDuringProcessingSurvive(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Before")

	release := make(chan struct{})
	lc := f.lifecycle(run.Config{Summarizer: gatedSummarizer{release: release}})
	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)

	name := "After"
	_, err = f.projects.Update(context.Background(), p.ID, project.Edit{Name: &name})
	require.NoError(t, err)
	close(release)

	_, err = waitRun(t, h)
	require.NoError(t, err)

	stored := f.get(t, p.ID)
	require.Equal(t, "After", stored.Name)
	require.Equal(t, project.StatusCompleted, stored.Runs[0].Status)
}

func TestLifecycle_Failures(t *testing.T) {
	cases := map[string]struct {
		meetingURL string
		summarizer run.Summarizer
		timeout    time.Duration
		errPart    string
	}{
		"transcript": {
			meetingURL: "not a url",
			summarizer: sample.Summarizer{},
			errPart:    "fetching transcript",
		},
		"summarizer": {
			summarizer: summarizerFunc(func(context.Context, run.Transcript, string) (run.Result, error) {
				return run.Result{}, errors.New("quota exceeded")
			}),
			errPart: "quota exceeded",
		},
		"empty summary": {
			summarizer: summarizerFunc(func(context.Context, run.Transcript, string) (run.Result, error) {
				return run.Result{}, nil
			}),
			errPart: "empty summary",
		},
		"panic": {
			summarizer: summarizerFunc(func(context.Context, run.Transcript, string) (run.Result, error) {
				panic("engine crashed")
			}),
			errPart: "engine crashed",
		},
		"timeout": {
			summarizer: sample.Summarizer{Delay: time.Minute},
			timeout:    20 * time.Millisecond,
			errPart:    "timed out",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			p := f.create(t, name)
			if tc.meetingURL != "" {
				url := tc.meetingURL
				_, err := f.projects.Update(context.Background(), p.ID, project.Edit{MeetingURL: &url})
				require.NoError(t, err)
			}
			rec := &countingRecorder{}
			lc := f.lifecycle(run.Config{Summarizer: tc.summarizer, Timeout: tc.timeout, Recorder: rec})

			h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
			require.NoError(t, err)
			final, err := waitRun(t, h)
			require.NoError(t, err)

			require.Equal(t, project.StatusFailed, final.Status)
			require.Contains(t, final.Error, tc.errPart)
			require.Empty(t, final.Summary)
			require.Empty(t, final.ActionItems)

			stored := f.get(t, p.ID)
			require.Equal(t, project.StatusFailed, stored.Runs[0].Status)
			require.Contains(t, f.activity.types(), activity.TypeRunFailed)
			require.Equal(t, 1, rec.started)
			require.Equal(t, 1, rec.finished[project.StatusFailed])
		})
	}
}

func TestLifecycle_Delivery(t *testing.T) {
	f := newFixture()
	p, err := f.projects.Create(context.Background(), project.CreateRequest{
		Name:                 "Delivered",
		MeetingURL:           "https://x/y",
		Prompt:               "summarize",
		WikiURL:              "https://wiki/page",
		WikiTableTitle:       "Meeting Notes",
		SlackChannel:         "#team",
		SlackMessageTemplate: "{{project}}: {{summary}}",
	})
	require.NoError(t, err)

	wiki := &recordingWiki{}
	slack := &recordingSlack{err: errors.New("channel_not_found")}
	lc := f.lifecycle(run.Config{Wiki: wiki, Slack: slack})

	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)
	final, err := waitRun(t, h)
	require.NoError(t, err)
	require.Equal(t, project.StatusCompleted, final.Status)

	require.Len(t, wiki.entries, 1)
	require.Equal(t, "Meeting Notes", wiki.entries[0].TableTitle)
	require.Len(t, wiki.entries[0].ActionItems, 3)

	require.Len(t, slack.msgs, 1)
	require.Equal(t, "#team", slack.msgs[0].Channel)
	require.Equal(t, final.Summary, slack.msgs[0].Summary)

	require.Equal(t, project.StatusCompleted, f.get(t, p.ID).Runs[0].Status)
	require.Contains(t, f.activity.types(), activity.TypeDeliveryFailed)
}

func TestLifecycle_DeliverySkippedWithoutTargets(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Quiet")

	wiki := &recordingWiki{}
	slack := &recordingSlack{}
	lc := f.lifecycle(run.Config{Wiki: wiki, Slack: slack})

	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)
	_, err = waitRun(t, h)
	require.NoError(t, err)

	require.Empty(t, wiki.entries)
	require.Empty(t, slack.msgs)
}

func TestLifecycle_ConcurrentProjects(t *testing.T) {
	f := newFixture()
	rec := &countingRecorder{}
	lc := f.lifecycle(run.Config{Summarizer: sample.Summarizer{Delay: 5 * time.Millisecond}, Recorder: rec})

	const n = 8
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, f.create(t, "p").ID)
	}

	handles := make([]*run.Handle, 0, n)
	for _, id := range ids {
		h, err := lc.Start(context.Background(), id, run.StartRequest{})
		require.NoError(t, err)
		handles = append(handles, h)
	}
	lc.Wait()

	for i, h := range handles {
		select {
		case <-h.Done():
		default:
			t.Fatalf("handle %d not resolved after Wait", i)
		}
		runs := f.get(t, ids[i]).Runs
		require.Len(t, runs, 1)
		require.Equal(t, h.Run.ID, runs[0].ID)
		require.Equal(t, project.StatusCompleted, runs[0].Status)
	}
	require.Equal(t, n, rec.started)
	require.Equal(t, n, rec.finished[project.StatusCompleted])
}

func TestHandle_WaitHonorsContext(t *testing.T) {
	f := newFixture()
	p := f.create(t, "Slow")

	release := make(chan struct{})
	lc := f.lifecycle(run.Config{Summarizer: gatedSummarizer{release: release}})
	h, err := lc.Start(context.Background(), p.ID, run.StartRequest{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	lc.Wait()
}
