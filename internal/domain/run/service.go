package run

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
	"github.com/rpggio/meetflow/internal/domain/project"
)

// DefaultTimeout bounds the processing of a single run.
const DefaultTimeout = 5 * time.Minute

// ErrDiscarded is reported by a Handle when its project or run was removed
// before processing finished. The completion is dropped.
var ErrDiscarded = errors.New("run discarded")

// Config wires a Lifecycle to its collaborators. Projects, Source and
// Summarizer are required; the rest are optional.
type Config struct {
	Projects   Projects
	Source     TranscriptSource
	Summarizer Summarizer
	Wiki       WikiPublisher
	Slack      SlackNotifier
	Activity   ActivityLogger
	Recorder   Recorder
	Timeout    time.Duration
	Logger     *slog.Logger
}

// Lifecycle starts runs and drives each one to a terminal state.
type Lifecycle struct {
	projects   Projects
	source     TranscriptSource
	summarizer Summarizer
	wiki       WikiPublisher
	slack      SlackNotifier
	activity   ActivityLogger
	recorder   Recorder
	timeout    time.Duration
	logger     *slog.Logger

	wg sync.WaitGroup
}

// NewLifecycle creates a new run lifecycle.
func NewLifecycle(cfg Config) *Lifecycle {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Lifecycle{
		projects:   cfg.Projects,
		source:     cfg.Source,
		summarizer: cfg.Summarizer,
		wiki:       cfg.Wiki,
		slack:      cfg.Slack,
		activity:   cfg.Activity,
		recorder:   cfg.Recorder,
		timeout:    timeout,
		logger:     logger,
	}
}

// Start inserts a processing run at the head of the project's history,
// persists it and schedules its completion. The returned Handle resolves once
// the run reaches a terminal state or is discarded.
func (l *Lifecycle) Start(ctx context.Context, projectID string, req StartRequest) (*Handle, error) {
	run := project.Run{
		ID:       uuid.NewString(),
		Date:     time.Now().UTC().Round(0),
		Status:   project.StatusProcessing,
		CallName: strings.TrimSpace(req.CallName),
	}

	var proj project.Project
	err := l.projects.Mutate(ctx, func(projects []project.Project) ([]project.Project, error) {
		p, ok := project.Find(projects, projectID)
		if !ok {
			return nil, project.ErrProjectNotFound
		}
		if latest, ok := p.LatestRun(); ok && latest.Status == project.StatusProcessing {
			return nil, project.ErrRunInProgress
		}

		out := projects
		if url := strings.TrimSpace(req.MeetingURL); url != "" && url != p.MeetingURL {
			var err error
			out, err = project.ApplyEdit(projects, projectID, project.Edit{MeetingURL: &url})
			if err != nil {
				return nil, err
			}
			p.MeetingURL = url
		}
		run.MeetingURL = p.MeetingURL

		out, err := project.InsertRun(out, projectID, run)
		if err != nil {
			return nil, err
		}
		proj, _ = project.Find(out, projectID)
		return out, nil
	})
	if err != nil {
		return nil, err
	}

	if l.recorder != nil {
		l.recorder.RunStarted()
	}
	l.notify(ctx, &activity.ActivityEntry{
		ProjectID:    proj.ID,
		RunID:        &run.ID,
		ActivityType: activity.TypeRunStarted,
		Summary:      "Your meeting is being processed",
		Details:      run.MeetingURL,
	})
	l.logger.Info("run started", "project_id", proj.ID, "run_id", run.ID)

	h := newHandle(run)
	l.wg.Add(1)
	go l.process(proj, run, h)
	return h, nil
}

// Wait blocks until every scheduled completion has finished.
func (l *Lifecycle) Wait() {
	l.wg.Wait()
}

func (l *Lifecycle) process(proj project.Project, run project.Run, h *Handle) {
	defer l.wg.Done()
	started := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	result, procErr := l.produce(ctx, proj, run)
	cancel()

	outcome := project.Outcome{FinishedAt: time.Now().UTC().Round(0)}
	if procErr != nil {
		outcome.Status = project.StatusFailed
		outcome.Error = procErr.Error()
	} else {
		outcome.Status = project.StatusCompleted
		outcome.Summary = result.Summary
		outcome.ActionItems = result.ActionItems
	}

	// Completion persists against the current collection, not the snapshot
	// taken at start, so edits made while processing survive.
	bg := context.Background()
	final, current, err := l.complete(bg, proj.ID, run.ID, outcome)
	if err != nil {
		switch {
		case errors.Is(err, project.ErrProjectNotFound), errors.Is(err, project.ErrRunNotFound):
			l.logger.Info("run discarded", "project_id", proj.ID, "run_id", run.ID)
			h.resolve(run, ErrDiscarded)
		case errors.Is(err, project.ErrRunTerminal):
			l.logger.Warn("run already finished", "project_id", proj.ID, "run_id", run.ID)
			h.resolve(run, err)
		default:
			l.logger.Error("failed to persist run completion", "project_id", proj.ID, "run_id", run.ID, "error", err)
			h.resolve(run, err)
		}
		return
	}

	if l.recorder != nil {
		l.recorder.RunFinished(final.Status, time.Since(started))
	}
	if final.Status == project.StatusCompleted {
		l.notify(bg, &activity.ActivityEntry{
			ProjectID:    current.ID,
			RunID:        &final.ID,
			ActivityType: activity.TypeRunCompleted,
			Summary:      "Summary and action items have been generated",
		})
		l.logger.Info("run completed", "project_id", current.ID, "run_id", final.ID)
		l.deliver(bg, current, final)
	} else {
		l.notify(bg, &activity.ActivityEntry{
			ProjectID:    current.ID,
			RunID:        &final.ID,
			ActivityType: activity.TypeRunFailed,
			Summary:      "Meeting processing failed",
			Details:      final.Error,
		})
		l.logger.Warn("run failed", "project_id", current.ID, "run_id", final.ID, "error", final.Error)
	}

	h.resolve(final, nil)
}

func (l *Lifecycle) produce(ctx context.Context, proj project.Project, run project.Run) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("processing panicked: %v", r)
		}
	}()
	defer func() {
		if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("processing timed out after %s: %w", l.timeout, err)
		}
	}()

	if l.source == nil || l.summarizer == nil {
		return Result{}, errors.New("meeting processing is not configured")
	}

	transcript, err := l.source.Fetch(ctx, run.MeetingURL)
	if err != nil {
		return Result{}, fmt.Errorf("fetching transcript: %w", err)
	}
	res, err = l.summarizer.Summarize(ctx, transcript, proj.Prompt)
	if err != nil {
		return Result{}, fmt.Errorf("summarizing meeting: %w", err)
	}
	if strings.TrimSpace(res.Summary) == "" {
		return Result{}, errors.New("summarizer returned an empty summary")
	}
	return res, nil
}

func (l *Lifecycle) complete(ctx context.Context, projectID, runID string, outcome project.Outcome) (project.Run, project.Project, error) {
	var (
		final   project.Run
		current project.Project
	)
	err := l.projects.Mutate(ctx, func(projects []project.Project) ([]project.Project, error) {
		out, err := project.CompleteRun(projects, projectID, runID, outcome)
		if err != nil {
			return nil, err
		}
		current, _ = project.Find(out, projectID)
		for _, r := range current.Runs {
			if r.ID == runID {
				final = r
				break
			}
		}
		return out, nil
	})
	return final, current, err
}

func (l *Lifecycle) deliver(ctx context.Context, proj project.Project, r project.Run) {
	if l.wiki != nil && proj.WikiURL != "" {
		err := l.wiki.Publish(ctx, WikiEntry{
			WikiURL:     proj.WikiURL,
			TableTitle:  proj.WikiTableTitle,
			ProjectName: proj.Name,
			Date:        r.Date,
			Summary:     r.Summary,
			ActionItems: r.ActionItems,
		})
		if err != nil {
			l.deliveryFailed(ctx, proj.ID, r.ID, "wiki", err)
		}
	}
	if l.slack != nil && proj.SlackChannel != "" {
		err := l.slack.Notify(ctx, SlackMessage{
			Channel:  proj.SlackChannel,
			Template: proj.SlackMessageTemplate,
			Project:  proj.Name,
			Date:     r.Date,
			Summary:  r.Summary,
		})
		if err != nil {
			l.deliveryFailed(ctx, proj.ID, r.ID, "slack", err)
		}
	}
}

func (l *Lifecycle) deliveryFailed(ctx context.Context, projectID, runID, target string, err error) {
	l.logger.Warn("delivery failed", "target", target, "project_id", projectID, "run_id", runID, "error", err)
	l.notify(ctx, &activity.ActivityEntry{
		ProjectID:    projectID,
		RunID:        &runID,
		ActivityType: activity.TypeDeliveryFailed,
		Summary:      fmt.Sprintf("Could not deliver results to %s", target),
		Details:      err.Error(),
	})
}

func (l *Lifecycle) notify(ctx context.Context, entry *activity.ActivityEntry) {
	if l.activity == nil {
		return
	}
	if err := l.activity.LogActivity(ctx, entry); err != nil {
		l.logger.Warn("failed to log activity", "type", entry.ActivityType, "error", err)
	}
}
