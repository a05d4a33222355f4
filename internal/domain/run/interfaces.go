package run

import (
	"context"
	"time"

	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
)

// Projects provides the serialized collection access used by the lifecycle.
type Projects interface {
	Mutate(ctx context.Context, fn func([]project.Project) ([]project.Project, error)) error
}

// TranscriptSource resolves a meeting URL to a transcript.
type TranscriptSource interface {
	Fetch(ctx context.Context, meetingURL string) (Transcript, error)
}

// Summarizer turns a transcript and prompt into a summary with action items.
type Summarizer interface {
	Summarize(ctx context.Context, transcript Transcript, prompt string) (Result, error)
}

// WikiPublisher appends a run's output to a wiki table.
type WikiPublisher interface {
	Publish(ctx context.Context, entry WikiEntry) error
}

// SlackNotifier posts a run's summary to a channel.
type SlackNotifier interface {
	Notify(ctx context.Context, msg SlackMessage) error
}

// ActivityLogger receives run outcome notifications.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// Recorder observes run counts and durations.
type Recorder interface {
	RunStarted()
	RunFinished(status project.RunStatus, elapsed time.Duration)
}
