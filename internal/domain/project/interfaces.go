package project

import (
	"context"

	"github.com/rpggio/meetflow/internal/domain/activity"
)

// Store persists the whole project collection as one unit.
type Store interface {
	LoadAll(ctx context.Context) ([]Project, error)
	SaveAll(ctx context.Context, projects []Project) error
}

// ActivityLogger receives outcome notifications.
type ActivityLogger interface {
	LogActivity(ctx context.Context, entry *activity.ActivityEntry) error
}

// Recorder counts project operations.
type Recorder interface {
	ProjectOperation(operation string, err error)
}
