package activity

import "time"

// ActivityType represents the type of activity event
type ActivityType string

const (
	TypeProjectCreated   ActivityType = "project_created"
	TypeProjectUpdated   ActivityType = "project_updated"
	TypeProjectDeleted   ActivityType = "project_deleted"
	TypeValidationFailed ActivityType = "validation_failed"
	TypeRunStarted       ActivityType = "run_started"
	TypeRunCompleted     ActivityType = "run_completed"
	TypeRunFailed        ActivityType = "run_failed"
	TypeDeliveryFailed   ActivityType = "delivery_failed"
)

// ActivityEntry represents an event in the activity log
type ActivityEntry struct {
	ID           int64        `json:"id"`
	ProjectID    string       `json:"project_id,omitempty"`
	RunID        *string      `json:"run_id,omitempty"`
	ActivityType ActivityType `json:"type"`
	Summary      string       `json:"summary"`
	Details      string       `json:"details,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}
