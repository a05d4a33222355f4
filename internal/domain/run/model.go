package run

import (
	"time"

	"github.com/rpggio/meetflow/internal/domain/project"
)

// Transcript references the recording or text of one meeting.
type Transcript struct {
	MeetingURL string
	Reference  string
	Text       string
}

// Result is what a summarizer produces for one meeting.
type Result struct {
	Summary     string
	ActionItems []project.ActionItem
}

// WikiEntry is one row appended to a project's wiki table.
type WikiEntry struct {
	WikiURL     string
	TableTitle  string
	ProjectName string
	Date        time.Time
	Summary     string
	ActionItems []project.ActionItem
}

// SlackMessage is a rendered channel notification.
type SlackMessage struct {
	Channel  string
	Template string
	Project  string
	Date     time.Time
	Summary  string
}

// StartRequest defines run inputs.
type StartRequest struct {
	// MeetingURL, when set, replaces the project's meeting URL before the run.
	MeetingURL string
	CallName   string
}
