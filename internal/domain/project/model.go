package project

import (
	"encoding/json"
	"time"
)

// RunStatus represents the lifecycle status of a run
type RunStatus string

const (
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// Terminal reports whether no further transitions are allowed from s.
func (s RunStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Project is a saved meeting automation configuration
type Project struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name" validate:"required"`
	MeetingURL           string    `json:"meetingUrl" validate:"required"`
	Prompt               string    `json:"prompt" validate:"required"`
	WikiURL              string    `json:"wikiUrl,omitempty"`
	WikiTableTitle       string    `json:"wikiTableTitle,omitempty"`
	SlackChannel         string    `json:"slackChannel,omitempty"`
	SlackMessageTemplate string    `json:"slackMessageTemplate,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
	Runs                 []Run     `json:"runs"`
}

// Run is one execution attempt of a project's workflow
type Run struct {
	ID          string       `json:"id"`
	Date        time.Time    `json:"date"`
	Status      RunStatus    `json:"status"`
	CallName    string       `json:"callName,omitempty"`
	MeetingURL  string       `json:"meetingUrl,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	ActionItems []ActionItem `json:"actionItems,omitempty"`
	Error       string       `json:"error,omitempty"`
	FinishedAt  *time.Time   `json:"finishedAt,omitempty"`
}

// ActionItem is a follow-up extracted from a meeting
type ActionItem struct {
	Item  string `json:"item"`
	Owner string `json:"owner"`
}

// Outcome is the terminal result applied to a processing run.
type Outcome struct {
	Status      RunStatus
	Summary     string
	ActionItems []ActionItem
	Error       string
	FinishedAt  time.Time
}

// Summary is the per-project view shown on a dashboard.
type Summary struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	MeetingURL      string     `json:"meetingUrl"`
	SlackChannel    string     `json:"slackChannel,omitempty"`
	TotalRuns       int        `json:"totalRuns"`
	CompletedRuns   int        `json:"completedRuns"`
	LatestRunStatus *RunStatus `json:"latestRunStatus,omitempty"`
	LatestSummary   string     `json:"latestSummary,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// LatestRun returns the newest run, if any.
func (p Project) LatestRun() (Run, bool) {
	if len(p.Runs) == 0 {
		return Run{}, false
	}
	return p.Runs[0], true
}

// Summarize builds the dashboard view of p.
func (p Project) Summarize() Summary {
	s := Summary{
		ID:           p.ID,
		Name:         p.Name,
		MeetingURL:   p.MeetingURL,
		SlackChannel: p.SlackChannel,
		TotalRuns:    len(p.Runs),
		CreatedAt:    p.CreatedAt,
	}
	for _, r := range p.Runs {
		if r.Status == StatusCompleted {
			s.CompletedRuns++
		}
	}
	if latest, ok := p.LatestRun(); ok {
		status := latest.Status
		s.LatestRunStatus = &status
		if latest.Status == StatusCompleted {
			s.LatestSummary = latest.Summary
		}
	}
	return s
}

// UnmarshalJSON accepts the legacy teamsUrl and slackMessage field names.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var aux struct {
		plain
		TeamsURL     string `json:"teamsUrl"`
		SlackMessage string `json:"slackMessage"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*p = Project(aux.plain)
	if p.MeetingURL == "" {
		p.MeetingURL = aux.TeamsURL
	}
	if p.SlackMessageTemplate == "" {
		p.SlackMessageTemplate = aux.SlackMessage
	}
	if p.Runs == nil {
		p.Runs = []Run{}
	}
	return nil
}
