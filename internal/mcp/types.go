package mcp

import (
	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
)

type CreateProjectParams struct {
	ID                   string `json:"id,omitempty" jsonschema:"Unique project identifier (generated when omitted)"`
	Name                 string `json:"name" jsonschema:"Project display name"`
	MeetingURL           string `json:"meeting_url" jsonschema:"Meeting link, e.g. a Teams meeting URL"`
	Prompt               string `json:"prompt" jsonschema:"Instructions for summarizing the meeting"`
	WikiURL              string `json:"wiki_url,omitempty" jsonschema:"Wiki page that receives the results"`
	WikiTableTitle       string `json:"wiki_table_title,omitempty" jsonschema:"Title of the wiki table to append to"`
	SlackChannel         string `json:"slack_channel,omitempty" jsonschema:"Slack channel to notify"`
	SlackMessageTemplate string `json:"slack_message_template,omitempty" jsonschema:"Message template; supports {{summary}}, {{project}} and {{date}}"`
}

type ListProjectsParams struct{}

type GetProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID"`
}

type UpdateProjectParams struct {
	ID                   string  `json:"id" jsonschema:"Project ID"`
	Name                 *string `json:"name,omitempty" jsonschema:"New display name"`
	MeetingURL           *string `json:"meeting_url,omitempty" jsonschema:"New meeting link"`
	Prompt               *string `json:"prompt,omitempty" jsonschema:"New summarization prompt"`
	WikiURL              *string `json:"wiki_url,omitempty" jsonschema:"New wiki page"`
	WikiTableTitle       *string `json:"wiki_table_title,omitempty" jsonschema:"New wiki table title"`
	SlackChannel         *string `json:"slack_channel,omitempty" jsonschema:"New Slack channel"`
	SlackMessageTemplate *string `json:"slack_message_template,omitempty" jsonschema:"New Slack message template"`
}

type DeleteProjectParams struct {
	ID string `json:"id" jsonschema:"Project ID"`
}

type RunProjectParams struct {
	ProjectID  string `json:"project_id" jsonschema:"Project ID"`
	MeetingURL string `json:"meeting_url,omitempty" jsonschema:"Replaces the project's meeting link before running"`
	CallName   string `json:"call_name,omitempty" jsonschema:"Label for this call"`
	Wait       bool   `json:"wait,omitempty" jsonschema:"Block until the run finishes"`
}

type GetRunHistoryParams struct {
	ProjectID string `json:"project_id" jsonschema:"Project ID"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of runs, newest first"`
}

type GetRecentActivityParams struct {
	ProjectID string `json:"project_id,omitempty" jsonschema:"Project ID to filter by"`
	RunID     string `json:"run_id,omitempty" jsonschema:"Run ID to filter by"`
	Type      string `json:"type,omitempty" jsonschema:"Activity type to filter by"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of activity entries"`
	Offset    int    `json:"offset,omitempty" jsonschema:"Offset for pagination"`
}

type ProjectListResponse struct {
	Projects []project.Summary `json:"projects"`
}

type DeleteProjectResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type RunResponse struct {
	ProjectID string      `json:"project_id"`
	Run       project.Run `json:"run"`
	// Discarded is set when the project or run was deleted while processing.
	Discarded bool `json:"discarded,omitempty"`
}

type RunHistoryResponse struct {
	ProjectID string        `json:"project_id"`
	Runs      []project.Run `json:"runs"`
}

type ActivityResponse struct {
	Entries []activity.ActivityEntry `json:"entries"`
}

func (p UpdateProjectParams) edit() project.Edit {
	return project.Edit{
		Name:                 p.Name,
		MeetingURL:           p.MeetingURL,
		Prompt:               p.Prompt,
		WikiURL:              p.WikiURL,
		WikiTableTitle:       p.WikiTableTitle,
		SlackChannel:         p.SlackChannel,
		SlackMessageTemplate: p.SlackMessageTemplate,
	}
}

func (p GetRecentActivityParams) options() activity.ListActivityOptions {
	opts := activity.ListActivityOptions{ProjectID: p.ProjectID, Limit: p.Limit, Offset: p.Offset}
	if p.RunID != "" {
		opts.RunID = &p.RunID
	}
	if p.Type != "" {
		t := activity.ActivityType(p.Type)
		opts.ActivityType = &t
	}
	return opts
}
