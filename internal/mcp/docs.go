package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `meetflow turns recorded meetings into summaries and action items.

Core concepts:
- Project: a saved meeting automation (name, meeting_url, prompt, optional wiki and Slack targets).
- Run: one processing of a project's meeting. Status moves from processing to completed or failed, never back.

Workflow:
1) list_projects to see what exists, or create_project (name, meeting_url and prompt are required).
2) run_project to start a run. It returns immediately with a processing run unless wait=true.
3) get_run_history or get_recent_activity to follow progress.

Docs:
- meetflow://docs/index
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "meetflow://docs/index",
		Name:        "docs_index",
		Title:       "meetflow usage notes",
		Description: "Projects, runs, delivery targets and message templates.",
		Content: `# meetflow

## Projects

A project needs a name, a meeting URL and a summarization prompt. Empty or
whitespace-only values are rejected with INVALID_INPUT.

Optional targets:
- wiki_url + wiki_table_title: completed runs append a row to the wiki table.
- slack_channel + slack_message_template: completed runs post to the channel.

Templates support {{summary}}, {{project}} and {{date}}. An empty template posts
the summary alone.

## Runs

- run_project inserts a run with status "processing" at the head of the
  project's history and returns it.
- Processing takes a few seconds. The run then becomes "completed" (summary
  and action items set) or "failed" (error set).
- A project can have only one processing run at a time (RUN_IN_PROGRESS).
- Passing meeting_url to run_project updates the project's meeting URL first.
- Deleting a project while a run is processing discards the run.

## Activity

get_recent_activity lists what happened, newest first: project changes,
validation failures, run starts and outcomes, and delivery failures.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
