package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/domain/run"
)

type toolHandlers struct {
	services Services
	logger   *slog.Logger
}

func registerTools(server *sdkmcp.Server, services Services, logger *slog.Logger) {
	h := &toolHandlers{services: services, logger: logger}

	// Projects
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "create_project",
		Description: "Create a meeting automation project",
	}, h.createProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "list_projects",
		Description: "List all projects with their latest run status",
	}, h.listProjects)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_project",
		Description: "Get a project including its full run history",
	}, h.getProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "update_project",
		Description: "Update a project's settings; omitted fields are left unchanged",
	}, h.updateProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "delete_project",
		Description: "Delete a project and its run history",
	}, h.deleteProject)

	// Runs
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "run_project",
		Description: "Start processing the project's meeting into a summary and action items",
	}, h.runProject)
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_run_history",
		Description: "List a project's runs, newest first",
	}, h.getRunHistory)

	// Activity
	sdkmcp.AddTool(server, &sdkmcp.Tool{
		Name:        "get_recent_activity",
		Description: "List recent activity, optionally filtered by project, run or type",
	}, h.getRecentActivity)
}

func (h *toolHandlers) createProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in CreateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	proj, err := h.services.Projects.Create(ctx, project.CreateRequest{
		ID:                   in.ID,
		Name:                 in.Name,
		MeetingURL:           in.MeetingURL,
		Prompt:               in.Prompt,
		WikiURL:              in.WikiURL,
		WikiTableTitle:       in.WikiTableTitle,
		SlackChannel:         in.SlackChannel,
		SlackMessageTemplate: in.SlackMessageTemplate,
	})
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(proj)
}

func (h *toolHandlers) listProjects(ctx context.Context, _ *sdkmcp.CallToolRequest, _ ListProjectsParams) (*sdkmcp.CallToolResult, any, error) {
	summaries, err := h.services.Projects.Summaries(ctx)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(ProjectListResponse{Projects: summaries})
}

func (h *toolHandlers) getProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetProjectParams) (*sdkmcp.CallToolResult, any, error) {
	proj, err := h.services.Projects.Get(ctx, in.ID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(proj)
}

func (h *toolHandlers) updateProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in UpdateProjectParams) (*sdkmcp.CallToolResult, any, error) {
	proj, err := h.services.Projects.Update(ctx, in.ID, in.edit())
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(proj)
}

func (h *toolHandlers) deleteProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in DeleteProjectParams) (*sdkmcp.CallToolResult, any, error) {
	if err := h.services.Projects.Delete(ctx, in.ID); err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(DeleteProjectResponse{ID: in.ID, Deleted: true})
}

func (h *toolHandlers) runProject(ctx context.Context, _ *sdkmcp.CallToolRequest, in RunProjectParams) (*sdkmcp.CallToolResult, any, error) {
	handle, err := h.services.Runs.Start(ctx, in.ProjectID, run.StartRequest{
		MeetingURL: in.MeetingURL,
		CallName:   in.CallName,
	})
	if err != nil {
		return nil, nil, toolError(err)
	}

	resp := RunResponse{ProjectID: in.ProjectID, Run: handle.Run}
	if in.Wait {
		final, err := handle.Wait(ctx)
		switch {
		case errors.Is(err, run.ErrDiscarded):
			h.logger.Info("run discarded while waiting", "project_id", in.ProjectID, "run_id", handle.Run.ID)
			resp.Discarded = true
		case err != nil:
			return nil, nil, fmt.Errorf("waiting for run %s: %w", handle.Run.ID, err)
		default:
			resp.Run = final
		}
	}
	return jsonResult(resp)
}

func (h *toolHandlers) getRunHistory(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRunHistoryParams) (*sdkmcp.CallToolResult, any, error) {
	runs, err := h.services.Projects.Runs(ctx, in.ProjectID)
	if err != nil {
		return nil, nil, toolError(err)
	}
	if in.Limit > 0 && len(runs) > in.Limit {
		runs = runs[:in.Limit]
	}
	return jsonResult(RunHistoryResponse{ProjectID: in.ProjectID, Runs: runs})
}

func (h *toolHandlers) getRecentActivity(ctx context.Context, _ *sdkmcp.CallToolRequest, in GetRecentActivityParams) (*sdkmcp.CallToolResult, any, error) {
	entries, err := h.services.Activity.GetRecentActivity(ctx, in.options())
	if err != nil {
		return nil, nil, toolError(err)
	}
	return jsonResult(ActivityResponse{Entries: entries})
}

// jsonResult renders v as the tool's text content.
func jsonResult(v any) (*sdkmcp.CallToolResult, any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode result: %w", err)
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(data)}},
	}, nil, nil
}
