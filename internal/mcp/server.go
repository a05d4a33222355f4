package mcp

import (
	"context"
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/domain/run"
)

// ProjectService defines project operations needed by MCP.
type ProjectService interface {
	Create(ctx context.Context, req project.CreateRequest) (*project.Project, error)
	List(ctx context.Context) ([]project.Project, error)
	Summaries(ctx context.Context) ([]project.Summary, error)
	Get(ctx context.Context, id string) (*project.Project, error)
	Update(ctx context.Context, id string, edit project.Edit) (*project.Project, error)
	Delete(ctx context.Context, id string) error
	Runs(ctx context.Context, id string) ([]project.Run, error)
}

// RunService defines run operations needed by MCP.
type RunService interface {
	Start(ctx context.Context, projectID string, req run.StartRequest) (*run.Handle, error)
}

// ActivityService defines activity operations needed by MCP.
type ActivityService interface {
	GetRecentActivity(ctx context.Context, opts activity.ListActivityOptions) ([]activity.ActivityEntry, error)
}

// Services contains all domain services needed by MCP.
type Services struct {
	Projects ProjectService
	Runs     RunService
	Activity ActivityService
}

// Config contains server configuration.
type Config struct {
	Services      Services
	TransportMode string // "stdio" or "http"
	Version       string
	Logger        *slog.Logger
}

// NewServer creates and configures an MCP server with all tools and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	version := cfg.Version
	if version == "" {
		version = "0.1.0"
	}

	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "meetflow",
		Version: version,
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(logger, "outbound"))

	registerTools(server, cfg.Services, logger)

	logger.Debug("mcp server configured", "transport", cfg.TransportMode)
	return server
}
