// Package app assembles the stores, services and surfaces from configuration.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rpggio/meetflow/internal/config"
	"github.com/rpggio/meetflow/internal/domain/activity"
	"github.com/rpggio/meetflow/internal/domain/project"
	"github.com/rpggio/meetflow/internal/domain/run"
	"github.com/rpggio/meetflow/internal/filestore"
	"github.com/rpggio/meetflow/internal/integration/sample"
	"github.com/rpggio/meetflow/internal/mcp"
	"github.com/rpggio/meetflow/internal/metrics"
	"github.com/rpggio/meetflow/internal/repository"
	"github.com/rpggio/meetflow/internal/sqlite"
	"github.com/rpggio/meetflow/internal/transport"
	"github.com/spf13/afero"
)

// Version is reported by the MCP server and the CLI.
const Version = "0.1.0"

// activityDBName is the activity log database used alongside a file store.
const activityDBName = "activity.db"

// App holds the wired services.
type App struct {
	Projects *project.Service
	Activity *activity.Service
	Runs     *run.Lifecycle
	Metrics  *metrics.Collector
	Registry *prometheus.Registry
	DB       *sqlite.DB

	logger *slog.Logger
}

// Option customizes assembly.
type Option func(*options)

type options struct {
	fs         afero.Fs
	summarizer run.Summarizer
	registry   *prometheus.Registry
}

// WithFs sets the filesystem used by the file store driver.
func WithFs(fsys afero.Fs) Option {
	return func(o *options) { o.fs = fsys }
}

// WithSummarizer replaces the simulated summarizer.
func WithSummarizer(s run.Summarizer) Option {
	return func(o *options) { o.summarizer = s }
}

// WithRegistry registers metrics on reg instead of a fresh registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(o *options) { o.registry = reg }
}

// New opens the configured store and wires every service.
func New(cfg config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.summarizer == nil {
		o.summarizer = sample.Summarizer{Delay: cfg.Run.ProcessingDelay}
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
		o.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	db, store, err := openStore(cfg.Store, o.fs, logger)
	if err != nil {
		return nil, err
	}

	collector := metrics.New(o.registry)
	var activityRepo repository.ActivityRepository = sqlite.NewActivityRepository(db)
	activitySvc := activity.NewService(activityRepo, logger)
	projectSvc := project.NewService(store, logger,
		project.WithActivity(activitySvc),
		project.WithRecorder(collector),
	)
	lifecycle := run.NewLifecycle(run.Config{
		Projects:   projectSvc,
		Source:     sample.TranscriptSource{},
		Summarizer: o.summarizer,
		Wiki:       sample.WikiPublisher{Logger: logger},
		Slack:      sample.SlackNotifier{Logger: logger},
		Activity:   activitySvc,
		Recorder:   collector,
		Timeout:    cfg.Run.Timeout,
		Logger:     logger,
	})

	return &App{
		Projects: projectSvc,
		Activity: activitySvc,
		Runs:     lifecycle,
		Metrics:  collector,
		Registry: o.registry,
		DB:       db,
		logger:   logger,
	}, nil
}

func openStore(cfg config.StoreConfig, fsys afero.Fs, logger *slog.Logger) (*sqlite.DB, repository.ProjectStore, error) {
	dbPath := cfg.Path
	if cfg.Driver == config.DriverFile {
		if err := fsys.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, nil, fmt.Errorf("prepare store directory: %w", err)
		}
		dbPath = filepath.Join(cfg.Path, activityDBName)
		if _, ok := fsys.(*afero.MemMapFs); ok {
			dbPath = ":memory:"
		}
	}

	if err := ensureDBDir(dbPath); err != nil {
		return nil, nil, fmt.Errorf("prepare database path: %w", err)
	}
	db, err := sqlite.New(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	switch cfg.Driver {
	case config.DriverFile:
		return db, filestore.New(fsys, cfg.Path, logger), nil
	default:
		return db, sqlite.NewProjectStore(db, logger), nil
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// MCPServer builds the MCP server over the app's services.
func (a *App) MCPServer(mode string) *sdkmcp.Server {
	return mcp.NewServer(mcp.Config{
		Services: mcp.Services{
			Projects: a.Projects,
			Runs:     a.Runs,
			Activity: a.Activity,
		},
		TransportMode: mode,
		Version:       Version,
		Logger:        a.logger,
	})
}

// Router builds the HTTP router: REST, /health, /metrics and, when server is
// non-nil, MCP over streamable HTTP at /mcp.
func (a *App) Router(server *sdkmcp.Server) http.Handler {
	opts := transport.Options{
		Metrics:    promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		Middleware: []func(http.Handler) http.Handler{a.Metrics.Middleware},
		Logger:     a.logger,
	}
	if server != nil {
		opts.MCP = sdkmcp.NewStreamableHTTPHandler(
			func(*http.Request) *sdkmcp.Server { return server },
			&sdkmcp.StreamableHTTPOptions{SessionTimeout: 30 * time.Minute},
		)
	}
	return transport.NewServer(transport.Services{
		Projects: a.Projects,
		Runs:     a.Runs,
		Activity: a.Activity,
	}, opts)
}

// Close waits for in-flight runs and closes the database.
func (a *App) Close() error {
	a.Runs.Wait()
	var errs []error
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	return errors.Join(errs...)
}
