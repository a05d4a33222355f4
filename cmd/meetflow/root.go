package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rpggio/meetflow/internal/app"
	"github.com/rpggio/meetflow/internal/config"
	"github.com/spf13/cobra"
)

// cli carries state shared by every subcommand.
type cli struct {
	configPath  string
	storeDriver string
	storePath   string
	logLevel    string

	cfg     config.Config
	logger  *slog.Logger
	logFile io.Closer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "meetflow",
		Short:         "Turn recorded meetings into summaries and action items",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if c.logFile != nil {
				return c.logFile.Close()
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&c.configPath, "config", "c", "", "config file (overrides MEETFLOW_CONFIG_PATH)")
	flags.StringVar(&c.storeDriver, "store-driver", "", "store driver: sqlite or file")
	flags.StringVar(&c.storePath, "store-path", "", "sqlite database file or file store directory")
	flags.StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newServeCmd(c),
		newProjectCmd(c),
		newRunCmd(c),
		newHistoryCmd(c),
		newActivityCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	if c.configPath != "" {
		if err := os.Setenv("MEETFLOW_CONFIG_PATH", c.configPath); err != nil {
			return err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.storeDriver != "" {
		cfg.Store.Driver = c.storeDriver
	}
	if c.storePath != "" {
		cfg.Store.Path = c.storePath
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	c.cfg = cfg

	// Logs never go to stdout: it carries JSON-RPC in stdio mode and command
	// output everywhere else.
	var logWriter io.Writer = cmd.ErrOrStderr()
	if logPath := os.Getenv("MEETFLOW_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "log file error: %v\n", err)
		} else {
			c.logFile = file
			logWriter = fileWriter
		}
	}
	c.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return nil
}

// open wires the services for one command invocation. Callers must Close the
// returned App, which also waits for runs started by the command.
func (c *cli) open() (*app.App, error) {
	return app.New(c.cfg, c.logger)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
