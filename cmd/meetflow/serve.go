package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/meetflow/internal/app"
	"github.com/rpggio/meetflow/internal/config"
	"github.com/spf13/cobra"
)

func newServeCmd(c *cli) *cobra.Command {
	var (
		mode string
		port int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdio, or MCP plus the REST API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if mode != "" {
				c.cfg.Transport.Mode = mode
			}
			if port != 0 {
				c.cfg.Server.Port = port
			}
			if err := c.cfg.Validate(); err != nil {
				return err
			}

			a, err := c.open()
			if err != nil {
				return err
			}
			defer func() {
				if err := a.Close(); err != nil {
					c.logger.Error("failed to close", "error", err)
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mcpServer := a.MCPServer(c.cfg.Transport.Mode)
			if c.cfg.Transport.Mode == config.ModeStdio {
				return runStdioMode(ctx, c.logger, mcpServer)
			}
			return runHTTPMode(ctx, c.logger, a, mcpServer, c.cfg.Server.Addr())
		},
	}
	cmd.Flags().StringVarP(&mode, "transport", "t", "", "transport mode: stdio or http")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP listen port")
	return cmd
}

func runStdioMode(ctx context.Context, logger *slog.Logger, mcpServer *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or the context is canceled.
	if err := mcpServer.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

func runHTTPMode(ctx context.Context, logger *slog.Logger, a *app.App, mcpServer *sdkmcp.Server, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           a.Router(mcpServer),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
