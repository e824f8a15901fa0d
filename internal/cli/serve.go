package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"apimatic-validator-mcp/internal/application"
	"apimatic-validator-mcp/internal/domain"
	"apimatic-validator-mcp/internal/telemetry"
)

const defaultShutdownTimeout = 30 * time.Second

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin and stdout",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	cmd.Flags().Duration("shutdown-timeout", defaultShutdownTimeout, "Time allowed for in-flight validations after a shutdown signal")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The root command serves without declaring the flag.
	shutdownTimeout := defaultShutdownTimeout
	if d, err := cmd.Flags().GetDuration("shutdown-timeout"); err == nil {
		shutdownTimeout = d
	}

	// stdout carries the protocol, so every log line goes to stderr.
	logger := application.NewStructuredLoggerWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level)

	if err := cfg.RequireAPIKey(); err != nil {
		logger.LogError("missing credentials", err, nil)
		return exitError(exitFailure, "%s", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("setting up telemetry: %w", err)
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.LogError("failed to flush telemetry", err, nil)
		}
	}()

	handler, err := newValidationHandler(cfg, logger)
	if err != nil {
		return err
	}

	router, err := application.NewRequestRouter(handler)
	if err != nil {
		return fmt.Errorf("creating router: %w", err)
	}

	transport := domain.NewStdioTransportWithIO(cmd.InOrStdin(), cmd.OutOrStdout())
	server := application.NewServer(transport, router, domain.NewResponseMapper(), logger)

	if err := server.Start(ctx); err != nil {
		return exitError(exitFailure, "%v", err)
	}

	logger.LogInfo("serving", map[string]interface{}{
		"base_url":   cfg.APIMatic.BaseURL,
		"tracing":    cfg.Telemetry.TracesEndpoint != "",
		"log_level":  cfg.Logging.Level,
		"tool_count": len(router.ListAllTools()),
	})

	select {
	case <-server.Done():
	case <-ctx.Done():
		logger.LogInfo("received shutdown signal", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	logger.LogInfo("server shutdown complete", nil)
	return nil
}
