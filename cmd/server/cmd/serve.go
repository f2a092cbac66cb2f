package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tripline/server/internal/api"
	"github.com/tripline/server/internal/api/handlers"
	"github.com/tripline/server/internal/config"
	"github.com/tripline/server/internal/mcp"
	"github.com/tripline/server/internal/metrics"
	"github.com/tripline/server/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Routes:
  POST /api/v1/date-context   resolve the date context of a message
  GET  /health                detailed health report
  GET  /healthz, /readyz      liveness and readiness probes
  GET  /metrics               Prometheus metrics
  GET  /version               build information
  GET  /api/v1/openapi.json   API description
  /mcp                        MCP over streamable HTTP`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *globalOptions) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := config.NewLogger(cfg.Logging)
	metrics.Init(Version, GitCommit, BuildDate)

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version, nil)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Error().Err(err).Msg("tracing shutdown failed")
		}
	}()

	resolver := newResolver(cfg, logger)
	mcpServer := mcp.NewServer(mcp.Config{
		Name:      cfg.MCP.Name,
		Version:   Version,
		Transport: string(mcp.TransportHTTP),
		Timezone:  resolver.Timezone(),
	}, resolver)

	router := api.NewRouter(cfg, logger, api.RouterDeps{
		Resolver: resolver,
		Health:   handlers.NewHealthChecker(cfg.DateContext.Timezone, cfg.LLM.Enabled(), cfg.LLM.Model, Version, GitCommit),
		Build:    api.BuildInfo{Version: Version, GitCommit: GitCommit, BuildDate: BuildDate},
		MCP:      mcp.NewStreamableHTTPHandler(mcpServer.MCPServer()),
	})

	server := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second, // above the model timeout
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	logger.Info().
		Str("addr", server.Addr).
		Str("timezone", resolver.Timezone()).
		Bool("llm_enabled", cfg.LLM.Enabled()).
		Str("version", Version).
		Msg("starting date context server")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
