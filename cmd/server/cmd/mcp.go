package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tripline/server/internal/config"
	"github.com/tripline/server/internal/mcp"
	"github.com/tripline/server/internal/metrics"
	"github.com/tripline/server/internal/telemetry"
)

func newMCPCommand(opts *globalOptions) *cobra.Command {
	var transport string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server exposing resolve_date_context",
		Long: `Run a Model Context Protocol server exposing the resolve_date_context tool,
the server info and resolver config resources, and the scope_trip_search prompt.

Transports:
  stdio  newline-delimited JSON-RPC on stdin/stdout (default)
  sse    legacy Server-Sent Events on MCP_HOST:MCP_PORT
  http   streamable HTTP on MCP_HOST:MCP_PORT

Logs always go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMCP(cmd.Context(), opts, transport, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&transport, "transport", "", "transport: stdio, sse or http (default: MCP_TRANSPORT or stdio)")
	return cmd
}

func runMCP(ctx context.Context, opts *globalOptions, transport string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if transport != "" {
		cfg.MCP.Transport = transport
	}

	// stdout carries protocol frames on stdio.
	logger := config.NewLoggerWithWriter(cfg.Logging, stderr)
	log.Logger = logger

	metrics.Init(Version, GitCommit, BuildDate)
	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Tracing, Version, stderr)
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
	server := mcp.NewServer(mcp.Config{
		Name:      cfg.MCP.Name,
		Version:   Version,
		Transport: cfg.MCP.Transport,
		Timezone:  resolver.Timezone(),
	}, resolver)

	logger.Info().
		Str("transport", cfg.MCP.Transport).
		Str("mcp_name", cfg.MCP.Name).
		Str("timezone", resolver.Timezone()).
		Msg("starting MCP server")

	return mcp.Serve(ctx, server.MCPServer(), cfg.MCP, cfg.RateLimit, stdin, stdout, logger)
}
