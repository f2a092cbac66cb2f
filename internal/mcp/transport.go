// Package mcp serves the date context resolver over the Model Context Protocol.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/tripline/server/internal/api/middleware"
	"github.com/tripline/server/internal/config"
)

// TransportType represents the available MCP transport protocols.
type TransportType string

const (
	// TransportStdio is for desktop clients and local tools.
	TransportStdio TransportType = "stdio"
	// TransportSSE is the legacy Server-Sent Events transport.
	TransportSSE TransportType = "sse"
	// TransportHTTP is Streamable HTTP.
	TransportHTTP TransportType = "http"
)

// GracefulShutdownTimeout bounds how long in-flight HTTP sessions may run after cancellation.
const GracefulShutdownTimeout = 30 * time.Second

// Serve runs the configured transport until ctx is cancelled or the transport fails.
// stdin and stdout are only used by the stdio transport.
func Serve(ctx context.Context, mcpServer *server.MCPServer, cfg config.MCPConfig, rateLimit config.RateLimitConfig, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	switch TransportType(cfg.Transport) {
	case TransportStdio:
		return serveStdio(ctx, mcpServer, stdin, stdout, logger)
	case TransportSSE:
		return serveHTTP(ctx, server.NewSSEServer(mcpServer), cfg, rateLimit, logger.With().Str("transport", "sse").Logger())
	case TransportHTTP:
		return serveHTTP(ctx, server.NewStreamableHTTPServer(mcpServer), cfg, rateLimit, logger.With().Str("transport", "http").Logger())
	default:
		return fmt.Errorf("unsupported transport type: %q", cfg.Transport)
	}
}

func serveStdio(ctx context.Context, mcpServer *server.MCPServer, stdin io.Reader, stdout io.Writer, logger zerolog.Logger) error {
	logger.Info().Str("transport", "stdio").Msg("starting MCP server")

	err := server.NewStdioServer(mcpServer).Listen(ctx, stdin, stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio server: %w", err)
	}
	logger.Info().Msg("stdio server stopped")
	return nil
}

func serveHTTP(ctx context.Context, handler http.Handler, cfg config.MCPConfig, rateLimit config.RateLimitConfig, logger zerolog.Logger) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           WrapHandler(handler, rateLimit),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info().Str("addr", addr).Msg("MCP server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), GracefulShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("MCP server shutdown: %w", err)
		}
		logger.Info().Msg("MCP server shutdown complete")
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("MCP server: %w", err)
		}
		return nil
	}
}

// WrapHandler applies the MCP rate-limit tier to an MCP HTTP handler. The tier
// is set before the limiter so MCP clients get their own bucket.
func WrapHandler(handler http.Handler, rateLimit config.RateLimitConfig) http.Handler {
	return middleware.WithRateLimitTierHandler(middleware.TierMCP)(middleware.RateLimit(rateLimit)(handler))
}

// NewStreamableHTTPHandler creates a streamable HTTP MCP handler for embedding in the API router.
func NewStreamableHTTPHandler(mcpServer *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(mcpServer)
}
