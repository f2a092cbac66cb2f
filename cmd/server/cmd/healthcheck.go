package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tripline/server/internal/api/handlers"
)

// HealthResponse matches the body served by GET /health.
type HealthResponse struct {
	Status string                          `json:"status"`
	Checks map[string]handlers.CheckResult `json:"checks,omitempty"`
}

// HealthCheckResult is the outcome of one probe.
type HealthCheckResult struct {
	URL       string
	Status    string
	IsHealthy bool
	LatencyMs int64
	Error     string
	// invalid is set when the server answered with something that is not a health report.
	invalid bool
}

func newHealthcheckCommand() *cobra.Command {
	var (
		timeout time.Duration
		url     string
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Check if the server is healthy",
		Long: `Performs a health check by calling the /health endpoint.

This command is used by Docker HEALTHCHECK to monitor container health.
It exits with code 0 if the server is healthy, non-zero otherwise.
A degraded server (language model disabled) is reported as unhealthy.

Exit codes:
  0 - Server is healthy
  1 - Server is unhealthy or unreachable
  2 - Invalid response from server`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if url == "" {
				url = defaultHealthURL()
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result := performHealthCheck(ctx, url)
			if result.invalid {
				return &exitError{code: 2, err: fmt.Errorf("invalid health response: %s", result.Error)}
			}
			if result.Error != "" {
				return fmt.Errorf("health check failed: %s", result.Error)
			}
			if !result.IsHealthy {
				return fmt.Errorf("server status: %s", result.Status)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%dms)\n", result.Status, result.LatencyMs)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "request timeout")
	cmd.Flags().StringVar(&url, "url", "", "health check URL (default: http://localhost:{SERVER_PORT}/health)")
	return cmd
}

func defaultHealthURL() string {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}
	return fmt.Sprintf("http://localhost:%s/health", port)
}

// performHealthCheck probes url once. The deadline comes from ctx.
func performHealthCheck(ctx context.Context, url string) HealthCheckResult {
	result := HealthCheckResult{URL: url}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	result.LatencyMs = time.Since(start).Milliseconds()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		result.Error = fmt.Sprintf("decode response (status %d): %v", resp.StatusCode, err)
		result.invalid = true
		return result
	}

	result.Status = health.Status
	result.IsHealthy = resp.StatusCode == http.StatusOK && health.Status == "healthy"
	return result
}
