package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tripline/server/internal/api/handlers"
)

func TestPerformHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		responseBody   interface{}
		expectHealthy  bool
		expectError    bool
		expectedStatus string
	}{
		{
			name:       "healthy server",
			statusCode: http.StatusOK,
			responseBody: HealthResponse{
				Status: "healthy",
				Checks: map[string]handlers.CheckResult{
					"timezone":       {Status: "pass"},
					"language_model": {Status: "pass"},
				},
			},
			expectHealthy:  true,
			expectedStatus: "healthy",
		},
		{
			name:       "degraded server",
			statusCode: http.StatusOK,
			responseBody: HealthResponse{
				Status: "degraded",
				Checks: map[string]handlers.CheckResult{
					"timezone":       {Status: "pass"},
					"language_model": {Status: "warn"},
				},
			},
			expectHealthy:  false,
			expectedStatus: "degraded",
		},
		{
			name:           "unhealthy server (503)",
			statusCode:     http.StatusServiceUnavailable,
			responseBody:   HealthResponse{Status: "unhealthy"},
			expectHealthy:  false,
			expectedStatus: "unhealthy",
		},
		{
			name:          "invalid response",
			statusCode:    http.StatusOK,
			responseBody:  "not json",
			expectHealthy: false,
			expectError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if str, ok := tt.responseBody.(string); ok {
					fmt.Fprint(w, str)
				} else {
					_ = json.NewEncoder(w).Encode(tt.responseBody)
				}
			}))
			defer server.Close()

			result := performHealthCheck(context.Background(), server.URL)

			if result.IsHealthy != tt.expectHealthy {
				t.Errorf("expected IsHealthy=%v, got %v", tt.expectHealthy, result.IsHealthy)
			}
			if tt.expectError && result.Error == "" {
				t.Error("expected error, got none")
			}
			if !tt.expectError && result.Status != tt.expectedStatus {
				t.Errorf("expected status=%s, got %s", tt.expectedStatus, result.Status)
			}
			if result.LatencyMs < 0 {
				t.Error("expected non-negative latency")
			}
		})
	}
}

func TestPerformHealthCheckTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	result := performHealthCheck(ctx, server.URL)

	if result.Error == "" {
		t.Error("expected timeout error, got none")
	}
	if result.IsHealthy {
		t.Error("expected unhealthy result on timeout")
	}
}

func TestHealthcheckCommand(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  bool
		wantCode int
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status":"healthy"}`},
		{name: "degraded", status: http.StatusOK, body: `{"status":"degraded"}`, wantErr: true},
		{name: "garbage", status: http.StatusOK, body: `<html>`, wantErr: true, wantCode: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			output, err := runRoot(t, "healthcheck", "--url", server.URL+"/health", "--timeout", "2s")

			if tt.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v (output: %s)", err, tt.wantErr, output)
			}
			var exit *exitError
			if tt.wantCode != 0 {
				if !errors.As(err, &exit) || exit.code != tt.wantCode {
					t.Errorf("expected exit code %d, got %v", tt.wantCode, err)
				}
			} else if errors.As(err, &exit) {
				t.Errorf("unexpected exit code %d", exit.code)
			}
		})
	}
}

func TestDefaultHealthURL(t *testing.T) {
	t.Setenv("SERVER_PORT", "9191")
	if got := defaultHealthURL(); got != "http://localhost:9191/health" {
		t.Errorf("defaultHealthURL() = %q", got)
	}

	t.Setenv("SERVER_PORT", "")
	if got := defaultHealthURL(); got != "http://localhost:8080/health" {
		t.Errorf("defaultHealthURL() = %q", got)
	}
}
