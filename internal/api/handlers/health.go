package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/tripline/server/internal/metrics"
)

// HealthCheck is the /health response body.
type HealthCheck struct {
	Status    string                 `json:"status"`
	Version   string                 `json:"version"`
	GitCommit string                 `json:"git_commit"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp string                 `json:"timestamp"`
}

// CheckResult is the result of a single health check.
type CheckResult struct {
	Status  string         `json:"status"` // pass|warn|fail
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthChecker reports whether the date context pipeline can serve requests.
type HealthChecker struct {
	timezone     string
	modelEnabled bool
	model        string
	version      string
	gitCommit    string
	now          func() time.Time
}

func NewHealthChecker(timezone string, modelEnabled bool, model, version, gitCommit string) *HealthChecker {
	return &HealthChecker{
		timezone:     timezone,
		modelEnabled: modelEnabled,
		model:        model,
		version:      version,
		gitCommit:    gitCommit,
		now:          time.Now,
	}
}

// Health runs every check. Any fail answers 503; warns degrade the status only.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
			return
		default:
		}

		checks := map[string]CheckResult{
			"timezone":       h.checkTimezone(),
			"language_model": h.checkModel(),
		}

		overall := "healthy"
		status := http.StatusOK
		for name, check := range checks {
			metrics.HealthCheckStatus.WithLabelValues(name).Set(checkValue(check.Status))
			switch check.Status {
			case "fail":
				overall = "unhealthy"
				status = http.StatusServiceUnavailable
			case "warn":
				if overall == "healthy" {
					overall = "degraded"
				}
			}
		}

		WriteJSON(w, status, HealthCheck{
			Status:    overall,
			Version:   h.version,
			GitCommit: h.gitCommit,
			Checks:    checks,
			Timestamp: h.now().UTC().Format(time.RFC3339),
		})
	}
}

func (h *HealthChecker) checkTimezone() CheckResult {
	loc, err := time.LoadLocation(h.timezone)
	if err != nil || h.timezone == "" {
		return CheckResult{
			Status:  "fail",
			Message: "Configured timezone cannot be loaded",
			Details: map[string]any{
				"timezone":    h.timezone,
				"remediation": "Set DATECONTEXT_TIMEZONE to an IANA zone name",
			},
		}
	}
	return CheckResult{
		Status:  "pass",
		Message: "Timezone loaded",
		Details: map[string]any{
			"timezone":   h.timezone,
			"local_time": h.now().In(loc).Format(time.RFC3339),
		},
	}
}

func (h *HealthChecker) checkModel() CheckResult {
	if !h.modelEnabled {
		return CheckResult{
			Status:  "warn",
			Message: "Language model disabled; ambiguous phrases use the regex fallback",
			Details: map[string]any{
				"remediation": "Set ANTHROPIC_API_KEY to enable the model pass",
			},
		}
	}
	return CheckResult{
		Status:  "pass",
		Message: "Language model configured",
		Details: map[string]any{"model": h.model},
	}
}

func checkValue(status string) float64 {
	switch status {
	case "pass":
		return 2
	case "warn":
		return 1
	default:
		return 0
	}
}

// Healthz is the liveness probe.
func Healthz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ok")
	})
}

// Readyz is the readiness probe. The resolver has no external dependency it
// must wait for, so readiness only reflects that the process is serving.
func Readyz() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondHealth(w, http.StatusOK, "ready")
	})
}

type healthResponse struct {
	Status string `json:"status"`
}

func respondHealth(w http.ResponseWriter, status int, value string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(healthResponse{Status: value})
}
