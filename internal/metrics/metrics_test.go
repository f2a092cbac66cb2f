package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestInit(t *testing.T) {
	// Init must be callable repeatedly (serve and tests both call it)
	Init("v1.0.0", "abc123", "2026-01-30")
	Init("v1.0.0", "abc123", "2026-01-30")

	// Verify app_info metric exists
	if testutil.CollectAndCount(AppInfo) == 0 {
		t.Error("AppInfo metric should be registered")
	}

	if _, err := Registry.Gather(); err != nil {
		t.Errorf("Registry should gather cleanly: %v", err)
	}
}

func TestHTTPMiddleware(t *testing.T) {
	// Create a test handler
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Wrap with metrics middleware
	wrapped := HTTPMiddleware(handler)

	// Create test request
	req := httptest.NewRequest("GET", "/test", nil)
	rec := httptest.NewRecorder()

	// Execute request
	wrapped.ServeHTTP(rec, req)

	// Verify response
	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	// Verify metrics were recorded
	if testutil.CollectAndCount(HTTPRequestsTotal) == 0 {
		t.Error("HTTPRequestsTotal should have recorded at least one request")
	}

	if testutil.CollectAndCount(HTTPRequestDuration) == 0 {
		t.Error("HTTPRequestDuration should have recorded at least one request")
	}
}

func TestHTTPMiddlewareStatusCodes(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
	}{
		{"OK", http.StatusOK},
		{"Not Found", http.StatusNotFound},
		{"Internal Server Error", http.StatusInternalServerError},
		{"Unauthorized", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			})

			wrapped := HTTPMiddleware(handler)
			req := httptest.NewRequest("GET", "/test", nil)
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != tt.statusCode {
				t.Errorf("Expected status %d, got %d", tt.statusCode, rec.Code)
			}
		})
	}
}

func TestDateContextMetricsRecord(t *testing.T) {
	before := testutil.ToFloat64(DateContextResolutionsTotal.WithLabelValues("fallback", "corrected"))

	DateContextResolutionsTotal.WithLabelValues("fallback", "corrected").Inc()

	after := testutil.ToFloat64(DateContextResolutionsTotal.WithLabelValues("fallback", "corrected"))
	if after != before+1 {
		t.Errorf("Expected counter to increase by 1, got %v -> %v", before, after)
	}

	DateContextExtractionDuration.WithLabelValues("primary", "success").Observe(0.002)
	if testutil.CollectAndCount(DateContextExtractionDuration) == 0 {
		t.Error("DateContextExtractionDuration should have recorded at least one observation")
	}
}

func TestRouteLabelUsesPattern(t *testing.T) {
	mux := http.NewServeMux()
	var got string
	mux.HandleFunc("GET /api/v1/things/{id}", func(w http.ResponseWriter, r *http.Request) {
		got = routeLabel(r)
	})

	req := httptest.NewRequest("GET", "/api/v1/things/42", nil)
	mux.ServeHTTP(httptest.NewRecorder(), req)

	if got != "/api/v1/things/{param}" {
		t.Errorf("Expected normalized pattern, got %q", got)
	}

	if label := routeLabel(httptest.NewRequest("GET", "/nowhere", nil)); label != "unmatched" {
		t.Errorf("Expected unmatched label for unrouted request, got %q", label)
	}
}

func TestResponseWriterStatusCode(t *testing.T) {
	// Test that default status code is 200 when WriteHeader is not called
	rec := httptest.NewRecorder()
	rw := &responseWriter{
		ResponseWriter: rec,
		statusCode:     0,
		bytesWritten:   0,
	}

	_, _ = rw.Write([]byte("test"))

	if rw.statusCode != http.StatusOK {
		t.Errorf("Expected status code 200, got %d", rw.statusCode)
	}
}

func TestResponseWriterBytesWritten(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{
		ResponseWriter: rec,
		statusCode:     0,
		bytesWritten:   0,
	}

	content := []byte("Hello, World!")
	_, _ = rw.Write(content)

	if rw.bytesWritten != len(content) {
		t.Errorf("Expected %d bytes written, got %d", len(content), rw.bytesWritten)
	}
}
