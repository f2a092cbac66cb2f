package problem

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var body ProblemDetails
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWrite_DevIncludesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/date-context", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusBadRequest, TypeValidation, "Invalid request", errors.New("message is required"), "development")

	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, "message is required", body.Detail)
	assert.Equal(t, "/api/v1/date-context", body.Instance)
	assert.Equal(t, http.StatusBadRequest, body.Status)
}

func TestWrite_ProdSanitizesDetail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/v1/date-context", nil)
	rec := httptest.NewRecorder()

	Write(rec, req, http.StatusInternalServerError, "about:blank", "Internal error", errors.New("dial tcp 10.0.0.3:443"), "production")

	body := decode(t, rec)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), body.Detail)
}

func TestWrite_OptionsAndRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/date-context", nil)
	rec := httptest.NewRecorder()
	rec.Header().Set("X-Request-ID", "req-123")

	Write(rec, req, http.StatusBadRequest, TypeValidation, "Invalid request", nil, "production",
		WithDetail("message: must not be blank"),
		WithInstance("/custom"),
		WithErrors(map[string]any{"message": "must not be blank"}))

	body := decode(t, rec)
	assert.Equal(t, "req-123", body.RequestID)
	assert.Equal(t, "/custom", body.Instance)
	assert.Equal(t, "message: must not be blank", body.Detail)
	assert.Equal(t, "must not be blank", body.Errors["message"])
}

func TestWrite_LogLevelFollowsStatus(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{status: http.StatusBadRequest, level: `"level":"warn"`},
		{status: http.StatusServiceUnavailable, level: `"level":"error"`},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		logger := zerolog.New(&buf)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/date-context", nil)
		req = req.WithContext(logger.WithContext(req.Context()))

		Write(httptest.NewRecorder(), req, tt.status, "about:blank", "failed", errors.New("boom"), "test")

		assert.Contains(t, buf.String(), tt.level)
		assert.Contains(t, buf.String(), `"path":"/api/v1/date-context"`)
	}
}

func TestWrite_NoErrorNoLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/date-context", nil)
	req = req.WithContext(logger.WithContext(req.Context()))

	Write(httptest.NewRecorder(), req, http.StatusTooManyRequests, TypeRateLimited, "Too many requests", nil, "production")

	assert.Empty(t, buf.String())
}
