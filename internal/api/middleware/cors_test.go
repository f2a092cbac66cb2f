package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/tripline/server/internal/config"
)

func corsRequest(method, origin string) *http.Request {
	req := httptest.NewRequest(method, "/api/v1/date-context", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestCORS_AllowAllOrigins(t *testing.T) {
	handler := CORS(config.CORSConfig{AllowAllOrigins: true}, zerolog.Nop())(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, corsRequest(http.MethodPost, "http://localhost:3000"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))
}

func TestCORS_AllowedOrigin(t *testing.T) {
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://chat.tripline.dev/"}}
	handler := CORS(cfg, zerolog.Nop())(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, corsRequest(http.MethodPost, "https://chat.tripline.dev"))

	assert.Equal(t, "https://chat.tripline.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Expose-Headers"), "X-Request-ID")
}

func TestCORS_BlockedOriginIsLogged(t *testing.T) {
	var buf bytes.Buffer
	cfg := config.CORSConfig{AllowedOrigins: []string{"https://chat.tripline.dev"}}
	handler := CORS(cfg, zerolog.New(&buf))(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, corsRequest(http.MethodPost, "https://evil.example.com"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, buf.String(), "origin not allowed")
	assert.Contains(t, buf.String(), "https://evil.example.com")
}

func TestCORS_NoOriginHeader(t *testing.T) {
	handler := CORS(config.CORSConfig{}, zerolog.Nop())(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, corsRequest(http.MethodPost, ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PreflightRequest(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	handler := CORS(config.CORSConfig{AllowAllOrigins: true}, zerolog.Nop())(next)

	req := corsRequest(http.MethodOptions, "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, called)
	assert.Equal(t, "GET, POST, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
}
