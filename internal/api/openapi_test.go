package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAPIHandler(t *testing.T) {
	handler := OpenAPIHandler()

	tests := []struct {
		name         string
		method       string
		expectStatus int
	}{
		{name: "GET returns document", method: http.MethodGet, expectStatus: http.StatusOK},
		{name: "POST not allowed", method: http.MethodPost, expectStatus: http.StatusMethodNotAllowed},
		{name: "DELETE not allowed", method: http.MethodDelete, expectStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/openapi.json", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectStatus, w.Code)
			if tt.expectStatus == http.StatusOK {
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			}
		})
	}
}

func TestOpenAPIDocument_DescribesDateContext(t *testing.T) {
	doc, err := openAPIDocument()
	require.NoError(t, err)

	var parsed struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(doc, &parsed))

	assert.Equal(t, "3.1.0", parsed.OpenAPI)
	require.Contains(t, parsed.Paths, "/api/v1/date-context")
	assert.Contains(t, parsed.Paths["/api/v1/date-context"], "post")
}

func TestOpenAPIHandler_ConcurrentRequests(t *testing.T) {
	handler := OpenAPIHandler()

	var wg sync.WaitGroup
	bodies := make([]string, 10)
	for i := range bodies {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/openapi.json", nil))
			bodies[i] = w.Body.String()
		}(i)
	}
	wg.Wait()

	for _, body := range bodies[1:] {
		assert.Equal(t, bodies[0], body)
	}
}
