package middleware

import (
	"fmt"
	"net/http"

	"github.com/tripline/server/internal/api/problem"
)

// DefaultMaxBodySize caps date context requests. A chat message is at most a
// few kilobytes of JSON.
const DefaultMaxBodySize int64 = 64 << 10

// RequestSize wraps the body in http.MaxBytesReader. Handlers that read past
// maxBytes get an *http.MaxBytesError and answer 413.
func RequestSize(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodySize
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Connection", "close")
				problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge, "Request body too large", nil, "",
					problem.WithDetail(fmt.Sprintf("request body exceeds %d bytes", maxBytes)))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
