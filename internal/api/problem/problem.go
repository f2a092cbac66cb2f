// Package problem renders RFC 7807 problem details for API errors.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/problem+json"

// Problem type URIs served by the API.
const (
	TypeValidation      = "https://tripline.dev/problems/validation-error"
	TypePayloadTooLarge = "https://tripline.dev/problems/payload-too-large"
	TypeRateLimited     = "https://tripline.dev/problems/rate-limited"
)

type ProblemDetails struct {
	Type      string         `json:"type"`
	Title     string         `json:"title"`
	Status    int            `json:"status"`
	Detail    string         `json:"detail,omitempty"`
	Instance  string         `json:"instance,omitempty"`
	RequestID string         `json:"requestId,omitempty"`
	Errors    map[string]any `json:"errors,omitempty"`
}

type Option func(*ProblemDetails)

func WithDetail(detail string) Option {
	return func(p *ProblemDetails) {
		p.Detail = detail
	}
}

func WithInstance(instance string) Option {
	return func(p *ProblemDetails) {
		p.Instance = instance
	}
}

// WithErrors attaches per-field messages keyed by JSON field name.
func WithErrors(errs map[string]any) Option {
	return func(p *ProblemDetails) {
		p.Errors = errs
	}
}

// Write logs err on the request logger (warn for 4xx, error for 5xx) and writes
// the problem. Outside development and test, a missing detail falls back to the
// status text so internal error strings are not echoed to clients.
func Write(w http.ResponseWriter, r *http.Request, status int, typ, title string, err error, env string, opts ...Option) {
	p := ProblemDetails{
		Type:      typ,
		Title:     title,
		Status:    status,
		RequestID: w.Header().Get("X-Request-ID"),
	}
	for _, opt := range opts {
		opt(&p)
	}

	if p.Detail == "" && err != nil {
		if env == "development" || env == "test" {
			p.Detail = err.Error()
		} else {
			p.Detail = http.StatusText(status)
		}
	}

	if r != nil {
		if p.Instance == "" {
			p.Instance = r.URL.Path
		}
		if err != nil && status >= 400 {
			logger := zerolog.Ctx(r.Context())
			event := logger.Warn()
			if status >= 500 {
				event = logger.Error()
			}
			event.Err(err).
				Int("status", status).
				Str("type", typ).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(title)
		}
	}

	WriteProblem(w, p)
}

// WriteProblem encodes p with the problem+json content type.
func WriteProblem(w http.ResponseWriter, p ProblemDetails) {
	payload, err := json.Marshal(p)
	if err != nil {
		payload = []byte(`{"type":"about:blank","title":"Internal Server Error","status":500}`)
		p.Status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}
