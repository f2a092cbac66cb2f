package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tripline/server/internal/api/problem"
	"github.com/tripline/server/internal/domain/datecontext"
)

// Resolver is the part of datecontext.Resolver the handler needs.
type Resolver interface {
	Resolve(ctx context.Context, message string, clientTimestamp time.Time) datecontext.DateContext
}

// DateContextHandler serves POST /api/v1/date-context.
type DateContextHandler struct {
	resolver Resolver
	env      string
}

func NewDateContextHandler(resolver Resolver, env string) *DateContextHandler {
	return &DateContextHandler{resolver: resolver, env: env}
}

// ResolveRequest is the request body. ClientTimestamp is the caller's clock;
// when absent the server's clock anchors relative phrases.
type ResolveRequest struct {
	Message         string `json:"message" validate:"required,max=4000"`
	ClientTimestamp string `json:"clientTimestamp,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Resolve decodes and validates the body, then returns the resolved context.
// Resolution itself cannot fail, so every well-formed request gets a 200.
func (h *DateContextHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			problem.Write(w, r, http.StatusRequestEntityTooLarge, problem.TypePayloadTooLarge, "Request body too large", err, h.env)
			return
		}
		if errors.Is(err, io.EOF) {
			err = errors.New("request body is empty")
		}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid JSON body", err, h.env,
			problem.WithDetail(err.Error()))
		return
	}

	if err := validateStruct(req); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.env,
			problem.WithDetail(err.Error()),
			problem.WithErrors(fieldErrors(err)))
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		err := FieldError{Field: "message", Message: "must not be blank"}
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid request", err, h.env,
			problem.WithDetail(err.Error()),
			problem.WithErrors(map[string]any{"message": err.Message}))
		return
	}

	var clientTimestamp time.Time
	if req.ClientTimestamp != "" {
		// Already checked by the datetime tag.
		clientTimestamp, _ = time.Parse(time.RFC3339Nano, req.ClientTimestamp)
	}

	dc := h.resolver.Resolve(r.Context(), req.Message, clientTimestamp)
	WriteJSON(w, http.StatusOK, dc)
}

// WriteJSON encodes payload as the JSON response body.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
