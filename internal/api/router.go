package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tripline/server/internal/api/handlers"
	"github.com/tripline/server/internal/api/middleware"
	"github.com/tripline/server/internal/config"
	"github.com/tripline/server/internal/metrics"
)

// RouterDeps are the collaborators the HTTP surface is built from.
type RouterDeps struct {
	Resolver handlers.Resolver
	Health   *handlers.HealthChecker
	Build    BuildInfo
	// MCP is mounted at /mcp when set.
	MCP http.Handler
}

// NewRouter wires routes and the middleware chain. Only this function knows the
// order; handlers never wrap themselves.
func NewRouter(cfg config.Config, logger zerolog.Logger, deps RouterDeps) http.Handler {
	dateContext := handlers.NewDateContextHandler(deps.Resolver, cfg.Environment)
	limit := middleware.RateLimit(cfg.RateLimit)
	tier := func(t middleware.RateLimitTier, h http.Handler) http.Handler {
		return middleware.WithRateLimitTierHandler(t)(limit(h))
	}

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", handlers.Healthz())
	mux.Handle("GET /readyz", handlers.Readyz())
	if deps.Health != nil {
		mux.Handle("GET /health", deps.Health.Health())
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	mux.Handle("GET /version", VersionHandler(deps.Build))
	mux.Handle("GET /api/v1/openapi.json", OpenAPIHandler())
	mux.Handle("POST /api/v1/date-context",
		tier(middleware.TierPublic, middleware.RequestSize(cfg.Server.MaxBodyBytes)(http.HandlerFunc(dateContext.Resolve))))
	if deps.MCP != nil {
		mux.Handle("/mcp", tier(middleware.TierMCP, deps.MCP))
	}

	var handler http.Handler = mux
	handler = metrics.HTTPMiddleware(handler)
	handler = middleware.CORS(cfg.CORS, logger)(handler)
	handler = middleware.SecurityHeaders(cfg.Environment == "production")(handler)
	handler = middleware.RequestLogging(logger)(handler)
	handler = middleware.Tracing(handler)
	handler = middleware.CorrelationID(logger)(handler)
	return handler
}
