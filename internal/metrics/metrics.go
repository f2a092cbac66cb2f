package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all Tripline metrics
const namespace = "tripline"

// Registry is the global Prometheus registry for all metrics
var Registry = prometheus.NewRegistry()

var initOnce sync.Once

// AppInfo is a gauge that exposes application version information as labels
var AppInfo = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "app_info",
		Help:      "Application version information (always set to 1, version info in labels)",
	},
	[]string{"version", "commit", "build_date"},
)

// HealthCheckStatus tracks individual health check results
// Values: 0 = fail, 1 = warn, 2 = pass
var HealthCheckStatus = promauto.With(Registry).NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "health_check_status",
		Help:      "Individual health check status (0=fail, 1=warn, 2=pass)",
	},
	[]string{"check"},
)

// Date context metrics

// DateContextResolutionsTotal counts resolutions by the tier that produced the
// result and how validation ended.
var DateContextResolutionsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datecontext_resolutions_total",
		Help:      "Total number of date context resolutions",
	},
	[]string{"tier", "outcome"}, // tier: primary|fallback|default, outcome: valid|corrected|uncorrected|defaulted
)

// DateContextExtractionDuration tracks individual extractor call latency.
var DateContextExtractionDuration = promauto.With(Registry).NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "datecontext_extraction_duration_seconds",
		Help:      "Date extractor call latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"tier", "status"}, // status: success|error
)

// DateContextValidationIssuesTotal counts validation issues by severity class.
var DateContextValidationIssuesTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "datecontext_validation_issues_total",
		Help:      "Total number of date context validation issues",
	},
	[]string{"severity"}, // severity: expected|significant
)

// Model metrics

// LLMRequestsTotal counts language model calls made by the hybrid extractor.
var LLMRequestsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "Total number of language model requests",
	},
	[]string{"status"}, // status: success|error|malformed|disabled
)

// LLMLatency tracks language model round trip latency.
var LLMLatency = promauto.With(Registry).NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_latency_seconds",
		Help:      "Language model request latency in seconds",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
)

// RateLimitRejectionsTotal counts requests refused by the rate limiter.
var RateLimitRejectionsTotal = promauto.With(Registry).NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Total number of requests rejected by rate limiting",
	},
	[]string{"tier"},
)

// Init registers runtime collectors and sets version information.
// Safe to call more than once; only the first call registers collectors.
func Init(version, commit, buildDate string) {
	initOnce.Do(func() {
		// Register default Go metrics (memory, goroutines, GC, etc.)
		Registry.MustRegister(collectors.NewGoCollector())

		// Register process metrics (CPU, memory, file descriptors)
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})

	AppInfo.WithLabelValues(version, commit, buildDate).Set(1)
}
