package datecontext

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/tripline/server/internal/domain/ids"
	"github.com/tripline/server/internal/metrics"
	"github.com/tripline/server/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tier identifies which step of the cascade produced a context.
type Tier string

const (
	TierPrimary  Tier = "primary"
	TierFallback Tier = "fallback"
	TierDefault  Tier = "default"
)

// Outcome is how a resolution ended.
type Outcome string

const (
	OutcomeValid       Outcome = "valid"
	OutcomeCorrected   Outcome = "corrected"
	OutcomeUncorrected Outcome = "uncorrected"
	OutcomeDefaulted   Outcome = "defaulted"
)

const (
	excerptRunes      = 100
	defaultConfidence = 0.5
	defaultLabel      = "today"
)

// AttemptStatus tags the result of a single extractor call.
type AttemptStatus int

const (
	AttemptFailed AttemptStatus = iota
	AttemptSucceeded
)

// Attempt is the tagged result of one extractor call. Context is meaningful only
// when Status is AttemptSucceeded, Err only when it is AttemptFailed.
type Attempt struct {
	Tier     Tier
	Status   AttemptStatus
	Context  DateContext
	Err      error
	Duration time.Duration
}

// Resolver runs the primary → fallback → default cascade for one message at a time.
// It holds no per-call state and is safe for concurrent use.
type Resolver struct {
	primary   Extractor
	fallback  Extractor
	validator Validator
	timezone  string
	sink      EventSink
	now       func() time.Time
	newID     func() (string, error)
	tracer    trace.Tracer
}

// Option configures a Resolver at construction.
type Option func(*Resolver)

// WithTimezone fixes the zone stamped on every context. Empty names are ignored.
func WithTimezone(tz string) Option {
	return func(r *Resolver) {
		if tz != "" {
			r.timezone = tz
		}
	}
}

// WithSink routes resolver events to sink.
func WithSink(sink EventSink) Option {
	return func(r *Resolver) {
		if sink != nil {
			r.sink = sink
		}
	}
}

// WithClock overrides the clock used for the "today" default.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides how resolution IDs are minted.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(r *Resolver) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// NewResolver creates a resolver over the given collaborators.
func NewResolver(primary, fallback Extractor, validator Validator, opts ...Option) *Resolver {
	r := &Resolver{
		primary:   primary,
		fallback:  fallback,
		validator: validator,
		timezone:  DefaultTimezone,
		sink:      NopSink{},
		now:       time.Now,
		newID:     ids.NewULID,
		tracer:    telemetry.GetTracer("github.com/tripline/server/internal/domain/datecontext"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Timezone returns the zone every resolved context carries.
func (r *Resolver) Timezone() string {
	return r.timezone
}

// Resolve returns the date context for message. It never fails: extractor errors
// fall through to the next tier and total failure yields "today".
func (r *Resolver) Resolve(ctx context.Context, message string, clientTimestamp time.Time) DateContext {
	ctx, span := r.tracer.Start(ctx, "datecontext.Resolve")
	defer span.End()

	resolutionID := r.resolutionID(span)

	primary := r.attempt(ctx, TierPrimary, r.primary, message, clientTimestamp)
	if primary.Status == AttemptSucceeded {
		dc, outcome := r.settle(ctx, resolutionID, primary)
		r.finish(span, TierPrimary, outcome)
		return dc
	}
	r.emit(ctx, ExtractionFailed{
		ResolutionID: resolutionID,
		Tier:         TierPrimary,
		DurationMs:   primary.Duration.Milliseconds(),
		Error:        errorInfo(primary.Err),
	})
	span.AddEvent("primary extraction failed", trace.WithAttributes(attribute.String("error", primary.Err.Error())))

	fallback := r.attempt(ctx, TierFallback, r.fallback, message, clientTimestamp)
	if fallback.Status == AttemptSucceeded {
		dc, outcome := r.settle(ctx, resolutionID, fallback)
		r.finish(span, TierFallback, outcome)
		return dc
	}
	span.AddEvent("fallback extraction failed", trace.WithAttributes(attribute.String("error", fallback.Err.Error())))

	dc := r.defaultContext()
	r.emit(ctx, ExtractionDefaulted{
		ResolutionID:   resolutionID,
		PrimaryError:   errorInfo(primary.Err),
		FallbackError:  errorInfo(fallback.Err),
		MessageExcerpt: excerpt(message, excerptRunes),
		Start:          FormatInstant(dc.StartDate),
		End:            FormatInstant(dc.EndDate),
	})
	r.finish(span, TierDefault, OutcomeDefaulted)
	return dc
}

var errEmptyResolutionID = errors.New("empty resolution id")

// resolutionID mints the ID shared by every event of one resolution. If the
// ULID source fails, a random UUID keeps the events correlated.
func (r *Resolver) resolutionID(span trace.Span) string {
	id, err := r.newID()
	if err == nil && id == "" {
		err = errEmptyResolutionID
	}
	if err != nil {
		span.RecordError(err)
		id = uuid.NewString()
	}
	span.SetAttributes(attribute.String("datecontext.resolution_id", id))
	return id
}

// attempt calls one extractor and tags the result. Panics are recovered into a
// *PanicError so they drive the cascade like ordinary errors.
func (r *Resolver) attempt(ctx context.Context, tier Tier, ext Extractor, message string, clientTimestamp time.Time) (a Attempt) {
	a.Tier = tier
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			a.Status = AttemptFailed
			a.Context = DateContext{}
			a.Err = &PanicError{Value: rec, Stack: string(debug.Stack())}
		}
		a.Duration = time.Since(start)
		metrics.DateContextExtractionDuration.
			WithLabelValues(string(tier), attemptLabel(a.Status)).
			Observe(a.Duration.Seconds())
	}()

	if ext == nil {
		a.Err = fmt.Errorf("%s extractor not configured", tier)
		return a
	}

	dc, err := ext.Extract(ctx, message, clientTimestamp, r.timezone)
	if err != nil {
		a.Err = err
		return a
	}
	dc.Timezone = r.timezone
	a.Status = AttemptSucceeded
	a.Context = dc
	return a
}

// settle validates a successful attempt and applies the correction policy.
// Whatever validation says, the cascade ends here.
func (r *Resolver) settle(ctx context.Context, resolutionID string, a Attempt) (DateContext, Outcome) {
	result := r.validate(a.Context)
	durationMs := a.Duration.Milliseconds()

	if result.IsValid {
		r.emit(ctx, ExtractionSucceeded{
			ResolutionID:  resolutionID,
			Tier:          a.Tier,
			DurationMs:    durationMs,
			Period:        a.Context.Period,
			HumanReadable: a.Context.HumanReadable,
			Confidence:    a.Context.Confidence,
		})
		return a.Context, OutcomeValid
	}

	severity := ClassifyIssues(result.Issues)
	metrics.DateContextValidationIssuesTotal.WithLabelValues(string(severity)).Add(float64(len(result.Issues)))

	if result.Corrected != nil {
		corrected := *result.Corrected
		corrected.Timezone = r.timezone
		r.emit(ctx, ExtractionCorrected{
			ResolutionID: resolutionID,
			Tier:         a.Tier,
			DurationMs:   durationMs,
			Issues:       result.Issues,
			Severity:     severity,
			Original:     rangeOf(a.Context),
			Corrected:    rangeOf(corrected),
		})
		return corrected, OutcomeCorrected
	}

	r.emit(ctx, ExtractionUncorrected{
		ResolutionID: resolutionID,
		Tier:         a.Tier,
		DurationMs:   durationMs,
		Issues:       result.Issues,
		Original:     rangeOf(a.Context),
	})
	return a.Context, OutcomeUncorrected
}

func (r *Resolver) validate(dc DateContext) ValidationResult {
	if r.validator == nil {
		return ValidationResult{IsValid: true}
	}
	return r.validator.Validate(dc)
}

// defaultContext spans the current UTC calendar day.
func (r *Resolver) defaultContext() DateContext {
	now := r.now().UTC()
	return DateContext{
		HasDateReference: false,
		Period:           PeriodNone,
		StartDate:        StartOfDay(now),
		EndDate:          EndOfDay(now),
		HumanReadable:    defaultLabel,
		Timezone:         r.timezone,
		Confidence:       defaultConfidence,
	}
}

func (r *Resolver) emit(ctx context.Context, e Event) {
	r.sink.Emit(ctx, e)
}

func (r *Resolver) finish(span trace.Span, tier Tier, outcome Outcome) {
	span.SetAttributes(
		attribute.String("datecontext.tier", string(tier)),
		attribute.String("datecontext.outcome", string(outcome)),
	)
	metrics.DateContextResolutionsTotal.WithLabelValues(string(tier), string(outcome)).Inc()
}

func attemptLabel(status AttemptStatus) string {
	if status == AttemptSucceeded {
		return "success"
	}
	return "error"
}

func excerpt(message string, limit int) string {
	if utf8.RuneCountInString(message) <= limit {
		return message
	}
	runes := []rune(message)
	return string(runes[:limit]) + "..."
}
