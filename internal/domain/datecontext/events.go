package datecontext

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Event is one structured log record emitted while resolving a message.
// Every event kind has a fixed field set so tests can assert on its shape.
type Event interface {
	zerolog.LogObjectMarshaler
	Kind() string
	Level() zerolog.Level
	Message() string
}

// EventSink receives resolver events. Implementations must tolerate concurrent
// Emit calls from independent resolutions.
type EventSink interface {
	Emit(ctx context.Context, e Event)
}

// DateRange is a before/after pair carried by correction events.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func rangeOf(dc DateContext) DateRange {
	return DateRange{Start: FormatInstant(dc.StartDate), End: FormatInstant(dc.EndDate)}
}

// ExtractionSucceeded is logged when a tier's output validated cleanly.
type ExtractionSucceeded struct {
	ResolutionID  string
	Tier          Tier
	DurationMs    int64
	Period        Period
	HumanReadable string
	Confidence    float64
}

func (e ExtractionSucceeded) Kind() string         { return "extraction_succeeded" }
func (e ExtractionSucceeded) Level() zerolog.Level { return zerolog.InfoLevel }

func (e ExtractionSucceeded) Message() string {
	return fmt.Sprintf("date context extracted (%s)", e.Tier)
}

func (e ExtractionSucceeded) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("resolution_id", e.ResolutionID).
		Str("tier", string(e.Tier)).
		Int64("duration_ms", e.DurationMs).
		Str("period", string(e.Period)).
		Str("human_readable", e.HumanReadable).
		Float64("confidence", e.Confidence)
}

// ExtractionCorrected is logged when the validator's correction replaced a tier's output.
// Future-date-only corrections are routine; anything else on the primary tier is
// surfaced as a warning.
type ExtractionCorrected struct {
	ResolutionID string
	Tier         Tier
	DurationMs   int64
	Issues       []string
	Severity     IssueSeverity
	Original     DateRange
	Corrected    DateRange
}

func (e ExtractionCorrected) Kind() string { return "extraction_corrected" }

func (e ExtractionCorrected) Level() zerolog.Level {
	if e.Tier == TierPrimary && e.Severity == SeveritySignificant {
		return zerolog.WarnLevel
	}
	return zerolog.InfoLevel
}

func (e ExtractionCorrected) Message() string {
	if e.Severity == SeverityExpected {
		return "date context auto-corrected (expected future-date adjustment)"
	}
	return "date context auto-corrected (significant validation issues)"
}

func (e ExtractionCorrected) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("resolution_id", e.ResolutionID).
		Str("tier", string(e.Tier)).
		Int64("duration_ms", e.DurationMs).
		Strs("issues", e.Issues).
		Str("severity", string(e.Severity))
	if e.Severity == SeveritySignificant {
		ev.Strs("significant_issues", SignificantIssues(e.Issues)).
			Str("original_start", e.Original.Start).
			Str("original_end", e.Original.End).
			Str("corrected_start", e.Corrected.Start).
			Str("corrected_end", e.Corrected.End)
	}
}

// ExtractionUncorrected is logged when validation failed and no fix was offered.
// The original context is still returned.
type ExtractionUncorrected struct {
	ResolutionID string
	Tier         Tier
	DurationMs   int64
	Issues       []string
	Original     DateRange
}

func (e ExtractionUncorrected) Kind() string { return "extraction_uncorrected" }

// Level escalates only on the primary tier; the fallback is already a degraded path.
func (e ExtractionUncorrected) Level() zerolog.Level {
	if e.Tier == TierPrimary {
		return zerolog.ErrorLevel
	}
	return zerolog.InfoLevel
}

func (e ExtractionUncorrected) Message() string {
	return "date context failed validation with no correction; keeping original"
}

func (e ExtractionUncorrected) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("resolution_id", e.ResolutionID).
		Str("tier", string(e.Tier)).
		Int64("duration_ms", e.DurationMs).
		Strs("issues", e.Issues).
		Str("original_start", e.Original.Start).
		Str("original_end", e.Original.End)
}

// ExtractionFailed is logged when an extractor returned an error or panicked.
type ExtractionFailed struct {
	ResolutionID string
	Tier         Tier
	DurationMs   int64
	Error        ErrorInfo
}

func (e ExtractionFailed) Kind() string         { return "extraction_failed" }
func (e ExtractionFailed) Level() zerolog.Level { return zerolog.WarnLevel }

func (e ExtractionFailed) Message() string {
	return fmt.Sprintf("%s date extraction failed", e.Tier)
}

func (e ExtractionFailed) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("resolution_id", e.ResolutionID).
		Str("tier", string(e.Tier)).
		Int64("duration_ms", e.DurationMs).
		Object("error", e.Error)
}

// ExtractionDefaulted is logged when both extractors failed and "today" was synthesized.
type ExtractionDefaulted struct {
	ResolutionID   string
	PrimaryError   ErrorInfo
	FallbackError  ErrorInfo
	MessageExcerpt string
	Start          string
	End            string
}

func (e ExtractionDefaulted) Kind() string         { return "extraction_defaulted" }
func (e ExtractionDefaulted) Level() zerolog.Level { return zerolog.ErrorLevel }

func (e ExtractionDefaulted) Message() string {
	return "all date extraction methods failed; defaulting to today"
}

func (e ExtractionDefaulted) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("resolution_id", e.ResolutionID).
		Object("v2_error", e.PrimaryError).
		Object("v1_error", e.FallbackError).
		Str("message_excerpt", e.MessageExcerpt).
		Str("default_start", e.Start).
		Str("default_end", e.End)
}

// ErrorInfo is the loggable shape of an extractor failure.
type ErrorInfo struct {
	Message string
	Type    string
	Stack   string
}

func errorInfo(err error) ErrorInfo {
	if err == nil {
		return ErrorInfo{}
	}
	info := ErrorInfo{Message: err.Error(), Type: fmt.Sprintf("%T", err)}
	if p, ok := err.(*PanicError); ok {
		info.Type = "panic"
		info.Stack = p.Stack
	}
	return info
}

func (e ErrorInfo) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("message", e.Message).Str("type", e.Type)
	if e.Stack != "" {
		ev.Str("stack", e.Stack)
	}
}

// ZerologSink renders events through zerolog. A request-scoped logger found on
// the context takes precedence over the sink's own logger.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerologSink creates a sink writing to logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return &ZerologSink{logger: logger}
}

func (s *ZerologSink) Emit(ctx context.Context, e Event) {
	logger := &s.logger
	if ctx != nil {
		if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
			logger = l
		}
	}
	logger.WithLevel(e.Level()).
		Str("event", e.Kind()).
		EmbedObject(e).
		Msg(e.Message())
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(context.Context, Event) {}
