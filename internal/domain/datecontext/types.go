package datecontext

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// DefaultTimezone is the IANA zone every resolved context is stamped with
// unless the resolver is constructed with another one at startup.
const DefaultTimezone = "Africa/Lagos"

// isoMillis is the wire format for context timestamps: UTC with millisecond precision.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Period is a coarse bucket for the span a message refers to.
// The set is owned by the extractors; the resolver treats it as opaque.
type Period string

const (
	PeriodNone  Period = "none"
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
	PeriodRange Period = "range"
)

// Valid reports whether p is one of the known periods.
func (p Period) Valid() bool {
	switch p {
	case PeriodNone, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodRange:
		return true
	}
	return false
}

// DateContext is the date range a chat message refers to.
// It is a value type: copy it freely, never mutate one after handing it off.
type DateContext struct {
	HasDateReference bool
	Period           Period
	StartDate        time.Time
	EndDate          time.Time
	HumanReadable    string
	Timezone         string
	Confidence       float64
}

type dateContextJSON struct {
	HasDateReference bool    `json:"hasDateReference"`
	Period           Period  `json:"period"`
	StartDate        string  `json:"startDate"`
	EndDate          string  `json:"endDate"`
	HumanReadable    string  `json:"humanReadable"`
	Timezone         string  `json:"timezone"`
	Confidence       float64 `json:"confidence"`
}

// MarshalJSON encodes start and end as UTC ISO 8601 instants.
func (c DateContext) MarshalJSON() ([]byte, error) {
	return json.Marshal(dateContextJSON{
		HasDateReference: c.HasDateReference,
		Period:           c.Period,
		StartDate:        FormatInstant(c.StartDate),
		EndDate:          FormatInstant(c.EndDate),
		HumanReadable:    c.HumanReadable,
		Timezone:         c.Timezone,
		Confidence:       c.Confidence,
	})
}

// UnmarshalJSON accepts RFC 3339 timestamps with or without fractional seconds.
func (c *DateContext) UnmarshalJSON(data []byte) error {
	var raw dateContextJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := parseInstant("startDate", raw.StartDate)
	if err != nil {
		return err
	}
	end, err := parseInstant("endDate", raw.EndDate)
	if err != nil {
		return err
	}
	*c = DateContext{
		HasDateReference: raw.HasDateReference,
		Period:           raw.Period,
		StartDate:        start,
		EndDate:          end,
		HumanReadable:    raw.HumanReadable,
		Timezone:         raw.Timezone,
		Confidence:       raw.Confidence,
	}
	return nil
}

// FormatInstant renders t as a UTC ISO 8601 string with milliseconds.
// The zero time renders as an empty string.
func FormatInstant(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(isoMillis)
}

func parseInstant(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: %w", field, err)
	}
	return t.UTC(), nil
}

// ValidationResult is the verdict of a Validator on one context.
// Corrected is non-nil only when an automatic fix was computed.
type ValidationResult struct {
	IsValid   bool
	Issues    []string
	Corrected *DateContext
}

// Extractor turns a message into a DateContext.
// Implementations may block on I/O and may fail with any error.
type Extractor interface {
	Extract(ctx context.Context, message string, clientTimestamp time.Time, timezone string) (DateContext, error)
}

// ExtractorFunc adapts a function to the Extractor interface.
type ExtractorFunc func(ctx context.Context, message string, clientTimestamp time.Time, timezone string) (DateContext, error)

func (f ExtractorFunc) Extract(ctx context.Context, message string, clientTimestamp time.Time, timezone string) (DateContext, error) {
	return f(ctx, message, clientTimestamp, timezone)
}

// Validator inspects a context. It must not fail.
type Validator interface {
	Validate(dc DateContext) ValidationResult
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(dc DateContext) ValidationResult

func (f ValidatorFunc) Validate(dc DateContext) ValidationResult {
	return f(dc)
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last millisecond of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), t.Location())
}
