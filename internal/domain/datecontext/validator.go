package datecontext

import (
	"time"
)

// DateValidator checks a context against the wall clock and its own range.
// Future bounds are clamped to today; inverted ranges are swapped.
type DateValidator struct {
	now func() time.Time
}

// NewDateValidator creates a validator using the given clock, or time.Now when nil.
func NewDateValidator(now func() time.Time) *DateValidator {
	if now == nil {
		now = time.Now
	}
	return &DateValidator{now: now}
}

// Validate returns the issues found on dc and, when they can be fixed
// automatically, the corrected context.
func (v *DateValidator) Validate(dc DateContext) ValidationResult {
	if !dc.HasDateReference && dc.StartDate.IsZero() && dc.EndDate.IsZero() {
		return ValidationResult{IsValid: true}
	}
	if dc.StartDate.IsZero() || dc.EndDate.IsZero() {
		return ValidationResult{IsValid: false, Issues: []string{IssueMissingBounds}}
	}

	loc, err := time.LoadLocation(dc.Timezone)
	if err != nil || dc.Timezone == "" {
		loc = time.UTC
	}
	today := v.now().In(loc)
	todayStart := StartOfDay(today).UTC()
	todayEnd := EndOfDay(today).UTC()

	var issues []string
	corrected := dc

	if corrected.StartDate.After(corrected.EndDate) {
		issues = append(issues, IssueStartAfterEnd)
		corrected.StartDate, corrected.EndDate = corrected.EndDate, corrected.StartDate
	}

	if corrected.EndDate.After(todayEnd) {
		issues = append(issues, IssueEndInFuture)
		corrected.EndDate = todayEnd
	}

	if corrected.StartDate.After(todayEnd) {
		issues = append(issues, IssueStartInFuture)
		corrected.StartDate = todayStart
	}

	if corrected.Confidence < 0 || corrected.Confidence > 1 {
		issues = append(issues, IssueConfidenceRange)
		corrected.Confidence = clamp01(corrected.Confidence)
	}

	if corrected.EndDate.Before(corrected.StartDate) {
		issues = append(issues, IssueNegativeDuration)
		corrected.EndDate = EndOfDay(corrected.StartDate.In(loc)).UTC()
	}

	if len(issues) == 0 {
		return ValidationResult{IsValid: true}
	}

	// Every rule past the missing-bounds check has a fix, so an invalid result
	// here always carries a correction.
	return ValidationResult{IsValid: false, Issues: issues, Corrected: &corrected}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
