package extract

import (
	"time"

	"github.com/tripline/server/internal/domain/datecontext"
)

// Span is an inclusive local-time range.
type Span struct {
	Start time.Time
	End   time.Time
}

// Context converts the span to a DateContext with UTC-encoded bounds.
func (s Span) Context(period datecontext.Period, label, timezone string, confidence float64) datecontext.DateContext {
	return datecontext.DateContext{
		HasDateReference: true,
		Period:           period,
		StartDate:        s.Start.UTC(),
		EndDate:          s.End.UTC(),
		HumanReadable:    label,
		Timezone:         timezone,
		Confidence:       confidence,
	}
}

// DaySpan covers the calendar day of t.
func DaySpan(t time.Time) Span {
	return Span{Start: datecontext.StartOfDay(t), End: datecontext.EndOfDay(t)}
}

// WeekSpan covers the Monday-to-Sunday week containing t.
func WeekSpan(t time.Time) Span {
	offset := (int(t.Weekday()) + 6) % 7
	monday := datecontext.StartOfDay(t).AddDate(0, 0, -offset)
	return Span{Start: monday, End: datecontext.EndOfDay(monday.AddDate(0, 0, 6))}
}

// MonthSpan covers the calendar month of t.
func MonthSpan(t time.Time) Span {
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return Span{Start: first, End: datecontext.EndOfDay(first.AddDate(0, 1, -1))}
}

// YearSpan covers the calendar year of t.
func YearSpan(t time.Time) Span {
	first := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	return Span{Start: first, End: datecontext.EndOfDay(time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, t.Location()))}
}

// WeekendSpan covers Saturday and Sunday of the week containing t.
func WeekendSpan(t time.Time) Span {
	week := WeekSpan(t)
	saturday := week.Start.AddDate(0, 0, 5)
	return Span{Start: saturday, End: week.End}
}

// PreviousWeekday returns the latest wd strictly before t's day.
func PreviousWeekday(t time.Time, wd time.Weekday) time.Time {
	diff := (int(t.Weekday()) - int(wd) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return t.AddDate(0, 0, -diff)
}

// NextWeekday returns the earliest wd strictly after t's day.
func NextWeekday(t time.Time, wd time.Weekday) time.Time {
	diff := (int(wd) - int(t.Weekday()) + 7) % 7
	if diff == 0 {
		diff = 7
	}
	return t.AddDate(0, 0, diff)
}

// MostRecentWeekday returns wd on or before t's day.
func MostRecentWeekday(t time.Time, wd time.Weekday) time.Time {
	diff := (int(t.Weekday()) - int(wd) + 7) % 7
	return t.AddDate(0, 0, -diff)
}

// NoReference is the context extractors return when a message carries no date cue:
// the local calendar day of now, flagged as not referenced.
func NoReference(now time.Time, timezone string, confidence float64) datecontext.DateContext {
	dc := DaySpan(now).Context(datecontext.PeriodNone, "today", timezone, confidence)
	dc.HasDateReference = false
	return dc
}

// LoadLocation resolves timezone, treating the empty name as an error rather
// than silently meaning UTC.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" {
		return nil, ErrUnknownTimezone
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, ErrUnknownTimezone
	}
	return loc, nil
}

// Anchor returns the reference instant for relative phrases in loc.
// A zero client timestamp falls back to now.
func Anchor(clientTimestamp time.Time, now func() time.Time, loc *time.Location) time.Time {
	if clientTimestamp.IsZero() {
		clientTimestamp = now()
	}
	return clientTimestamp.In(loc)
}
