package extract

import (
	"errors"
	"strings"
	"time"

	dateparser "github.com/markusmobius/go-dateparser"
	"github.com/markusmobius/go-dateparser/date"

	"github.com/tripline/server/internal/domain/datecontext"
)

// ErrUnparseable is returned when free text does not name a date.
var ErrUnparseable = errors.New("text does not name a date")

// Parsed is a single date found in free text, widened to the span its
// precision implies ("march" covers the whole month).
type Parsed struct {
	Text   string
	Span   Span
	Period datecontext.Period
}

func parserConfig(now time.Time) *dateparser.Configuration {
	return &dateparser.Configuration{
		CurrentTime:         now,
		DefaultTimezone:     now.Location(),
		PreferredDateSource: dateparser.Past,
		Languages:           []string{"en"},
	}
}

// ParseDate interprets text as a single date relative to now.
func ParseDate(text string, now time.Time) (Parsed, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Parsed{}, ErrUnparseable
	}
	dt, err := dateparser.Parse(parserConfig(now), text)
	if err != nil || dt.Time.IsZero() {
		return Parsed{}, ErrUnparseable
	}
	return widen(text, dt, now.Location()), nil
}

// SearchDates finds every date mention in message, in order of appearance.
func SearchDates(message string, now time.Time) ([]Parsed, error) {
	_, results, err := dateparser.Search(parserConfig(now), message)
	if err != nil {
		return nil, err
	}
	out := make([]Parsed, 0, len(results))
	for _, r := range results {
		if r.Date.Time.IsZero() {
			continue
		}
		out = append(out, widen(r.Text, r.Date, now.Location()))
	}
	return out, nil
}

// widen maps the parser's precision onto a span. The parser reports no week
// precision; week phrases are handled by the rule table.
func widen(text string, dt date.Date, loc *time.Location) Parsed {
	t := dt.Time.In(loc)
	switch dt.Period {
	case date.Year:
		return Parsed{Text: text, Span: YearSpan(t), Period: datecontext.PeriodYear}
	case date.Month:
		return Parsed{Text: text, Span: MonthSpan(t), Period: datecontext.PeriodMonth}
	default:
		return Parsed{Text: text, Span: DaySpan(t), Period: datecontext.PeriodDay}
	}
}
