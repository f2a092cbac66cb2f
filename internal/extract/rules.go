// Package extract holds the phrase rules and calendar arithmetic shared by the
// regex and hybrid date extractors.
package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tripline/server/internal/domain/datecontext"
)

var (
	// ErrUnknownTimezone is returned when the requested zone cannot be loaded.
	ErrUnknownTimezone = errors.New("unknown timezone")
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("empty message")
)

const (
	confidenceExplicit  = 0.95
	confidenceRelative  = 0.9
	confidenceAmbiguous = 0.6
	confidenceVague     = 0.4
)

// Match is a rule hit on a message.
type Match struct {
	Context datecontext.DateContext
	// Phrase is the text the rule matched.
	Phrase string
	// Ambiguous marks hits a smarter pass could improve on (bare weekdays, "recently").
	Ambiguous bool
}

type rule struct {
	name    string
	pattern *regexp.Regexp
	apply   func(groups []string, now time.Time, timezone string) (Match, error)
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

const weekdayAlt = `(sunday|monday|tuesday|wednesday|thursday|friday|saturday)`

// rules are tried in order; the first match wins. More specific phrasing comes first.
var rules = []rule{
	{
		name:    "explicit_range",
		pattern: regexp.MustCompile(`\b(?:from|between)\s+(.+?)\s+(?:to|until|till|through|and)\s+(.+?)(?:[?.!,]|$)`),
		apply:   applyExplicitRange,
	},
	{
		name:    "last_n_units",
		pattern: regexp.MustCompile(`\b(?:last|past|previous)\s+(\d{1,3})\s+(day|week|month|year)s?\b`),
		apply:   applyLastN,
	},
	{
		name:    "n_units_ago",
		pattern: regexp.MustCompile(`\b(\d{1,3}|a|one)\s+(day|week|month|year)s?\s+ago\b`),
		apply:   applyAgo,
	},
	{
		name:    "relative_day",
		pattern: regexp.MustCompile(`\b(today|tonight|this morning|this afternoon|this evening|yesterday|tomorrow)\b`),
		apply:   applyRelativeDay,
	},
	{
		name:    "weekend",
		pattern: regexp.MustCompile(`\b(this|last|next)\s+weekend\b`),
		apply:   applyWeekend,
	},
	{
		name:    "relative_unit",
		pattern: regexp.MustCompile(`\b(this|last|next|past|previous)\s+(week|month|year)\b`),
		apply:   applyRelativeUnit,
	},
	{
		name:    "qualified_weekday",
		pattern: regexp.MustCompile(`\b(last|this|next|past|previous)\s+` + weekdayAlt + `\b`),
		apply:   applyQualifiedWeekday,
	},
	{
		name:    "bare_weekday",
		pattern: regexp.MustCompile(`\b(?:on\s+)?` + weekdayAlt + `\b`),
		apply:   applyBareWeekday,
	},
	{
		name:    "vague_recent",
		pattern: regexp.MustCompile(`\b(recently|lately|the other day)\b`),
		apply:   applyVagueRecent,
	},
}

// MatchRules runs the phrase table against message. now must already be in the
// target location. The boolean is false when no rule matched.
func MatchRules(message string, now time.Time, timezone string) (Match, bool, error) {
	text := normalize(message)
	if text == "" {
		return Match{}, false, ErrEmptyMessage
	}
	for _, r := range rules {
		groups := r.pattern.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		m, err := r.apply(groups, now, timezone)
		if err != nil {
			// A rule whose captured text cannot be interpreted falls through to the next.
			continue
		}
		if m.Phrase == "" {
			m.Phrase = strings.TrimSpace(groups[0])
		}
		return m, true, nil
	}
	return Match{}, false, nil
}

var cuePattern = regexp.MustCompile(`\b(` +
	`\d{1,4}[/-]\d{1,2}(?:[/-]\d{1,4})?|` +
	`jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?|` +
	`day|days|week|weeks|month|months|year|years|weekend|` +
	`ago|since|before|after|until|during|when|earlier|` +
	`morning|evening|night|noon|midnight|` +
	`mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun|` +
	`christmas|easter|new year|holiday|holidays` +
	`)\b`)

// HasDateCue reports whether message contains any token that could anchor a date.
func HasDateCue(message string) bool {
	return cuePattern.MatchString(normalize(message))
}

var spaces = regexp.MustCompile(`\s+`)

func normalize(message string) string {
	return strings.TrimSpace(spaces.ReplaceAllString(strings.ToLower(message), " "))
}

func applyExplicitRange(groups []string, now time.Time, timezone string) (Match, error) {
	start, err := ParseDate(groups[1], now)
	if err != nil {
		return Match{}, err
	}
	end, err := ParseDate(groups[2], now)
	if err != nil {
		return Match{}, err
	}
	span := Span{Start: start.Span.Start, End: end.Span.End}
	label := fmt.Sprintf("%s to %s", strings.TrimSpace(groups[1]), strings.TrimSpace(groups[2]))
	return Match{Context: span.Context(datecontext.PeriodRange, label, timezone, confidenceExplicit)}, nil
}

func applyLastN(groups []string, now time.Time, timezone string) (Match, error) {
	n, err := strconv.Atoi(groups[1])
	if err != nil || n <= 0 {
		return Match{}, fmt.Errorf("invalid count %q", groups[1])
	}
	start := shift(datecontext.StartOfDay(now), groups[2], -n)
	span := Span{Start: start, End: datecontext.EndOfDay(now)}
	label := fmt.Sprintf("last %d %s", n, plural(groups[2], n))
	return Match{Context: span.Context(datecontext.PeriodRange, label, timezone, confidenceRelative)}, nil
}

func applyAgo(groups []string, now time.Time, timezone string) (Match, error) {
	n := 1
	if groups[1] != "a" && groups[1] != "one" {
		parsed, err := strconv.Atoi(groups[1])
		if err != nil || parsed <= 0 {
			return Match{}, fmt.Errorf("invalid count %q", groups[1])
		}
		n = parsed
	}
	target := shift(now, groups[2], -n)
	label := fmt.Sprintf("%d %s ago", n, plural(groups[2], n))
	switch groups[2] {
	case "week":
		return Match{Context: WeekSpan(target).Context(datecontext.PeriodWeek, label, timezone, confidenceRelative)}, nil
	case "month":
		return Match{Context: MonthSpan(target).Context(datecontext.PeriodMonth, label, timezone, confidenceRelative)}, nil
	case "year":
		return Match{Context: YearSpan(target).Context(datecontext.PeriodYear, label, timezone, confidenceRelative)}, nil
	default:
		return Match{Context: DaySpan(target).Context(datecontext.PeriodDay, label, timezone, confidenceRelative)}, nil
	}
}

func applyRelativeDay(groups []string, now time.Time, timezone string) (Match, error) {
	phrase := groups[1]
	target := now
	label := phrase
	switch phrase {
	case "yesterday":
		target = now.AddDate(0, 0, -1)
	case "tomorrow":
		target = now.AddDate(0, 0, 1)
	case "today", "tonight", "this morning", "this afternoon", "this evening":
		label = "today"
	}
	return Match{Context: DaySpan(target).Context(datecontext.PeriodDay, label, timezone, confidenceExplicit)}, nil
}

func applyWeekend(groups []string, now time.Time, timezone string) (Match, error) {
	anchor := now
	switch groups[1] {
	case "last":
		anchor = now.AddDate(0, 0, -7)
	case "next":
		anchor = now.AddDate(0, 0, 7)
	}
	label := groups[1] + " weekend"
	return Match{Context: WeekendSpan(anchor).Context(datecontext.PeriodRange, label, timezone, confidenceRelative)}, nil
}

func applyRelativeUnit(groups []string, now time.Time, timezone string) (Match, error) {
	qualifier := groups[1]
	unit := groups[2]
	offset := 0
	switch qualifier {
	case "last", "past", "previous":
		offset = -1
		qualifier = "last"
	case "next":
		offset = 1
	}
	anchor := shift(now, unit, offset)
	label := qualifier + " " + unit

	switch unit {
	case "week":
		return Match{Context: WeekSpan(anchor).Context(datecontext.PeriodWeek, label, timezone, confidenceExplicit)}, nil
	case "month":
		return Match{Context: MonthSpan(anchor).Context(datecontext.PeriodMonth, label, timezone, confidenceExplicit)}, nil
	default:
		return Match{Context: YearSpan(anchor).Context(datecontext.PeriodYear, label, timezone, confidenceExplicit)}, nil
	}
}

func applyQualifiedWeekday(groups []string, now time.Time, timezone string) (Match, error) {
	wd := weekdays[groups[2]]
	var target time.Time
	qualifier := groups[1]
	switch qualifier {
	case "next":
		target = NextWeekday(now, wd)
	case "this":
		// "this friday" means the one in the current Monday-start week.
		week := WeekSpan(now)
		target = week.Start.AddDate(0, 0, (int(wd)+6)%7)
	default:
		target = PreviousWeekday(now, wd)
		qualifier = "last"
	}
	label := qualifier + " " + groups[2]
	return Match{Context: DaySpan(target).Context(datecontext.PeriodDay, label, timezone, confidenceRelative)}, nil
}

func applyBareWeekday(groups []string, now time.Time, timezone string) (Match, error) {
	target := MostRecentWeekday(now, weekdays[groups[1]])
	return Match{
		Context:   DaySpan(target).Context(datecontext.PeriodDay, groups[1], timezone, confidenceAmbiguous),
		Ambiguous: true,
	}, nil
}

func applyVagueRecent(groups []string, now time.Time, timezone string) (Match, error) {
	span := Span{Start: datecontext.StartOfDay(now.AddDate(0, 0, -7)), End: datecontext.EndOfDay(now)}
	return Match{
		Context:   span.Context(datecontext.PeriodRange, "recently", timezone, confidenceVague),
		Ambiguous: true,
	}, nil
}

func shift(t time.Time, unit string, n int) time.Time {
	switch unit {
	case "week":
		return t.AddDate(0, 0, 7*n)
	case "month":
		// Pin to the first so Jan 31 minus one month does not overflow into March.
		first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
		return first.AddDate(0, n, 0)
	case "year":
		return t.AddDate(n, 0, 0)
	default:
		return t.AddDate(0, 0, n)
	}
}

func plural(unit string, n int) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}
