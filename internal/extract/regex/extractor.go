// Package regex is the fallback date extractor: phrase rules, then a
// dateparser search over the message. It makes no network calls.
package regex

import (
	"context"
	"fmt"
	"time"

	"github.com/tripline/server/internal/domain/datecontext"
	"github.com/tripline/server/internal/extract"
)

const (
	searchConfidence      = 0.7
	noReferenceConfidence = 0.3
)

// Extractor implements datecontext.Extractor without a language model.
type Extractor struct {
	now func() time.Time
}

// New returns a fallback extractor. A nil clock means time.Now.
func New(now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{now: now}
}

var _ datecontext.Extractor = (*Extractor)(nil)

// Extract implements datecontext.Extractor.
func (e *Extractor) Extract(ctx context.Context, message string, clientTimestamp time.Time, timezone string) (datecontext.DateContext, error) {
	if err := ctx.Err(); err != nil {
		return datecontext.DateContext{}, err
	}
	loc, err := extract.LoadLocation(timezone)
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("fallback extractor: %q: %w", timezone, err)
	}
	now := extract.Anchor(clientTimestamp, e.now, loc)

	m, ok, err := extract.MatchRules(message, now, timezone)
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("fallback extractor: %w", err)
	}
	if ok {
		return m.Context, nil
	}

	found, err := extract.SearchDates(message, now)
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("fallback extractor: date search: %w", err)
	}
	switch {
	case len(found) == 1:
		p := found[0]
		return p.Span.Context(p.Period, p.Text, timezone, searchConfidence), nil
	case len(found) >= 2:
		first, last := found[0], found[len(found)-1]
		span := extract.Span{Start: first.Span.Start, End: last.Span.End}
		label := first.Text + " to " + last.Text
		return span.Context(datecontext.PeriodRange, label, timezone, searchConfidence), nil
	}

	return extract.NoReference(now, timezone, noReferenceConfidence), nil
}
