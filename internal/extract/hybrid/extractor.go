// Package hybrid is the primary date extractor. Phrase rules settle the
// clear cases; anything ambiguous goes to a language model.
package hybrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tripline/server/internal/domain/datecontext"
	"github.com/tripline/server/internal/extract"
	"github.com/tripline/server/internal/llm"
)

const (
	DefaultRuleConfidence = 0.8
	DefaultTimeout        = 8 * time.Second

	noCueConfidence  = 0.8
	modelConfidence  = 0.7
	maxPromptMessage = 2000

	// promptLayout keeps the millisecond end-of-day bound visible to the model.
	promptLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Config tunes when the model is consulted.
type Config struct {
	// RuleConfidence is the minimum confidence at which an unambiguous rule hit
	// is returned without asking the model.
	RuleConfidence float64
	// Timeout bounds a single model call.
	Timeout time.Duration
}

// Extractor implements datecontext.Extractor.
type Extractor struct {
	model llm.Completer
	cfg   Config
	now   func() time.Time
}

// New returns a primary extractor. Zero config values take the defaults; a nil
// clock means time.Now.
func New(model llm.Completer, cfg Config, now func() time.Time) *Extractor {
	if cfg.RuleConfidence <= 0 {
		cfg.RuleConfidence = DefaultRuleConfidence
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	if model == nil {
		model = llm.DisabledCompleter{}
	}
	return &Extractor{model: model, cfg: cfg, now: now}
}

var _ datecontext.Extractor = (*Extractor)(nil)

// Extract implements datecontext.Extractor.
func (e *Extractor) Extract(ctx context.Context, message string, clientTimestamp time.Time, timezone string) (datecontext.DateContext, error) {
	loc, err := extract.LoadLocation(timezone)
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("primary extractor: %q: %w", timezone, err)
	}
	now := extract.Anchor(clientTimestamp, e.now, loc)

	m, ok, err := extract.MatchRules(message, now, timezone)
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("primary extractor: %w", err)
	}
	if ok && !m.Ambiguous && m.Context.Confidence >= e.cfg.RuleConfidence {
		return m.Context, nil
	}
	if !ok && !extract.HasDateCue(message) {
		return extract.NoReference(now, timezone, noCueConfidence), nil
	}

	var hint *extract.Match
	if ok {
		hint = &m
	}
	dc, err := e.ask(ctx, message, now, hint)
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("primary extractor: %w", err)
	}
	dc.Timezone = timezone
	return dc, nil
}

func (e *Extractor) ask(ctx context.Context, message string, now time.Time, hint *extract.Match) (datecontext.DateContext, error) {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	reply, err := e.model.Complete(ctx, systemPrompt, buildPrompt(message, now, hint))
	if err != nil {
		return datecontext.DateContext{}, err
	}
	raw, err := llm.ExtractJSON(reply)
	if err != nil {
		return datecontext.DateContext{}, err
	}
	return parseReply(raw, now)
}

const systemPrompt = `You resolve the time period a user's message refers to.
Answer with a single JSON object and nothing else:
{"hasDateReference": bool, "period": "none|day|week|month|year|range",
 "startDate": RFC3339, "endDate": RFC3339, "humanReadable": string, "confidence": 0..1}
Weeks start on Monday. Days run from 00:00:00.000 to 23:59:59.999 local time.
Prefer past dates when a phrase could mean either. If the message names no time,
set hasDateReference false and cover the current local day.`

func buildPrompt(message string, now time.Time, hint *extract.Match) string {
	if r := []rune(message); len(r) > maxPromptMessage {
		message = string(r[:maxPromptMessage])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Current local time: %s (%s, %s)\n", now.Format(promptLayout), now.Weekday(), now.Location())
	if hint != nil {
		fmt.Fprintf(&b, "A rule matched %q as %s to %s; correct it if the message means otherwise.\n",
			hint.Phrase,
			hint.Context.StartDate.In(now.Location()).Format(promptLayout),
			hint.Context.EndDate.In(now.Location()).Format(promptLayout))
	}
	fmt.Fprintf(&b, "Message: %s", message)
	return b.String()
}

type reply struct {
	HasDateReference *bool    `json:"hasDateReference"`
	Period           string   `json:"period"`
	StartDate        string   `json:"startDate"`
	EndDate          string   `json:"endDate"`
	HumanReadable    string   `json:"humanReadable"`
	Confidence       *float64 `json:"confidence"`
}

func parseReply(raw string, now time.Time) (datecontext.DateContext, error) {
	var r reply
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return datecontext.DateContext{}, fmt.Errorf("%w: %v", llm.ErrMalformedReply, err)
	}

	hasRef := r.HasDateReference == nil || *r.HasDateReference
	confidence := modelConfidence
	if r.Confidence != nil {
		confidence = *r.Confidence
	}

	if !hasRef && r.StartDate == "" && r.EndDate == "" {
		return extract.NoReference(now, "", confidence), nil
	}

	start, err := parseInstant(r.StartDate, now.Location())
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("%w: startDate: %v", llm.ErrMalformedReply, err)
	}
	end, err := parseInstant(r.EndDate, now.Location())
	if err != nil {
		return datecontext.DateContext{}, fmt.Errorf("%w: endDate: %v", llm.ErrMalformedReply, err)
	}

	period := datecontext.Period(strings.ToLower(strings.TrimSpace(r.Period)))
	if !period.Valid() {
		period = datecontext.PeriodRange
		if !hasRef {
			period = datecontext.PeriodNone
		}
	}

	return datecontext.DateContext{
		HasDateReference: hasRef,
		Period:           period,
		StartDate:        start.UTC(),
		EndDate:          end.UTC(),
		HumanReadable:    strings.TrimSpace(r.HumanReadable),
		Confidence:       confidence,
	}, nil
}

// parseInstant accepts RFC 3339 or a bare date, which is read as local midnight.
func parseInstant(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("missing")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, value, loc)
}
