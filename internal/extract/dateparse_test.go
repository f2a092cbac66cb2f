package extract

import (
	"testing"
	"time"

	"github.com/markusmobius/go-dateparser/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripline/server/internal/domain/datecontext"
)

func TestWiden_Precision(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)

	// 23:30 UTC on the 31st is already 1 April in Lagos.
	parsed := time.Date(2024, time.March, 31, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name      string
		period    date.Period
		want      datecontext.Period
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "day",
			period:    date.Day,
			want:      datecontext.PeriodDay,
			wantStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, lagos),
			wantEnd:   time.Date(2024, time.April, 1, 23, 59, 59, 999_000_000, lagos),
		},
		{
			name:      "month",
			period:    date.Month,
			want:      datecontext.PeriodMonth,
			wantStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, lagos),
			wantEnd:   time.Date(2024, time.April, 30, 23, 59, 59, 999_000_000, lagos),
		},
		{
			name:      "year",
			period:    date.Year,
			want:      datecontext.PeriodYear,
			wantStart: time.Date(2024, time.January, 1, 0, 0, 0, 0, lagos),
			wantEnd:   time.Date(2024, time.December, 31, 23, 59, 59, 999_000_000, lagos),
		},
		{
			name:      "time precision widens to the day",
			period:    date.Minute,
			want:      datecontext.PeriodDay,
			wantStart: time.Date(2024, time.April, 1, 0, 0, 0, 0, lagos),
			wantEnd:   time.Date(2024, time.April, 1, 23, 59, 59, 999_000_000, lagos),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := widen("x", date.Date{Time: parsed, Period: tt.period}, lagos)

			assert.Equal(t, "x", got.Text)
			assert.Equal(t, tt.want, got.Period)
			assert.True(t, got.Span.Start.Equal(tt.wantStart), "start %s, want %s", got.Span.Start, tt.wantStart)
			assert.True(t, got.Span.End.Equal(tt.wantEnd), "end %s, want %s", got.Span.End, tt.wantEnd)
			assert.Equal(t, lagos, got.Span.Start.Location())
		})
	}
}

func TestParseDate_EmptyText(t *testing.T) {
	_, err := ParseDate("   ", time.Now())
	assert.ErrorIs(t, err, ErrUnparseable)
}
