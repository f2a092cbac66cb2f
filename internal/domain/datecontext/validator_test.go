package datecontext

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Thursday 14 March 2024, 10:00 in Lagos.
var validatorNow = time.Date(2024, time.March, 14, 9, 0, 0, 0, time.UTC)

func dayContext(start, end time.Time) DateContext {
	return DateContext{
		HasDateReference: true,
		Period:           PeriodDay,
		StartDate:        start,
		EndDate:          end,
		HumanReadable:    "some day",
		Timezone:         "Africa/Lagos",
		Confidence:       0.9,
	}
}

func TestDateValidator_Valid(t *testing.T) {
	v := NewDateValidator(func() time.Time { return validatorNow })
	dc := dayContext(
		time.Date(2024, time.March, 11, 23, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 12, 22, 59, 59, 999_000_000, time.UTC),
	)

	result := v.Validate(dc)

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Issues)
	assert.Nil(t, result.Corrected)
}

func TestDateValidator_TodayInZoneIsNotFuture(t *testing.T) {
	v := NewDateValidator(func() time.Time { return validatorNow })
	// The Lagos day ends at 22:59:59.999 UTC.
	dc := dayContext(
		time.Date(2024, time.March, 13, 23, 0, 0, 0, time.UTC),
		time.Date(2024, time.March, 14, 22, 59, 59, 999_000_000, time.UTC),
	)

	assert.True(t, v.Validate(dc).IsValid)
}

func TestDateValidator_NoReferenceWithoutDates(t *testing.T) {
	v := NewDateValidator(nil)
	assert.True(t, v.Validate(DateContext{Period: PeriodNone}).IsValid)
}

func TestDateValidator_MissingBound(t *testing.T) {
	v := NewDateValidator(func() time.Time { return validatorNow })
	dc := dayContext(time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), time.Time{})

	result := v.Validate(dc)

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{IssueMissingBounds}, result.Issues)
	assert.Nil(t, result.Corrected)
}

func TestDateValidator_Corrections(t *testing.T) {
	v := NewDateValidator(func() time.Time { return validatorNow })
	todayStart := time.Date(2024, time.March, 13, 23, 0, 0, 0, time.UTC)
	todayEnd := time.Date(2024, time.March, 14, 22, 59, 59, 999_000_000, time.UTC)

	tests := []struct {
		name      string
		in        DateContext
		issues    []string
		wantStart time.Time
		wantEnd   time.Time
		wantConf  float64
	}{
		{
			name: "end in future",
			in: dayContext(
				time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC),
			),
			issues:    []string{IssueEndInFuture},
			wantStart: time.Date(2024, time.March, 10, 23, 0, 0, 0, time.UTC),
			wantEnd:   todayEnd,
			wantConf:  0.9,
		},
		{
			name: "both in future",
			in: dayContext(
				time.Date(2024, time.March, 18, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 19, 0, 0, 0, 0, time.UTC),
			),
			issues:    []string{IssueEndInFuture, IssueStartInFuture},
			wantStart: todayStart,
			wantEnd:   todayEnd,
			wantConf:  0.9,
		},
		{
			name: "reversed",
			in: dayContext(
				time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			),
			issues:    []string{IssueStartAfterEnd},
			wantStart: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 12, 0, 0, 0, 0, time.UTC),
			wantConf:  0.9,
		},
		{
			name: "confidence out of range",
			in: func() DateContext {
				dc := dayContext(
					time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
					time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
				)
				dc.Confidence = 1.7
				return dc
			}(),
			issues:    []string{IssueConfidenceRange},
			wantStart: time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC),
			wantConf:  1,
		},
		{
			name: "reversed with future end",
			in: dayContext(
				time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC),
				time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC),
			),
			issues:    []string{IssueStartAfterEnd, IssueEndInFuture},
			wantStart: time.Date(2024, time.March, 14, 12, 0, 0, 0, time.UTC),
			wantEnd:   todayEnd,
			wantConf:  0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.in)

			assert.False(t, result.IsValid)
			assert.Equal(t, tt.issues, result.Issues)
			require.NotNil(t, result.Corrected)
			assert.True(t, tt.wantStart.Equal(result.Corrected.StartDate), "start: got %s", result.Corrected.StartDate)
			assert.True(t, tt.wantEnd.Equal(result.Corrected.EndDate), "end: got %s", result.Corrected.EndDate)
			assert.Equal(t, tt.wantConf, result.Corrected.Confidence)
			assert.False(t, result.Corrected.EndDate.Before(result.Corrected.StartDate))
		})
	}
}

func TestDateValidator_DoesNotMutateInput(t *testing.T) {
	v := NewDateValidator(func() time.Time { return validatorNow })
	end := time.Date(2024, time.March, 20, 0, 0, 0, 0, time.UTC)
	dc := dayContext(time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC), end)

	_ = v.Validate(dc)

	assert.True(t, dc.EndDate.Equal(end))
}
