package datecontext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIssues(t *testing.T) {
	tests := []struct {
		name   string
		issues []string
		want   IssueSeverity
	}{
		{name: "empty", issues: nil, want: SeverityExpected},
		{name: "end future", issues: []string{IssueEndInFuture}, want: SeverityExpected},
		{name: "both future", issues: []string{IssueEndInFuture, IssueStartInFuture}, want: SeverityExpected},
		{name: "embedded phrase", issues: []string{"warning: End date is in the future by 2 days"}, want: SeverityExpected},
		{name: "reversed", issues: []string{IssueStartAfterEnd}, want: SeveritySignificant},
		{name: "mixed", issues: []string{IssueStartInFuture, IssueNegativeDuration}, want: SeveritySignificant},
		{name: "unknown vocabulary", issues: []string{"Range spans a leap second"}, want: SeveritySignificant},
		{name: "case differs", issues: []string{"end date is in the future"}, want: SeveritySignificant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIssues(tt.issues))
		})
	}
}

func TestSignificantIssues(t *testing.T) {
	got := SignificantIssues([]string{IssueEndInFuture, IssueStartAfterEnd, IssueStartInFuture, IssueConfidenceRange})
	assert.Equal(t, []string{IssueStartAfterEnd, IssueConfidenceRange}, got)
	assert.Empty(t, SignificantIssues([]string{IssueEndInFuture}))
}
