package datecontext

import "strings"

// Issue phrases produced by DateValidator. The two future-date phrases are also
// what severity classification keys on, so any validator wired into the resolver
// must use them verbatim.
const (
	IssueEndInFuture      = "End date is in the future"
	IssueStartInFuture    = "Start date is in the future"
	IssueStartAfterEnd    = "Start date is after end date"
	IssueNegativeDuration = "Date range has negative duration"
	IssueConfidenceRange  = "Confidence out of range"
	IssueMissingBounds    = "Missing start or end date"
)

// IssueSeverity decides how loudly a corrected context is logged.
type IssueSeverity string

const (
	// SeverityExpected covers clients referencing dates past their own stale clock.
	SeverityExpected IssueSeverity = "expected"
	// SeveritySignificant points at a defect in the extractor that produced the context.
	SeveritySignificant IssueSeverity = "significant"
)

// ClassifyIssues returns SeverityExpected when every issue is a future-date issue.
// Matching is by substring, so any other phrase (including new vocabulary a
// validator might grow) counts as significant.
func ClassifyIssues(issues []string) IssueSeverity {
	for _, issue := range issues {
		if !IsFutureDateIssue(issue) {
			return SeveritySignificant
		}
	}
	return SeverityExpected
}

// IsFutureDateIssue reports whether issue mentions one of the two future-date phrases.
func IsFutureDateIssue(issue string) bool {
	return strings.Contains(issue, IssueEndInFuture) || strings.Contains(issue, IssueStartInFuture)
}

// SignificantIssues filters issues down to the ones ClassifyIssues would escalate.
func SignificantIssues(issues []string) []string {
	var out []string
	for _, issue := range issues {
		if !IsFutureDateIssue(issue) {
			out = append(out, issue)
		}
	}
	return out
}
