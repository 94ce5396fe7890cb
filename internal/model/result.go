package model

import "time"

// EvaluationResult is the audit result for one page.
type EvaluationResult struct {
	// URL is the audited page address.
	URL string `json:"url"`

	// Score is clamp(0, 100, 100 - sum of finding penalties).
	Score int `json:"score"`

	// Findings are ordered by rule registry order, then by each rule's
	// emission order. Performance findings come last.
	Findings []Finding `json:"findings"`

	// Timestamp is when the evaluation was produced.
	Timestamp time.Time `json:"timestamp"`

	// Perf is present only when performance sampling was requested.
	Perf *MetricSet `json:"perf,omitempty"`
}

// Counts tallies the result's findings by severity.
func (r *EvaluationResult) Counts() SeverityCounts {
	return CountSeverities(r.Findings)
}

// HasErrors reports whether any finding has error severity.
func (r *EvaluationResult) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			return true
		}
	}
	return false
}

// PerfScore returns the performance score and whether one is available.
func (r *EvaluationResult) PerfScore() (int, bool) {
	if r.Perf == nil {
		return 0, false
	}
	return r.Perf.PerfScore, true
}

// ComparisonResult pairs two evaluations head-to-head.
// Derived views (unique findings, metric deltas) are computed on demand by
// the compare package and never stored here.
type ComparisonResult struct {
	Primary    *EvaluationResult `json:"primary"`
	Competitor *EvaluationResult `json:"competitor"`

	// ScoreDelta is Primary.Score - Competitor.Score.
	ScoreDelta int `json:"score_delta"`

	// PerfScoreDelta is set only when both sides carry performance data.
	PerfScoreDelta *int `json:"perf_score_delta,omitempty"`
}
