package model

import "testing"

func TestThresholdsClassify(t *testing.T) {
	t.Parallel()

	th := Thresholds{Good: 2500, Poor: 4000}
	testCases := []struct {
		name     string
		value    float64
		expected Rating
	}{
		{"zero is good", 0, RatingGood},
		{"good bound is inclusive", 2500, RatingGood},
		{"just above good", 2501, RatingNeedsImprovement},
		{"poor bound is inclusive", 4000, RatingNeedsImprovement},
		{"above poor", 4001, RatingPoor},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := th.Classify(tc.value); got != tc.expected {
				t.Errorf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}

func TestCountSeverities(t *testing.T) {
	t.Parallel()

	findings := []Finding{
		{Rule: "a", Severity: SeverityError},
		{Rule: "b", Severity: SeverityWarning},
		{Rule: "c", Severity: SeverityWarning},
		{Rule: "d", Severity: SeverityInfo},
	}

	c := CountSeverities(findings)
	if c.Errors != 1 || c.Warnings != 2 || c.Info != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
	if c.Total() != 4 {
		t.Errorf("expected total 4, got %d", c.Total())
	}

	warnings := FilterBySeverity(findings, SeverityWarning)
	if len(warnings) != 2 || warnings[0].Rule != "b" || warnings[1].Rule != "c" {
		t.Errorf("expected warnings b and c in order, got %+v", warnings)
	}
}

func TestEvaluationResultHelpers(t *testing.T) {
	t.Parallel()

	t.Run("no perf data", func(t *testing.T) {
		t.Parallel()
		r := &EvaluationResult{Findings: []Finding{{Severity: SeverityWarning}}}
		if r.HasErrors() {
			t.Error("expected no errors")
		}
		if _, ok := r.PerfScore(); ok {
			t.Error("expected no perf score")
		}
	})

	t.Run("with errors and perf", func(t *testing.T) {
		t.Parallel()
		r := &EvaluationResult{
			Findings: []Finding{{Severity: SeverityError}},
			Perf:     &MetricSet{PerfScore: 87},
		}
		if !r.HasErrors() {
			t.Error("expected errors")
		}
		score, ok := r.PerfScore()
		if !ok || score != 87 {
			t.Errorf("expected perf score 87, got %d (ok=%v)", score, ok)
		}
	})
}

func TestMetricSetGet(t *testing.T) {
	t.Parallel()

	m := &MetricSet{CLS: Metric{Name: "Cumulative Layout Shift", Value: 0.05}}
	got, ok := m.Get(KeyCLS)
	if !ok || got.Value != 0.05 {
		t.Errorf("expected CLS 0.05, got %+v (ok=%v)", got, ok)
	}
	if _, ok := m.Get("bogus"); ok {
		t.Error("expected unknown key to be reported missing")
	}
}
