// Package compare diffs two evaluation results head-to-head.
//
// "Primary" is the user's own page and "competitor" the page it is measured
// against. Deltas are signed so that a positive value always favors the
// primary side, except for raw metric deltas where lower values are better
// and the Winner field carries the verdict.
package compare

import (
	"math"

	"github.com/nao1215/seoscan/internal/model"
)

// Winner is the verdict of one head-to-head line.
type Winner string

// Verdicts.
const (
	WinnerPrimary    Winner = "YOU WIN"
	WinnerCompetitor Winner = "COMPETITOR WINS"
	WinnerTie        Winner = "TIE"
)

// MetricOrder is the display order of metrics in comparisons.
var MetricOrder = []model.MetricKey{
	model.KeyLCP,
	model.KeyFCP,
	model.KeyTTFB,
	model.KeyCLS,
	model.KeyLoadTime,
	model.KeyDOMContentLoaded,
}

// New pairs two results and computes the score deltas.
func New(primary, competitor *model.EvaluationResult) *model.ComparisonResult {
	c := &model.ComparisonResult{
		Primary:    primary,
		Competitor: competitor,
		ScoreDelta: primary.Score - competitor.Score,
	}
	pPerf, pok := primary.PerfScore()
	cPerf, cok := competitor.PerfScore()
	if pok && cok {
		d := pPerf - cPerf
		c.PerfScoreDelta = &d
	}
	return c
}

// Decide returns the winner for a delta computed as primary minus
// competitor, or competitor minus primary for counts where fewer is better.
func Decide(delta float64, higherIsBetter bool) Winner {
	if !higherIsBetter {
		delta = -delta
	}
	switch {
	case delta > 0:
		return WinnerPrimary
	case delta < 0:
		return WinnerCompetitor
	default:
		return WinnerTie
	}
}

// Line is one integer comparison such as the SEO score or error count.
type Line struct {
	Primary    int    `json:"primary"`
	Competitor int    `json:"competitor"`
	Delta      int    `json:"delta"`
	Winner     Winner `json:"winner"`
}

// MetricLine compares one performance metric.
type MetricLine struct {
	Key        model.MetricKey `json:"key"`
	Primary    model.Metric    `json:"primary"`
	Competitor model.Metric    `json:"competitor"`

	// Delta is primary minus competitor. Lower is better, so a negative
	// delta means the primary page wins.
	Delta  float64 `json:"delta"`
	Winner Winner  `json:"winner"`
}

// Summary is the full derived view of a comparison.
type Summary struct {
	Score     Line  `json:"score"`
	PerfScore *Line `json:"perf_score,omitempty"`

	// Errors and Warnings use competitor minus primary deltas, so a
	// positive delta means the primary page has fewer issues.
	Errors   Line `json:"errors"`
	Warnings Line `json:"warnings"`

	// Metrics is empty unless both sides carry performance data.
	Metrics []MetricLine `json:"metrics,omitempty"`

	OnlyPrimary    []model.Finding `json:"only_primary"`
	OnlyCompetitor []model.Finding `json:"only_competitor"`
}

// Summarize derives every head-to-head view from c.
func Summarize(c *model.ComparisonResult) *Summary {
	p, q := c.Primary, c.Competitor
	pc, qc := p.Counts(), q.Counts()

	s := &Summary{
		Score: Line{
			Primary:    p.Score,
			Competitor: q.Score,
			Delta:      c.ScoreDelta,
			Winner:     Decide(float64(c.ScoreDelta), true),
		},
		Errors:         countLine(pc.Errors, qc.Errors),
		Warnings:       countLine(pc.Warnings, qc.Warnings),
		OnlyPrimary:    UniqueFindings(p.Findings, q.Findings),
		OnlyCompetitor: UniqueFindings(q.Findings, p.Findings),
	}

	if c.PerfScoreDelta != nil && p.Perf != nil && q.Perf != nil {
		s.PerfScore = &Line{
			Primary:    p.Perf.PerfScore,
			Competitor: q.Perf.PerfScore,
			Delta:      *c.PerfScoreDelta,
			Winner:     Decide(float64(*c.PerfScoreDelta), true),
		}
		s.Metrics = MetricLines(p.Perf, q.Perf)
	}
	return s
}

// MetricLines compares every metric of two sets in display order.
func MetricLines(primary, competitor *model.MetricSet) []MetricLine {
	lines := make([]MetricLine, 0, len(MetricOrder))
	for _, key := range MetricOrder {
		pm, _ := primary.Get(key)
		cm, _ := competitor.Get(key)
		delta := pm.Value - cm.Value
		if pm.Unit == model.UnitScore {
			delta = math.Round(delta*1000) / 1000
		}
		lines = append(lines, MetricLine{
			Key:        key,
			Primary:    pm,
			Competitor: cm,
			Delta:      delta,
			Winner:     Decide(delta, false),
		})
	}
	return lines
}

// UniqueFindings returns the findings of a whose message does not appear in
// b, preserving a's order. Identity is the message text alone.
func UniqueFindings(a, b []model.Finding) []model.Finding {
	seen := make(map[string]struct{}, len(b))
	for _, f := range b {
		seen[f.Message] = struct{}{}
	}
	out := make([]model.Finding, 0)
	for _, f := range a {
		if _, ok := seen[f.Message]; !ok {
			out = append(out, f)
		}
	}
	return out
}

func countLine(primary, competitor int) Line {
	delta := competitor - primary
	return Line{
		Primary:    primary,
		Competitor: competitor,
		Delta:      delta,
		Winner:     Decide(float64(delta), true),
	}
}
