package perf

import (
	"fmt"
	"math"
	"strconv"

	"github.com/nao1215/seoscan/internal/model"
)

// Sample is one raw measurement. Every field except CLS is in milliseconds.
type Sample struct {
	LCP              float64 `json:"lcp"`
	CLS              float64 `json:"cls"`
	FCP              float64 `json:"fcp"`
	TTFB             float64 `json:"ttfb"`
	LoadTime         float64 `json:"load_time"`
	DOMContentLoaded float64 `json:"dom_content_loaded"`
}

// definition describes how one metric is named, rated, and weighted.
type definition struct {
	key        model.MetricKey
	name       string
	unit       model.Unit
	thresholds model.Thresholds
	weight     float64
}

// definitions are in finding order: lcp, cls, fcp, ttfb, load, dcl.
var definitions = []definition{
	{model.KeyLCP, "Largest Contentful Paint", model.UnitMillis, model.Thresholds{Good: 2500, Poor: 4000}, 0.25},
	{model.KeyCLS, "Cumulative Layout Shift", model.UnitScore, model.Thresholds{Good: 0.1, Poor: 0.25}, 0.25},
	{model.KeyFCP, "First Contentful Paint", model.UnitMillis, model.Thresholds{Good: 1800, Poor: 3000}, 0.10},
	{model.KeyTTFB, "Time to First Byte", model.UnitMillis, model.Thresholds{Good: 800, Poor: 1800}, 0.10},
	{model.KeyLoadTime, "Total Page Load", model.UnitMillis, model.Thresholds{Good: 3000, Poor: 6000}, 0.20},
	{model.KeyDOMContentLoaded, "DOM Content Loaded", model.UnitMillis, model.Thresholds{Good: 1500, Poor: 3500}, 0.10},
}

// Normalize rounds each raw value (milliseconds to integers, CLS to three
// decimals), rates the rounded value, and computes the performance score.
// Rating the rounded value keeps Rating == Thresholds.Classify(Value).
func Normalize(s Sample) *model.MetricSet {
	raw := map[model.MetricKey]float64{
		model.KeyLCP:              s.LCP,
		model.KeyCLS:              s.CLS,
		model.KeyFCP:              s.FCP,
		model.KeyTTFB:             s.TTFB,
		model.KeyLoadTime:         s.LoadTime,
		model.KeyDOMContentLoaded: s.DOMContentLoaded,
	}

	built := make(map[model.MetricKey]model.Metric, len(definitions))
	for _, d := range definitions {
		value := round(raw[d.key], d.unit)
		built[d.key] = model.Metric{
			Name:       d.name,
			Value:      value,
			Unit:       d.unit,
			Rating:     d.thresholds.Classify(value),
			Thresholds: d.thresholds,
		}
	}

	set := &model.MetricSet{
		LCP:              built[model.KeyLCP],
		CLS:              built[model.KeyCLS],
		FCP:              built[model.KeyFCP],
		TTFB:             built[model.KeyTTFB],
		LoadTime:         built[model.KeyLoadTime],
		DOMContentLoaded: built[model.KeyDOMContentLoaded],
	}
	set.PerfScore = Score(set)
	return set
}

// Score computes the weighted performance score. Each metric contributes
// 100 at or below its good threshold, 0 at or above its poor threshold, and
// a linear interpolation in between.
func Score(set *model.MetricSet) int {
	total := 0.0
	for _, d := range definitions {
		m, _ := set.Get(d.key)
		span := d.thresholds.Poor - d.thresholds.Good
		headroom := math.Max(0, math.Min(span, d.thresholds.Poor-m.Value))
		total += headroom / span * 100 * d.weight
	}
	return int(math.Round(math.Max(0, math.Min(100, total))))
}

// Findings emits one finding per metric that is not rated good: an error
// for poor and a warning for needs-improvement.
func Findings(set *model.MetricSet) []model.Finding {
	findings := make([]model.Finding, 0)
	for _, d := range definitions {
		m, _ := set.Get(d.key)
		var (
			severity model.Severity
			verdict  string
		)
		switch m.Rating {
		case model.RatingPoor:
			severity, verdict = model.SeverityError, "is poor"
		case model.RatingNeedsImprovement:
			severity, verdict = model.SeverityWarning, "needs improvement"
		default:
			continue
		}
		findings = append(findings, model.Finding{
			Rule:     "perf",
			Severity: severity,
			Message:  fmt.Sprintf("%s %s (%s)", m.Name, verdict, FormatValue(m)),
			Fix:      "Aim for under " + formatNumber(m.Thresholds.Good) + unitSuffix(m.Unit),
		})
	}
	return findings
}

// FormatValue renders a metric value with its unit, e.g. "2600ms" or "0.12".
func FormatValue(m model.Metric) string {
	return formatNumber(m.Value) + unitSuffix(m.Unit)
}

func unitSuffix(u model.Unit) string {
	if u == model.UnitMillis {
		return "ms"
	}
	return ""
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func round(v float64, unit model.Unit) float64 {
	if unit == model.UnitScore {
		return math.Round(v*1000) / 1000
	}
	return math.Round(v)
}
