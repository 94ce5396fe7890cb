package model

// Rating classifies a metric value against its thresholds.
type Rating string

const (
	// RatingGood means the value is at or below the good threshold.
	RatingGood Rating = "good"
	// RatingNeedsImprovement means the value is above good but at or below poor.
	RatingNeedsImprovement Rating = "needs-improvement"
	// RatingPoor means the value is above the poor threshold.
	RatingPoor Rating = "poor"
)

// Unit is the measurement unit of a metric.
type Unit string

const (
	// UnitMillis is milliseconds.
	UnitMillis Unit = "ms"
	// UnitScore is a unitless score (CLS).
	UnitScore Unit = "score"
)

// Thresholds holds the inclusive upper bounds of the good and
// needs-improvement bands. Lower values are better.
type Thresholds struct {
	Good float64 `json:"good"`
	Poor float64 `json:"poor"`
}

// Classify rates value against the thresholds. Both bounds are inclusive.
func (t Thresholds) Classify(value float64) Rating {
	switch {
	case value <= t.Good:
		return RatingGood
	case value <= t.Poor:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}

// Metric is one rated performance measurement.
// Rating always equals Thresholds.Classify(Value).
type Metric struct {
	Name       string     `json:"name"`
	Value      float64    `json:"value"`
	Unit       Unit       `json:"unit"`
	Rating     Rating     `json:"rating"`
	Thresholds Thresholds `json:"thresholds"`
}

// MetricSet is the full set of performance metrics for one page plus the
// weighted performance sub-score.
type MetricSet struct {
	LCP              Metric `json:"lcp"`
	CLS              Metric `json:"cls"`
	FCP              Metric `json:"fcp"`
	TTFB             Metric `json:"ttfb"`
	LoadTime         Metric `json:"load_time"`
	DOMContentLoaded Metric `json:"dom_content_loaded"`

	// PerfScore is the weighted 0-100 performance score.
	PerfScore int `json:"perf_score"`
}

// MetricKey identifies a metric within a MetricSet.
type MetricKey string

// Metric keys.
const (
	KeyLCP              MetricKey = "lcp"
	KeyCLS              MetricKey = "cls"
	KeyFCP              MetricKey = "fcp"
	KeyTTFB             MetricKey = "ttfb"
	KeyLoadTime         MetricKey = "load_time"
	KeyDOMContentLoaded MetricKey = "dom_content_loaded"
)

// Get returns the metric stored under key.
func (m *MetricSet) Get(key MetricKey) (Metric, bool) {
	switch key {
	case KeyLCP:
		return m.LCP, true
	case KeyCLS:
		return m.CLS, true
	case KeyFCP:
		return m.FCP, true
	case KeyTTFB:
		return m.TTFB, true
	case KeyLoadTime:
		return m.LoadTime, true
	case KeyDOMContentLoaded:
		return m.DOMContentLoaded, true
	default:
		return Metric{}, false
	}
}
