package model

// Finding is one rule outcome.
//
// Findings are immutable once produced. Two findings are considered the
// same issue when their Message text matches; the comparator relies on that.
type Finding struct {
	// Rule is the identifier of the check that produced this finding,
	// e.g. "meta-title" or "perf".
	Rule string `json:"rule"`

	// Severity determines the score penalty.
	Severity Severity `json:"severity"`

	// Message is the human-readable description of the issue.
	Message string `json:"message"`

	// Fix is the remediation hint. Empty when the rule has none.
	Fix string `json:"fix,omitempty"`
}

// SeverityCounts tallies findings per severity.
type SeverityCounts struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Info     int `json:"info"`
}

// Total returns the number of counted findings.
func (c SeverityCounts) Total() int {
	return c.Errors + c.Warnings + c.Info
}

// CountSeverities tallies the given findings by severity.
func CountSeverities(findings []Finding) SeverityCounts {
	var c SeverityCounts
	for _, f := range findings {
		switch f.Severity {
		case SeverityError:
			c.Errors++
		case SeverityWarning:
			c.Warnings++
		case SeverityInfo:
			c.Info++
		}
	}
	return c
}

// FilterBySeverity returns the findings with the given severity, in order.
func FilterBySeverity(findings []Finding, severity Severity) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == severity {
			out = append(out, f)
		}
	}
	return out
}
