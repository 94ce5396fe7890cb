package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity represents how much a finding hurts the SEO score.
//
// Constants are iota-based so that comparisons and sorting stay cheap; the
// lowercase String() form is what appears in reports and JSON.
type Severity int

const (
	// SeverityInfo is an opportunity rather than a defect (penalty 2).
	SeverityInfo Severity = iota

	// SeverityWarning is a degradation that search engines tolerate (penalty 5).
	SeverityWarning

	// SeverityError is a defect that directly hurts indexing or ranking (penalty 10).
	SeverityError
)

// Penalty points subtracted from the score per finding of each severity.
const (
	ErrorPenalty   = 10
	WarningPenalty = 5
	InfoPenalty    = 2
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Penalty returns the number of points a finding of this severity costs.
func (s Severity) Penalty() int {
	switch s {
	case SeverityError:
		return ErrorPenalty
	case SeverityWarning:
		return WarningPenalty
	case SeverityInfo:
		return InfoPenalty
	default:
		return 0
	}
}

// ParseSeverity converts a severity name back into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalJSON encodes the severity as its lowercase name.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity from its name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("severity must be a string: %w", err)
	}
	parsed, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
