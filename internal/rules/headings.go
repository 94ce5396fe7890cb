package rules

import (
	"fmt"

	"github.com/nao1215/seoscan/internal/model"
)

// HeadingsRule checks the h1 count and heading hierarchy.
type HeadingsRule struct{}

// NewHeadingsRule creates a new HeadingsRule.
func NewHeadingsRule() *HeadingsRule {
	return &HeadingsRule{}
}

// Name returns the rule name.
func (r *HeadingsRule) Name() string {
	return NameHeadings
}

// Evaluate implements Rule.
func (r *HeadingsRule) Evaluate(in *Input) []model.Finding {
	findings := make([]model.Finding, 0)

	h1Count := len(in.Document.SelectAll("h1"))
	switch {
	case h1Count == 0:
		findings = append(findings, model.Finding{
			Rule:     "heading-h1-missing",
			Severity: model.SeverityError,
			Message:  "No <h1> tag found on the page",
			Fix:      "Add exactly one <h1> tag with the primary page heading",
		})
	case h1Count > 1:
		findings = append(findings, model.Finding{
			Rule:     "heading-h1-multiple",
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("Found %d <h1> tags (should be exactly 1)", h1Count),
			Fix:      "Use a single <h1> for the main page heading; use <h2>-<h6> for subsections",
		})
	}

	levels := make([]int, 0)
	for _, el := range in.Document.SelectAll("h1, h2, h3, h4, h5, h6") {
		tag := el.Tag()
		if len(tag) == 2 && tag[1] >= '1' && tag[1] <= '6' {
			levels = append(levels, int(tag[1]-'0'))
		}
	}

	// Only the first skip is reported.
	for i := 1; i < len(levels); i++ {
		prev, cur := levels[i-1], levels[i]
		if cur > prev+1 {
			findings = append(findings, model.Finding{
				Rule:     "heading-skip-level",
				Severity: model.SeverityWarning,
				Message:  fmt.Sprintf("Heading level skipped: <h%d> → <h%d>", prev, cur),
				Fix:      fmt.Sprintf("Don't skip heading levels. Use <h%d> before <h%d>", prev+1, cur),
			})
			break
		}
	}

	return findings
}
