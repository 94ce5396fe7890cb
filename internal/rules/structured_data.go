package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// StructuredDataRule checks for JSON-LD blocks and validates their syntax.
// Schema.org vocabulary is not checked; only that each block parses.
type StructuredDataRule struct{}

// NewStructuredDataRule creates a new StructuredDataRule.
func NewStructuredDataRule() *StructuredDataRule {
	return &StructuredDataRule{}
}

// Name returns the rule name.
func (r *StructuredDataRule) Name() string {
	return NameStructuredData
}

// Evaluate implements Rule.
func (r *StructuredDataRule) Evaluate(in *Input) []model.Finding {
	blocks := in.Document.SelectAll(`script[type="application/ld+json"]`)
	if len(blocks) == 0 {
		return []model.Finding{{
			Rule:     "structured-data-missing",
			Severity: model.SeverityInfo,
			Message:  "No JSON-LD structured data found",
			Fix:      `Add <script type="application/ld+json"> with schema.org markup to enhance search result appearance`,
		}}
	}

	findings := make([]model.Finding, 0)
	for i, block := range blocks {
		content := strings.TrimSpace(block.Text())
		if content == "" {
			continue
		}
		if json.Valid([]byte(content)) {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:     "structured-data-invalid",
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("JSON-LD block #%d contains invalid JSON", i+1),
			Fix:      "Fix the JSON syntax in your structured data script tag",
		})
	}
	return findings
}
