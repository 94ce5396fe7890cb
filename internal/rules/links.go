package rules

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// LinksRule counts placeholder anchors and external anchors opened without
// rel="noopener".
type LinksRule struct{}

// NewLinksRule creates a new LinksRule.
func NewLinksRule() *LinksRule {
	return &LinksRule{}
}

// Name returns the rule name.
func (r *LinksRule) Name() string {
	return NameLinks
}

// Evaluate implements Rule.
func (r *LinksRule) Evaluate(in *Input) []model.Finding {
	// An unparseable page URL leaves base nil and skips external links.
	base, _ := url.Parse(in.URL)

	empty, unsafe := 0, 0
	for _, a := range in.Document.SelectAll("a") {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if isPlaceholderHref(href) {
			empty++
			continue
		}
		if base == nil {
			continue
		}
		target, err := base.Parse(href)
		if err != nil {
			continue
		}
		// Non-hierarchical schemes such as mailto: have no host and are
		// counted as external.
		if strings.EqualFold(target.Hostname(), base.Hostname()) {
			continue
		}
		if rel, _ := a.Attr("rel"); !strings.Contains(rel, "noopener") {
			unsafe++
		}
	}

	findings := make([]model.Finding, 0)
	if empty > 0 {
		findings = append(findings, model.Finding{
			Rule:     "link-empty",
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("%d %s with empty or placeholder href", empty, plural(empty, "link")),
			Fix:      "Replace empty href values with valid URLs or use <button> for non-navigation actions",
		})
	}
	if unsafe > 0 {
		findings = append(findings, model.Finding{
			Rule:     "link-noopener",
			Severity: model.SeverityInfo,
			Message:  fmt.Sprintf(`%d external %s missing rel="noopener"`, unsafe, plural(unsafe, "link")),
			Fix:      `Add rel="noopener" (or rel="noopener noreferrer") to external links for security`,
		})
	}
	return findings
}

func isPlaceholderHref(href string) bool {
	return href == "" || href == "#" || href == "javascript:void(0)"
}
