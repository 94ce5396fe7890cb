package rules

import (
	"fmt"
	"strings"

	"github.com/nao1215/seoscan/internal/document"
	"github.com/nao1215/seoscan/internal/model"
)

// socialTag is a required social-preview meta tag.
type socialTag struct {
	key   string
	label string
}

var openGraphTags = []socialTag{
	{key: "og:title", label: "Open Graph title"},
	{key: "og:description", label: "Open Graph description"},
	{key: "og:image", label: "Open Graph image"},
	{key: "og:url", label: "Open Graph URL"},
	{key: "og:type", label: "Open Graph type"},
}

var twitterTags = []socialTag{
	{key: "twitter:card", label: "Twitter card type"},
	{key: "twitter:title", label: "Twitter title"},
	{key: "twitter:description", label: "Twitter description"},
	{key: "twitter:image", label: "Twitter image"},
}

// OpenGraphRule checks that the Open Graph tags used by social networks for
// link previews are present.
type OpenGraphRule struct{}

// NewOpenGraphRule creates a new OpenGraphRule.
func NewOpenGraphRule() *OpenGraphRule {
	return &OpenGraphRule{}
}

// Name returns the rule name.
func (r *OpenGraphRule) Name() string {
	return NameOpenGraph
}

// Evaluate implements Rule.
func (r *OpenGraphRule) Evaluate(in *Input) []model.Finding {
	findings := make([]model.Finding, 0)
	for _, tag := range openGraphTags {
		if metaContent(in.Document, "property", tag.key) != "" {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:     "og-" + strings.TrimPrefix(tag.key, "og:"),
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("Missing %s (%s)", tag.label, tag.key),
			Fix:      fmt.Sprintf(`Add <meta property="%s" content="..."> for better social media sharing`, tag.key),
		})
	}
	return findings
}

// TwitterRule checks the Twitter/X card tags. Both name= and property=
// spellings are accepted since publishers use either.
type TwitterRule struct{}

// NewTwitterRule creates a new TwitterRule.
func NewTwitterRule() *TwitterRule {
	return &TwitterRule{}
}

// Name returns the rule name.
func (r *TwitterRule) Name() string {
	return NameTwitter
}

// Evaluate implements Rule.
func (r *TwitterRule) Evaluate(in *Input) []model.Finding {
	findings := make([]model.Finding, 0)
	for _, tag := range twitterTags {
		if metaContent(in.Document, "name", tag.key) != "" || metaContent(in.Document, "property", tag.key) != "" {
			continue
		}
		findings = append(findings, model.Finding{
			Rule:     "twitter-" + strings.TrimPrefix(tag.key, "twitter:"),
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("Missing %s (%s)", tag.label, tag.key),
			Fix:      fmt.Sprintf(`Add <meta name="%s" content="..."> for better Twitter/X card previews`, tag.key),
		})
	}
	return findings
}

// metaContent returns the trimmed content of the first meta tag whose attr
// equals key.
func metaContent(doc document.Document, attr, key string) string {
	content, _ := document.FirstAttr(doc, fmt.Sprintf(`meta[%s=%q]`, attr, key), "content")
	return strings.TrimSpace(content)
}
