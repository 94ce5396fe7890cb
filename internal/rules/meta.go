package rules

import (
	"fmt"
	"strings"

	"github.com/nao1215/seoscan/internal/document"
	"github.com/nao1215/seoscan/internal/model"
)

// Length bounds for title and description, in characters.
const (
	titleMinLength       = 30
	titleMaxLength       = 60
	descriptionMinLength = 70
	descriptionMaxLength = 160
)

// MetaRule checks the basic head metadata: title, description, viewport,
// canonical link, and document language.
type MetaRule struct{}

// NewMetaRule creates a new MetaRule.
func NewMetaRule() *MetaRule {
	return &MetaRule{}
}

// Name returns the rule name.
func (r *MetaRule) Name() string {
	return NameMeta
}

// Evaluate implements Rule.
func (r *MetaRule) Evaluate(in *Input) []model.Finding {
	doc := in.Document
	findings := make([]model.Finding, 0)

	findings = append(findings, r.checkTitle(doc)...)
	findings = append(findings, r.checkDescription(doc)...)

	if viewport, _ := document.FirstAttr(doc, `meta[name="viewport"]`, "content"); viewport == "" {
		findings = append(findings, model.Finding{
			Rule:     "meta-viewport",
			Severity: model.SeverityError,
			Message:  `Missing <meta name="viewport"> tag`,
			Fix:      `Add <meta name="viewport" content="width=device-width, initial-scale=1">`,
		})
	}

	if canonical, _ := document.FirstAttr(doc, `link[rel="canonical"]`, "href"); canonical == "" {
		findings = append(findings, model.Finding{
			Rule:     "meta-canonical",
			Severity: model.SeverityWarning,
			Message:  "Missing canonical URL",
			Fix:      `Add <link rel="canonical" href="https://yoursite.com/page"> to prevent duplicate content issues`,
		})
	}

	if lang, _ := document.FirstAttr(doc, "html", "lang"); lang == "" {
		findings = append(findings, model.Finding{
			Rule:     "meta-lang",
			Severity: model.SeverityWarning,
			Message:  "Missing lang attribute on <html> tag",
			Fix:      `Add a lang attribute: <html lang="en"> (use appropriate language code)`,
		})
	}

	return findings
}

func (r *MetaRule) checkTitle(doc document.Document) []model.Finding {
	title := strings.TrimSpace(document.Text(doc, "title"))
	n := runeLen(title)

	switch {
	case title == "":
		return []model.Finding{{
			Rule:     "meta-title",
			Severity: model.SeverityError,
			Message:  "Missing <title> tag",
			Fix:      "Add a <title> tag inside <head> with a descriptive page title (50-60 characters)",
		}}
	case n < titleMinLength:
		return []model.Finding{{
			Rule:     "meta-title-length",
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf(`Title is too short (%d chars): "%s"`, n, title),
			Fix:      "Expand your title to 50-60 characters for optimal display in search results",
		}}
	case n > titleMaxLength:
		head := string([]rune(title)[:titleMaxLength])
		return []model.Finding{{
			Rule:     "meta-title-length",
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf(`Title is too long (%d chars): "%s..."`, n, head),
			Fix:      "Shorten your title to 50-60 characters to avoid truncation in search results",
		}}
	}
	return nil
}

func (r *MetaRule) checkDescription(doc document.Document) []model.Finding {
	raw, _ := document.FirstAttr(doc, `meta[name="description"]`, "content")
	description := strings.TrimSpace(raw)
	n := runeLen(description)

	switch {
	case description == "":
		return []model.Finding{{
			Rule:     "meta-description",
			Severity: model.SeverityError,
			Message:  `Missing <meta name="description"> tag`,
			Fix:      `Add <meta name="description" content="..."> with a compelling summary (150-160 characters)`,
		}}
	case n < descriptionMinLength:
		return []model.Finding{{
			Rule:     "meta-description-length",
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("Meta description is too short (%d chars)", n),
			Fix:      "Expand your meta description to 150-160 characters for better search result snippets",
		}}
	case n > descriptionMaxLength:
		return []model.Finding{{
			Rule:     "meta-description-length",
			Severity: model.SeverityWarning,
			Message:  fmt.Sprintf("Meta description is too long (%d chars)", n),
			Fix:      "Shorten your meta description to 150-160 characters to avoid truncation",
		}}
	}
	return nil
}
