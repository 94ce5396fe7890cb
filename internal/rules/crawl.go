package rules

import (
	"strings"

	"github.com/nao1215/seoscan/internal/model"
)

// RobotsRule checks that robots.txt exists and does not disallow the whole
// site for every crawler.
type RobotsRule struct{}

// NewRobotsRule creates a new RobotsRule.
func NewRobotsRule() *RobotsRule {
	return &RobotsRule{}
}

// Name returns the rule name.
func (r *RobotsRule) Name() string {
	return NameRobots
}

// Evaluate implements Rule.
func (r *RobotsRule) Evaluate(in *Input) []model.Finding {
	if in.Extras.RobotsTxt == "" {
		return []model.Finding{{
			Rule:     "robots-missing",
			Severity: model.SeverityWarning,
			Message:  "robots.txt not found or not accessible",
			Fix:      "Create a robots.txt file at the root of your domain to guide search engine crawlers",
		}}
	}

	wildcard := false
	for _, line := range strings.Split(strings.ToLower(in.Extras.RobotsTxt), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "user-agent:") {
			wildcard = strings.Contains(line, "*")
		}
		if wildcard && line == "disallow: /" {
			return []model.Finding{{
				Rule:     "robots-blocks-all",
				Severity: model.SeverityError,
				Message:  "robots.txt blocks all crawlers (Disallow: /)",
				Fix:      `Remove "Disallow: /" under "User-agent: *" to allow search engines to crawl your site`,
			}}
		}
	}
	return nil
}

// SitemapRule checks that sitemap.xml exists.
type SitemapRule struct{}

// NewSitemapRule creates a new SitemapRule.
func NewSitemapRule() *SitemapRule {
	return &SitemapRule{}
}

// Name returns the rule name.
func (r *SitemapRule) Name() string {
	return NameSitemap
}

// Evaluate implements Rule.
func (r *SitemapRule) Evaluate(in *Input) []model.Finding {
	if in.Extras.SitemapXML != "" {
		return nil
	}
	return []model.Finding{{
		Rule:     "sitemap-missing",
		Severity: model.SeverityWarning,
		Message:  "sitemap.xml not found or not accessible",
		Fix:      "Create a sitemap.xml at the root of your domain to help search engines discover all your pages",
	}}
}
