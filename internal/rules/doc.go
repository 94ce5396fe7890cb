// Package rules implements the SEO checks run against a fetched page.
//
// Each rule inspects the document (and, for robots and sitemap, the extra
// files fetched alongside it) and returns zero or more findings. Rules are
// pure and independent of each other. A RuleSet runs them in a fixed
// registry order so that the resulting finding list is deterministic:
//
//	meta, opengraph, twitter, headings, images, structured-data,
//	robots, sitemap, links
//
// Individual rules can be disabled by name through configuration.
package rules
