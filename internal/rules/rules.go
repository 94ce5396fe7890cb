package rules

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/nao1215/seoscan/internal/document"
	"github.com/nao1215/seoscan/internal/model"
)

// Rule names, in registry order.
const (
	NameMeta           = "meta"
	NameOpenGraph      = "opengraph"
	NameTwitter        = "twitter"
	NameHeadings       = "headings"
	NameImages         = "images"
	NameStructuredData = "structured-data"
	NameRobots         = "robots"
	NameSitemap        = "sitemap"
	NameLinks          = "links"
)

// Rule is a single SEO check.
type Rule interface {
	// Name returns the rule name used for registry lookup and configuration.
	Name() string

	// Evaluate inspects the input and returns findings in emission order.
	// It must not mutate the input.
	Evaluate(in *Input) []model.Finding
}

// Input is everything a rule may look at.
type Input struct {
	// Document is the parsed page.
	Document document.Document

	// URL is the page address, used to resolve relative links.
	URL string

	// Extras holds auxiliary files fetched from the page's origin.
	Extras Extras
}

// Extras holds the robots and sitemap file contents. An empty string means
// the file was not available.
type Extras struct {
	RobotsTxt  string `json:"robots_txt,omitempty"`
	SitemapXML string `json:"sitemap_xml,omitempty"`
}

// Options configures which rules a RuleSet runs.
type Options struct {
	// Disabled lists rule names to skip.
	Disabled []string
}

// WithDisabled skips the named rules.
func WithDisabled(names ...string) func(*Options) {
	return func(o *Options) {
		o.Disabled = append(o.Disabled, names...)
	}
}

// RuleSet runs an ordered list of rules.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet creates a RuleSet with every built-in rule registered in
// registry order, minus any disabled ones.
func NewRuleSet(opts ...func(*Options)) *RuleSet {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	disabled := make(map[string]bool, len(options.Disabled))
	for _, name := range options.Disabled {
		disabled[name] = true
	}

	rs := &RuleSet{}
	for _, r := range builtins() {
		if disabled[r.Name()] {
			continue
		}
		rs.Register(r)
	}
	return rs
}

// Default returns a RuleSet with every built-in rule enabled.
func Default() *RuleSet {
	return NewRuleSet()
}

func builtins() []Rule {
	return []Rule{
		NewMetaRule(),
		NewOpenGraphRule(),
		NewTwitterRule(),
		NewHeadingsRule(),
		NewImagesRule(),
		NewStructuredDataRule(),
		NewRobotsRule(),
		NewSitemapRule(),
		NewLinksRule(),
	}
}

// BuiltinNames returns the names of all built-in rules in registry order.
func BuiltinNames() []string {
	rs := builtins()
	names := make([]string, len(rs))
	for i, r := range rs {
		names[i] = r.Name()
	}
	return names
}

// ValidateNames returns an error naming the first entry that is not a
// built-in rule.
func ValidateNames(names []string) error {
	known := make(map[string]bool)
	for _, n := range BuiltinNames() {
		known[n] = true
	}
	for _, n := range names {
		if !known[n] {
			return fmt.Errorf("unknown rule %q", n)
		}
	}
	return nil
}

// Register appends a rule to the end of the set.
func (rs *RuleSet) Register(r Rule) {
	rs.rules = append(rs.rules, r)
}

// Names returns the registered rule names in execution order.
func (rs *RuleSet) Names() []string {
	names := make([]string, len(rs.rules))
	for i, r := range rs.rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs every rule once, in order, and concatenates their findings.
// Cancellation is checked between rules.
func (rs *RuleSet) Evaluate(ctx context.Context, in *Input) ([]model.Finding, error) {
	findings := make([]model.Finding, 0)
	for _, r := range rs.rules {
		select {
		case <-ctx.Done():
			return findings, ctx.Err()
		default:
		}
		findings = append(findings, r.Evaluate(in)...)
	}
	return findings, nil
}

// runeLen counts characters as Unicode code points.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// plural returns word, with an "s" appended when n is not 1.
func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
