package config

import (
	"fmt"
	"maps"
	"net/url"
	"strings"

	"github.com/nao1215/seoscan/internal/fetcher"
	"github.com/nao1215/seoscan/internal/rules"
)

// SiteConfig holds settings for requests to one host.
type SiteConfig struct {
	// Cookie is sent as the Cookie header, e.g. "session=abc; theme=dark".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the global User-Agent.
	UserAgent string `yaml:"user_agent,omitempty"`

	// DisabledRules names rules to skip for this host.
	DisabledRules []string `yaml:"disabled_rules,omitempty"`
}

// File is the structure of the .seoscan configuration file.
type File struct {
	// Sites maps hostnames (e.g. "example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every host unless overridden.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// SiteConfigFor returns the settings for host: defaults overlaid by the
// site entry. Headers are merged key by key; disabled rules accumulate.
func (cf *File) SiteConfigFor(host string) SiteConfig {
	result := cf.Defaults
	result.Headers = maps.Clone(cf.Defaults.Headers)
	result.DisabledRules = append([]string(nil), cf.Defaults.DisabledRules...)

	site, ok := cf.Sites[strings.ToLower(host)]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if site.UserAgent != "" {
		result.UserAgent = site.UserAgent
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		maps.Copy(result.Headers, site.Headers)
	}
	result.DisabledRules = append(result.DisabledRules, site.DisabledRules...)
	return result
}

// FetchOptions adapts the settings for u's host to the fetcher.
func (cf *File) FetchOptions(u *url.URL) fetcher.SiteOptions {
	sc := cf.SiteConfigFor(u.Hostname())
	return fetcher.SiteOptions{
		UserAgent: sc.UserAgent,
		Cookie:    sc.Cookie,
		Headers:   sc.Headers,
	}
}

// Validate checks that every disabled rule name exists.
func (cf *File) Validate() error {
	if err := rules.ValidateNames(cf.Defaults.DisabledRules); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	for host, sc := range cf.Sites {
		if err := rules.ValidateNames(sc.DisabledRules); err != nil {
			return fmt.Errorf("sites.%s: %w", host, err)
		}
	}
	return nil
}
