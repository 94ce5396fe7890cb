package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is used for XDG directory paths.
	AppName = "seoscan"

	// DefaultTimeout bounds each HTTP request.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of pages audited at once. Browser
	// sampling opens a tab per audit, so this stays small.
	DefaultBatchSize = 3

	// DefaultUserAgent identifies seoscan in HTTP requests.
	DefaultUserAgent = "seoscan/1.0 (+https://github.com/nao1215/seoscan)"

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultPerfTimeout bounds one browser measurement.
	DefaultPerfTimeout = 30 * time.Second

	// DefaultPerfSettle is how long the page is observed after network idle
	// so late layout shifts are counted.
	DefaultPerfSettle = 2 * time.Second

	// DefaultPort is the dashboard API port.
	DefaultPort = 3749

	// DefaultRateLimit and DefaultRateBurst shape per-client API traffic.
	DefaultRateLimit = 5.0
	DefaultRateBurst = 10
)

// Config holds all runtime options. It is built from CLI flags and passed
// down explicitly.
type Config struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// BatchSize is the number of concurrent audits.
	BatchSize int

	// Verbose enables debug logging and info-level findings in text output.
	Verbose bool

	// ConfigFilePath is an explicit .seoscan path. When empty the current
	// directory and then the home directory are searched.
	ConfigFilePath string

	// SiteConfigs holds per-site settings from the config file.
	SiteConfigs *File

	// JSONReport and MarkdownReport select the output format. They are
	// mutually exclusive; neither means plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the report to a file instead of stdout.
	ReportFile string

	// Targets are the URLs to audit.
	Targets []string

	// DBDir is the directory holding the history database.
	DBDir string

	// SaveToDB records scans in the history database.
	SaveToDB bool

	// RequestDelay is the minimum gap between outgoing requests.
	RequestDelay time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps the bytes read from a page.
	MaxBodySize int64

	// Perf enables headless browser performance sampling.
	Perf bool

	// PerfTimeout bounds one browser measurement.
	PerfTimeout time.Duration

	// PerfSettle is the post-idle observation window.
	PerfSettle time.Duration

	// BrowserBin is an explicit Chromium binary. Empty lets rod locate or
	// download one.
	BrowserBin string

	// BrowserControlURL connects to a running Chromium's DevTools endpoint
	// instead of launching one.
	BrowserControlURL string

	// Stealth masks headless browser fingerprints.
	Stealth bool

	// BrowserTLS presents a Chrome TLS fingerprint on plain fetches.
	BrowserTLS bool

	// Port is the dashboard API port.
	Port int

	// RateLimit is requests per second per client for the API; RateBurst is
	// the bucket size.
	RateLimit float64
	RateBurst int
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		PerfTimeout: DefaultPerfTimeout,
		PerfSettle:  DefaultPerfSettle,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
		Port:        DefaultPort,
		RateLimit:   DefaultRateLimit,
		RateBurst:   DefaultRateBurst,
	}
}

// XDGDataDir returns the data directory, ~/.local/share/seoscan on Linux.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory, ~/.config/seoscan on Linux.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the scan configuration and returns the first problem.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	for _, t := range c.Targets {
		if _, err := NormalizeURL(t); err != nil {
			return err
		}
	}
	if err := c.ValidateOptions(); err != nil {
		return err
	}
	if c.SiteConfigs != nil {
		return c.SiteConfigs.Validate()
	}
	return nil
}

// ValidateOptions checks everything except targets. Commands that take no
// URLs, such as serve and mcp, use it directly.
func (c *Config) ValidateOptions() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.RequestDelay < 0 {
		return ErrInvalidRequestDelay
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Perf && c.PerfTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
