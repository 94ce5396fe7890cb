package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/audit"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/fetcher"
	"github.com/nao1215/seoscan/internal/log"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/perf"
	"github.com/nao1215/seoscan/internal/pipeline"
	"github.com/nao1215/seoscan/internal/report"
	"github.com/nao1215/seoscan/internal/rules"
)

// addAuditFlags registers the flags of every command that fetches pages.
func addAuditFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("config", "c", "",
		"Configuration file path (default: .seoscan in current or home directory)")
	f.DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each HTTP request")
	f.Duration("delay", 0,
		"Minimum delay between outgoing requests")
	f.String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with requests")
	f.Bool("browser-tls", false,
		"Present a Chrome TLS fingerprint when fetching pages")
	f.Bool("stealth", false,
		"Mask headless browser fingerprints during performance sampling")
	f.String("browser-bin", "",
		"Chromium binary for performance sampling (default: locate or download)")
	f.String("browser-url", "",
		"DevTools URL of a running Chromium to use instead of launching one")
	f.Duration("perf-timeout", config.DefaultPerfTimeout,
		"Timeout for one browser measurement")
}

// addReportFlags registers output and sampling flags for scan and compare.
func addReportFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	f.BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	f.StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
	f.Bool("perf", false,
		"Measure Core Web Vitals in headless Chromium")
	f.Bool("no-save", false,
		"Do not record results in the history database")
}

// buildConfig creates a Config from the flags the command defines.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.Targets = args
	flags := cmd.Flags()

	var err error
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.RequestDelay, err = flags.GetDuration("delay"); err != nil {
		return nil, err
	}
	if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
		return nil, err
	}
	if cfg.BrowserTLS, err = flags.GetBool("browser-tls"); err != nil {
		return nil, err
	}
	if cfg.Stealth, err = flags.GetBool("stealth"); err != nil {
		return nil, err
	}
	if cfg.BrowserBin, err = flags.GetString("browser-bin"); err != nil {
		return nil, err
	}
	if cfg.BrowserControlURL, err = flags.GetString("browser-url"); err != nil {
		return nil, err
	}
	if cfg.PerfTimeout, err = flags.GetDuration("perf-timeout"); err != nil {
		return nil, err
	}

	if flags.Lookup("json") != nil {
		if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
			return nil, err
		}
		if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
			return nil, err
		}
		if cfg.ReportFile, err = flags.GetString("output"); err != nil {
			return nil, err
		}
		if cfg.Perf, err = flags.GetBool("perf"); err != nil {
			return nil, err
		}
		noSave, err := flags.GetBool("no-save")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = !noSave
	}
	if flags.Lookup("batch") != nil {
		if cfg.BatchSize, err = flags.GetInt("batch"); err != nil {
			return nil, err
		}
	}

	cfg.SiteConfigs, err = loadSiteConfigs(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadSiteConfigs loads the config file. A missing file is only an error
// when the user named it explicitly.
func loadSiteConfigs(path string) (*config.File, error) {
	found := config.FindConfigFile(path)
	if found == "" {
		if path != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return &config.File{Sites: make(map[string]config.SiteConfig)}, nil
	}
	cf, err := config.LoadConfigFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	return cf, nil
}

// newLogger writes sanitized logs to stderr.
func newLogger(verbose bool) *slog.Logger {
	return log.NewLogger(os.Stderr, log.Options{Verbose: verbose})
}

// auditors builds per-host auditors that share one fetcher and one
// browser.
type auditors struct {
	cfg     *config.Config
	fetcher *fetcher.Fetcher
	sampler *perf.RodSampler
	logger  *slog.Logger
}

// newAuditors wires the fetcher and, when withSampler is set, a browser
// sampler. The browser is not started until the first measurement.
func newAuditors(cfg *config.Config, logger *slog.Logger, withSampler bool) *auditors {
	opts := []fetcher.Option{
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithMaxBodySize(cfg.MaxBodySize),
		fetcher.WithRequestDelay(cfg.RequestDelay),
		fetcher.WithBrowserTLS(cfg.BrowserTLS),
		fetcher.WithLogger(logger),
	}
	if cfg.SiteConfigs != nil {
		opts = append(opts, fetcher.WithSiteOptions(cfg.SiteConfigs.FetchOptions))
	}

	a := &auditors{
		cfg:     cfg,
		fetcher: fetcher.New(opts...),
		logger:  logger,
	}
	if withSampler {
		a.sampler = newSampler(cfg, logger)
	}
	return a
}

func newSampler(cfg *config.Config, logger *slog.Logger) *perf.RodSampler {
	opts := []perf.RodOption{
		perf.WithBrowserBin(cfg.BrowserBin),
		perf.WithControlURL(cfg.BrowserControlURL),
		perf.WithNoSandbox(os.Geteuid() == 0),
		perf.WithStealth(cfg.Stealth),
		perf.WithSettleDelay(cfg.PerfSettle),
		perf.WithSampleTimeout(cfg.PerfTimeout),
		perf.WithLogger(logger),
	}
	if cfg.SiteConfigs != nil {
		opts = append(opts, perf.WithSiteOptions(cfg.SiteConfigs.FetchOptions))
	}
	return perf.NewRodSampler(opts...)
}

// disabledFor returns the rules switched off for rawURL's host.
func (a *auditors) disabledFor(rawURL string) []string {
	if a.cfg.SiteConfigs == nil {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return a.cfg.SiteConfigs.Defaults.DisabledRules
	}
	return a.cfg.SiteConfigs.SiteConfigFor(u.Hostname()).DisabledRules
}

// forURL returns an auditor with rawURL's rule set. withPerf attaches the
// sampler when one was configured.
func (a *auditors) forURL(rawURL string, withPerf bool) *pipeline.Auditor {
	engineOpts := []audit.Option{
		audit.WithRuleSet(rules.NewRuleSet(rules.WithDisabled(a.disabledFor(rawURL)...))),
	}
	if withPerf && a.sampler != nil {
		engineOpts = append(engineOpts, audit.WithSampler(a.sampler))
	}
	return pipeline.NewAuditor(a.fetcher, audit.NewEngine(engineOpts...),
		pipeline.WithAuditorLogger(a.logger),
		pipeline.WithAuditorConcurrency(a.cfg.BatchSize),
	)
}

// auditAll audits targets and returns one job per target in input order.
// Targets sharing a rule set run together as one batch.
func (a *auditors) auditAll(ctx context.Context, targets []string, withPerf bool) ([]*pipeline.Job, error) {
	jobs := make([]*pipeline.Job, len(targets))
	groups := make(map[string][]int)
	var keys []string
	for i, t := range targets {
		key := strings.Join(a.disabledFor(t), ",")
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], i)
	}

	for _, key := range keys {
		idx := groups[key]
		urls := make([]string, len(idx))
		for j, i := range idx {
			urls[j] = targets[i]
		}
		got, err := a.forURL(urls[0], withPerf).AuditBatch(ctx, urls)
		if err != nil {
			return nil, err
		}
		for j, i := range idx {
			jobs[i] = got[j]
		}
	}
	return jobs, nil
}

// Close stops the browser if one was started.
func (a *auditors) Close() error {
	if a.sampler == nil {
		return nil
	}
	return a.sampler.Close()
}

// routed dispatches every call to the auditor for the URL's host, so the
// dashboard and MCP tools honor per-site disabled rules.
type routed struct {
	a        *auditors
	withPerf bool
}

func (r routed) Audit(ctx context.Context, pageURL string) (*model.EvaluationResult, error) {
	return r.a.forURL(pageURL, r.withPerf).Audit(ctx, pageURL)
}

// Compare evaluates both pages with the primary host's rule set so the
// scores stay comparable.
func (r routed) Compare(ctx context.Context, primaryURL, competitorURL string) (*model.ComparisonResult, error) {
	return r.a.forURL(primaryURL, r.withPerf).Compare(ctx, primaryURL, competitorURL)
}

// reportFormat maps the report flags to a format.
func reportFormat(cfg *config.Config) report.Format {
	switch {
	case cfg.JSONReport:
		return report.FormatJSON
	case cfg.MarkdownReport:
		return report.FormatMarkdown
	default:
		return report.FormatText
	}
}

// newReportWriter renders to out. When the report goes to a file, the
// text report is echoed to stdout as well.
func newReportWriter(cfg *config.Config, out, stdout io.Writer) report.Writer {
	w := report.New(reportFormat(cfg), out, cfg.Verbose)
	if cfg.ReportFile == "" {
		return w
	}
	return report.NewMultiWriter(w, report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)))
}

// openOutput returns the report destination: cfg.ReportFile when set,
// otherwise stdout. The returned closer must be called.
func openOutput(cfg *config.Config, stdout io.Writer) (io.Writer, func() error, error) {
	if cfg.ReportFile == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	// Reports can contain cookie-protected page content; owner only.
	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// openHistory opens the history database, or returns nil when saving is
// disabled.
func openHistory(cfg *config.Config) (*database.HistoryDB, error) {
	if !cfg.SaveToDB {
		return nil, nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// saveResult records result under the site for target. A nil db is a
// no-op.
func saveResult(ctx context.Context, db *database.HistoryDB, target string, result *model.EvaluationResult, competitor bool) error {
	if db == nil {
		return nil
	}
	site, err := db.EnsureSite(ctx, target, competitor)
	if err != nil {
		return fmt.Errorf("failed to register site: %w", err)
	}
	if _, err := db.SaveScan(ctx, site.ID, result); err != nil {
		return fmt.Errorf("failed to save scan: %w", err)
	}
	return nil
}
