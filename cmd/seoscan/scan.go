package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/pipeline"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [url...]",
		Short: "Audit web pages for SEO issues",
		Long: `Scan fetches each page with its robots.txt and sitemap.xml and checks:
- Title, meta description, viewport, canonical and lang
- Open Graph and Twitter cards
- Heading structure and image alt text
- JSON-LD structured data
- robots.txt, sitemap.xml and link counts

Each page gets a 0-100 score. The command exits with status 1 when any
error-level finding is present, so it can gate CI pipelines.

Examples:
  # Audit one page (https:// is assumed)
  seoscan scan example.com

  # Audit several pages, four at a time
  seoscan scan --batch 4 example.com/a example.com/b example.com/c

  # Include Core Web Vitals measured in headless Chromium
  seoscan scan --perf example.com

  # Write a Markdown report
  seoscan scan --markdown -o report.md example.com

Configuration file (.seoscan) example:
  defaults:
    disabled_rules: [sitemap]
  sites:
    staging.example.com:
      cookie: "session=abc123"
      headers:
        Authorization: "Basic dXNlcjpwYXNz"`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	addAuditFlags(cmd)
	addReportFlags(cmd)
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent audits")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	for i, t := range cfg.Targets {
		// Validate already rejected anything NormalizeURL fails on.
		cfg.Targets[i], _ = config.NormalizeURL(t) //nolint:errcheck
	}

	logger := newLogger(cfg.Verbose)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cmd, cfg, logger)
}

// runScan audits cfg.Targets, writes reports, and records results.
func runScan(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"perf", cfg.Perf,
		"saveToDB", cfg.SaveToDB,
	)

	db, err := openHistory(cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	a := newAuditors(cfg, logger, cfg.Perf)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to stop browser", "error", err)
		}
	}()

	start := time.Now()
	jobs, err := a.auditAll(ctx, cfg.Targets, cfg.Perf)
	if err != nil {
		return err
	}
	logger.Info("scan finished", "elapsed", time.Since(start).Round(time.Millisecond))

	return writeScanResults(ctx, cmd, cfg, db, jobs, logger)
}

// writeScanResults reports every job and decides the exit status.
func writeScanResults(ctx context.Context, cmd *cobra.Command, cfg *config.Config, db *database.HistoryDB, jobs []*pipeline.Job, logger *slog.Logger) error {
	out, closeOut, err := openOutput(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck

	w := newReportWriter(cfg, out, cmd.OutOrStdout())

	var failed int
	var hasErrors bool
	for _, job := range jobs {
		if job.Err != nil || job.Result == nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "Scan error for %s: %v\n", job.URL, job.Err)
			continue
		}
		if job.Result.HasErrors() {
			hasErrors = true
		}
		if _, err := w.WriteResult(job.Result); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		if err := saveResult(ctx, db, job.URL, job.Result, false); err != nil {
			logger.Error("failed to save scan", "url", job.URL, "error", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d audits failed", failed, len(jobs))
	}
	if hasErrors {
		return errFindings
	}
	return nil
}
