package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/config"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <your-url> <competitor-url>",
		Short: "Compare your page against a competitor",
		Long: `Compare audits two pages concurrently and reports them head-to-head:
- SEO score and performance score with deltas and winners
- Error and warning counts
- Per-metric Core Web Vitals (with --perf)
- Issues that only one side has

Both pages are evaluated with the rule set configured for your page's
host so the scores are comparable.

Examples:
  seoscan compare example.com competitor.com
  seoscan compare --perf --markdown -o vs.md example.com competitor.com`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	addAuditFlags(cmd)
	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	primary, _ := config.NormalizeURL(args[0])    //nolint:errcheck // validated above
	competitor, _ := config.NormalizeURL(args[1]) //nolint:errcheck // validated above

	logger := newLogger(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	result, err := routed{a: a, withPerf: cfg.Perf}.Compare(ctx, primary, competitor)
	if err != nil {
		return err
	}

	if err := saveResult(ctx, db, primary, result.Primary, false); err != nil {
		logger.Error("failed to save scan", "url", primary, "error", err)
	}
	if err := saveResult(ctx, db, competitor, result.Competitor, true); err != nil {
		logger.Error("failed to save scan", "url", competitor, "error", err)
	}

	out, closeOut, err := openOutput(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer closeOut() //nolint:errcheck

	if _, err := newReportWriter(cfg, out, cmd.OutOrStdout()).WriteComparison(result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
