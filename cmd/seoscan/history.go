package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/report"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "Show tracked sites and past scans",
		Long: `History reads the local scan database.

Without arguments it lists every tracked site. With a URL it lists that
site's scans, newest first. With --previous it compares the latest scan
against the one before it, so you can see whether a change helped.

Examples:
  seoscan history
  seoscan history example.com --limit 10
  seoscan history example.com --previous`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", database.DefaultListLimit,
		"Maximum number of scans to list")
	cmd.Flags().BoolP("previous", "p", false,
		"Compare the latest scan with the previous one")
	cmd.Flags().BoolP("json", "j", false,
		"Output the --previous comparison as JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	previous, err := cmd.Flags().GetBool("previous")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// Validate before opening the database.
	var siteURL string
	if len(args) > 0 {
		if siteURL, err = config.NormalizeURL(args[0]); err != nil {
			return err
		}
	} else if previous {
		return errors.New("a URL is required with --previous")
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	out := cmd.OutOrStdout()

	switch {
	case siteURL == "":
		return listSites(ctx, out, db)
	case previous:
		format := report.FormatText
		if jsonOutput {
			format = report.FormatJSON
		}
		return showProgress(ctx, report.New(format, out, getVerboseFlag(cmd)), db, siteURL)
	default:
		return listScans(ctx, out, db, siteURL, limit)
	}
}

// listSites prints every tracked site with its latest score.
func listSites(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sites: %w", err)
	}
	if len(sites) == 0 {
		fmt.Fprintln(out, "No tracked sites found in the database.")
		fmt.Fprintln(out, "\nUse 'seoscan scan <url>' to audit a page.")
		return nil
	}

	latest, err := db.LatestScans(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest scans: %w", err)
	}
	scores := make(map[int64]int, len(latest))
	for _, rec := range latest {
		scores[rec.SiteID] = rec.Score
	}

	fmt.Fprintf(out, "Tracked sites (%d):\n\n", len(sites))
	fmt.Fprintf(out, "  %-6s  %-5s  %-10s  %s\n", "ID", "Score", "Role", "URL")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, s := range sites {
		score := "-"
		if v, ok := scores[s.ID]; ok {
			score = fmt.Sprintf("%d", v)
		}
		role := "own"
		if s.IsCompetitor {
			role = "competitor"
		}
		fmt.Fprintf(out, "  %-6d  %-5s  %-10s  %s\n", s.ID, score, role, s.URL)
	}
	fmt.Fprintln(out, "\nUse 'seoscan history <url>' to see scans for a site.")
	return nil
}

// listScans prints the scan history of siteURL.
func listScans(ctx context.Context, out io.Writer, db *database.HistoryDB, siteURL string, limit int) error {
	site, err := db.GetSiteByURL(ctx, siteURL)
	if errors.Is(err, database.ErrNotFound) {
		fmt.Fprintf(out, "No scan history found for %s\n", siteURL)
		fmt.Fprintln(out, "\nUse 'seoscan scan' to audit this page.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up site: %w", err)
	}

	scans, err := db.ListScans(ctx, site.ID, limit)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}
	if len(scans) == 0 {
		fmt.Fprintf(out, "No scan history found for %s\n", siteURL)
		return nil
	}

	fmt.Fprintf(out, "Scan history for %s (%d scans):\n\n", siteURL, len(scans))
	fmt.Fprintf(out, "  %-6s  %-20s  %-5s  %-5s  %s\n", "ID", "Date", "Score", "Perf", "Issues")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
	for _, rec := range scans {
		perfScore := "-"
		if rec.PerfScore != nil {
			perfScore = fmt.Sprintf("%d", *rec.PerfScore)
		}
		c := rec.Result().Counts()
		fmt.Fprintf(out, "  %-6d  %-20s  %-5d  %-5s  %dE %dW %dI\n",
			rec.ID,
			rec.Timestamp.Local().Format("2006-01-02 15:04:05"),
			rec.Score,
			perfScore,
			c.Errors, c.Warnings, c.Info,
		)
	}
	fmt.Fprintln(out, "\nUse 'seoscan history --previous <url>' to compare the latest two scans.")
	return nil
}

// showProgress compares the latest scan of siteURL against the one before
// it. The latest scan is the primary side, so "YOU WIN" means it improved.
func showProgress(ctx context.Context, w report.Writer, db *database.HistoryDB, siteURL string) error {
	site, err := db.GetSiteByURL(ctx, siteURL)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", siteURL, err)
	}

	latest, err := db.ListScans(ctx, site.ID, 1)
	if err != nil {
		return fmt.Errorf("failed to get latest scan: %w", err)
	}
	prev, err := db.PreviousScan(ctx, site.ID)
	if errors.Is(err, database.ErrNotFound) || len(latest) == 0 {
		return fmt.Errorf("at least two scans of %s are needed for a comparison", siteURL)
	}
	if err != nil {
		return fmt.Errorf("failed to get previous scan: %w", err)
	}

	_, err = w.WriteComparison(compare.New(latest[0].Result(), prev.Result()))
	return err
}
