package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// errFindings signals that the audit succeeded but found error-severity
// problems. It maps to exit status 1 without an extra message.
var errFindings = errors.New("error-level findings present")

// NewRootCmd creates the root command for seoscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seoscan",
		Short: "SEO audit tool for web pages",
		Long: `seoscan audits web pages for on-page SEO problems: titles, meta
descriptions, social cards, headings, image alt text, structured data,
robots.txt, sitemap.xml and links. Each page gets a 0-100 score.

With --perf it also measures Core Web Vitals in headless Chromium.
Results are stored locally so progress can be tracked over time.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging and info-level findings")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	err := NewRootCmd().Execute()
	if err == nil {
		return
	}
	if !errors.Is(err, errFindings) {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(1)
}

// getVerboseFlag reads --verbose from the command or the root.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}
