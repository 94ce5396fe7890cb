package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/database"
	"github.com/nao1215/seoscan/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API",
		Long: `Serve starts an HTTP API over the scan database for dashboards:
tracked sites, scan history, on-demand scans, batch scans and
competitor comparisons. Scans run through the same auditor as the
scan command and are stored as they complete.

Examples:
  seoscan serve
  seoscan serve --port 8080 --rate 10`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addAuditFlags(cmd)
	cmd.Flags().IntP("port", "p", config.DefaultPort,
		"Port to listen on")
	cmd.Flags().Float64("rate", config.DefaultRateLimit,
		"Requests per second allowed per client (0 disables limiting)")
	cmd.Flags().Int("burst", config.DefaultRateBurst,
		"Request burst allowed per client")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.Port, err = cmd.Flags().GetInt("port"); err != nil {
		return err
	}
	if cfg.RateLimit, err = cmd.Flags().GetFloat64("rate"); err != nil {
		return err
	}
	if cfg.RateBurst, err = cmd.Flags().GetInt("burst"); err != nil {
		return err
	}
	if err := cfg.ValidateOptions(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := newLogger(cfg.Verbose)

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	a := newAuditors(cfg, logger, true)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to stop browser", "error", err)
		}
	}()

	srv := server.New(db, server.Options{
		Auditor:     routed{a: a},
		PerfAuditor: routed{a: a, withPerf: true},
		Logger:      logger,
		RateLimit:   cfg.RateLimit,
		RateBurst:   cfg.RateBurst,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	fmt.Fprintf(cmd.OutOrStdout(), "Dashboard API listening on http://localhost%s\n", addr)
	return srv.ListenAndServe(ctx, addr)
}
