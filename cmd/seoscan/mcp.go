package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/seoscan/internal/mcpserver"
)

// NewMCPCmd creates the mcp command.
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run as an MCP server over stdio",
		Long: `MCP exposes seo_scan and seo_compare as Model Context Protocol tools
on stdin and stdout, so AI assistants can audit pages directly.

Logs go to stderr and are kept at warning level unless --verbose is set.

Example client configuration:
  {"mcpServers": {"seoscan": {"command": "seoscan", "args": ["mcp"]}}}`,
		Args: cobra.NoArgs,
		RunE: runMCPCmd,
	}

	addAuditFlags(cmd)

	return cmd
}

// runMCPCmd executes the mcp command.
func runMCPCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateOptions(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// stdout carries the protocol; keep logs on stderr.
	logger := newLogger(cfg.Verbose)

	a := newAuditors(cfg, logger, true)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to stop browser", "error", err)
		}
	}()

	s := mcpserver.New(&mcpserver.Handlers{
		Plain: routed{a: a},
		Perf:  routed{a: a, withPerf: true},
	}, getVersion())
	return mcpserver.Serve(s)
}
