// Package mcpserver exposes audits as Model Context Protocol tools so
// assistants can scan and compare pages over stdio.
package mcpserver

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nao1215/seoscan/internal/config"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/report"
)

// Tool names.
const (
	ToolScan    = "seo_scan"
	ToolCompare = "seo_compare"
)

// Auditor runs audits and comparisons.
type Auditor interface {
	Audit(ctx context.Context, url string) (*model.EvaluationResult, error)
	Compare(ctx context.Context, primaryURL, competitorURL string) (*model.ComparisonResult, error)
}

// Handlers implements the tools. Perf may be nil, in which case requests
// with perf=true fail with a tool error.
type Handlers struct {
	Plain Auditor
	Perf  Auditor
}

// New builds an MCP server with both tools registered.
func New(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"seoscan",
		version,
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool(ToolScan,
		mcp.WithDescription("Audit a web page for SEO issues. Returns the 0-100 score and every finding with severity, message and suggested fix as JSON."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The page to audit. A missing scheme defaults to https."),
		),
		mcp.WithBoolean("perf",
			mcp.Description("Also measure Core Web Vitals in a headless browser (slower)."),
		),
	), h.Scan)

	s.AddTool(mcp.NewTool(ToolCompare,
		mcp.WithDescription("Audit two pages head-to-head. Returns both results, score deltas, per-metric winners, and issues unique to each side as JSON."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("Your page."),
		),
		mcp.WithString("competitor_url",
			mcp.Required(),
			mcp.Description("The competitor page."),
		),
		mcp.WithBoolean("perf",
			mcp.Description("Also compare Core Web Vitals measured in a headless browser."),
		),
	), h.Compare)

	return s
}

// Serve runs s on stdin and stdout until the client disconnects.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func (h *Handlers) auditor(perf bool) (Auditor, error) {
	if !perf {
		return h.Plain, nil
	}
	if h.Perf == nil {
		return nil, fmt.Errorf("performance sampling is not enabled")
	}
	return h.Perf, nil
}

// Scan handles seo_scan.
func (h *Handlers) Scan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}
	u, err := config.NormalizeURL(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := h.auditor(request.GetBool("perf", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := a.Audit(ctx, u)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if _, err := report.NewJSONWriter(&buf, report.WithPrettyPrint()).WriteResult(result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}

// Compare handles seo_compare.
func (h *Handlers) Compare(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawPrimary, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url is required"), nil
	}
	rawCompetitor, err := request.RequireString("competitor_url")
	if err != nil {
		return mcp.NewToolResultError("competitor_url is required"), nil
	}
	primary, err := config.NormalizeURL(rawPrimary)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	competitor, err := config.NormalizeURL(rawCompetitor)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := h.auditor(request.GetBool("perf", false))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := a.Compare(ctx, primary, competitor)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("comparison failed: %v", err)), nil
	}

	var buf bytes.Buffer
	if _, err := report.NewJSONWriter(&buf, report.WithPrettyPrint()).WriteComparison(result); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(buf.String()), nil
}
