// Package report renders evaluation and comparison results.
//
// This package contains writers for different output formats:
//   - SimpleWriter: plain text for terminal display
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables and a mermaid chart
//
// Writers implement the Writer interface so the CLI can pick one by flag
// and compose several with MultiWriter.
package report
