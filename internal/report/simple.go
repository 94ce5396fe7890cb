package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/perf"
)

const ruleWidth = 60

// SimpleWriter outputs plain text reports for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose shows info-level findings.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose shows info-level findings.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteResult outputs a single evaluation.
func (w *SimpleWriter) WriteResult(result *model.EvaluationResult) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, result)
	if result.Perf != nil {
		w.writePerf(&sb, result.Perf)
	}
	w.writeFindings(&sb, result.Findings)
	w.writeSummary(&sb, result.Counts())

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, result *model.EvaluationResult) {
	sb.WriteString("\n")
	sb.WriteString("  SEO Report\n")
	sb.WriteString("  " + strings.Repeat("=", ruleWidth) + "\n\n")
	fmt.Fprintf(sb, "  URL:        %s\n", result.URL)
	fmt.Fprintf(sb, "  Scanned:    %s\n", result.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "  Score:      %d/100\n", result.Score)
	if result.Perf != nil {
		fmt.Fprintf(sb, "  Perf Score: %d/100\n", result.Perf.PerfScore)
	}
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	fmt.Fprintf(sb, "  -- %s --\n\n", title)
}

func (w *SimpleWriter) writePerf(sb *strings.Builder, set *model.MetricSet) {
	section(sb, "PERFORMANCE")
	for _, key := range compare.MetricOrder {
		m, ok := set.Get(key)
		if !ok {
			continue
		}
		fmt.Fprintf(sb, "  %-28s %10s  %s\n", m.Name, perf.FormatValue(m), ratingLabel(m.Rating))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, findings []model.Finding) {
	groups := []struct {
		severity model.Severity
		title    string
		icon     string
	}{
		{model.SeverityError, "ERRORS", "x"},
		{model.SeverityWarning, "WARNINGS", "!"},
		{model.SeverityInfo, "INFO", "i"},
	}

	for _, g := range groups {
		if g.severity == model.SeverityInfo && !w.verbose {
			continue
		}
		list := model.FilterBySeverity(findings, g.severity)
		if len(list) == 0 {
			continue
		}
		section(sb, g.title)
		for _, f := range list {
			fmt.Fprintf(sb, "  [%s] %s\n", g.icon, f.Message)
			if f.Fix != "" {
				fmt.Fprintf(sb, "      Fix: %s\n", f.Fix)
			}
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, counts model.SeverityCounts) {
	sb.WriteString("  " + strings.Repeat("-", ruleWidth) + "\n")
	fmt.Fprintf(sb, "  %s, %s, %d info\n",
		countLabel(counts.Errors, "error"),
		countLabel(counts.Warnings, "warning"),
		counts.Info,
	)
	if counts.Info > 0 && !w.verbose {
		sb.WriteString("  Run with --verbose to see info messages.\n")
	}
	if counts.Total() == 0 {
		sb.WriteString("  No issues found.\n")
	}
	sb.WriteString("\n")
}

func countLabel(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// WriteComparison outputs a head-to-head comparison.
func (w *SimpleWriter) WriteComparison(result *model.ComparisonResult) (int, error) {
	var sb strings.Builder
	s := compare.Summarize(result)

	sb.WriteString("\n")
	sb.WriteString("  Head-to-Head SEO Comparison\n")
	sb.WriteString("  " + strings.Repeat("-", 45) + "\n\n")
	fmt.Fprintf(&sb, "  You:         %s\n", result.Primary.URL)
	fmt.Fprintf(&sb, "  Competitor:  %s\n\n", result.Competitor.URL)

	writeLine(&sb, "SEO Score:", s.Score)
	if s.PerfScore != nil {
		writeLine(&sb, "Perf Score:", *s.PerfScore)
	}
	sb.WriteString("\n")

	section(&sb, "ISSUE COUNTS")
	writeLine(&sb, "Errors:", s.Errors)
	writeLine(&sb, "Warnings:", s.Warnings)
	sb.WriteString("\n")

	if len(s.Metrics) > 0 {
		section(&sb, "PERFORMANCE METRICS")
		for _, ml := range s.Metrics {
			fmt.Fprintf(&sb, "  %s %-28s %8s vs %8s  %s\n",
				ratingMark(ml.Primary.Rating),
				ml.Primary.Name,
				comparisonValue(ml.Primary),
				comparisonValue(ml.Competitor),
				ml.Winner,
			)
		}
		sb.WriteString("\n")
	}

	writeUnique(&sb, "ISSUES ONLY ON YOUR SITE", s.OnlyPrimary)
	writeUnique(&sb, "ISSUES ONLY ON COMPETITOR", s.OnlyCompetitor)

	return io.WriteString(w.output, sb.String())
}

func writeLine(sb *strings.Builder, label string, l compare.Line) {
	fmt.Fprintf(sb, "  %-12s %d vs %d  %s  %s\n", label, l.Primary, l.Competitor, formatDelta(l.Delta), l.Winner)
}

func writeUnique(sb *strings.Builder, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	section(sb, title)
	for _, f := range findings {
		icon := "!"
		if f.Severity == model.SeverityError {
			icon = "x"
		}
		fmt.Fprintf(sb, "  [%s] %s\n", icon, f.Message)
	}
	sb.WriteString("\n")
}

// comparisonValue shows CLS with fixed precision so columns line up.
func comparisonValue(m model.Metric) string {
	if m.Unit == model.UnitScore {
		return strconv.FormatFloat(m.Value, 'f', 3, 64)
	}
	return perf.FormatValue(m)
}

func ratingMark(r model.Rating) string {
	switch r {
	case model.RatingGood:
		return "[+]"
	case model.RatingPoor:
		return "[-]"
	default:
		return "[~]"
	}
}
