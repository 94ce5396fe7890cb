package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/perf"
)

// MarkdownWriter outputs reports in Markdown, suitable for pull request
// comments and wiki pages.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteResult outputs a single evaluation.
func (w *MarkdownWriter) WriteResult(result *model.EvaluationResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	counts := result.Counts()

	md.H1("SEO Report")
	md.PlainText("")

	rows := [][]string{
		{"URL", "`" + result.URL + "`"},
		{"Scanned", result.Timestamp.Format("2006-01-02 15:04:05 MST")},
		{"Score", strconv.Itoa(result.Score) + "/100"},
	}
	if result.Perf != nil {
		rows = append(rows, []string{"Perf Score", strconv.Itoa(result.Perf.PerfScore) + "/100"})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeSummary(md, counts)

	if result.Perf != nil {
		w.writePerf(md, result.Perf)
	}

	w.writeFindings(md, result.Findings)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, counts model.SeverityCounts) {
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Error", strconv.Itoa(counts.Errors)},
			{"🟡 Warning", strconv.Itoa(counts.Warnings)},
			{"🔵 Info", strconv.Itoa(counts.Info)},
			{"**Total**", "**" + strconv.Itoa(counts.Total()) + "**"},
		},
	})
	md.PlainText("")

	if counts.Total() > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Findings by Severity"),
			piechart.WithShowData(true),
		)
		if counts.Errors > 0 {
			chart.LabelAndIntValue("Error", uint64(counts.Errors))
		}
		if counts.Warnings > 0 {
			chart.LabelAndIntValue("Warning", uint64(counts.Warnings))
		}
		if counts.Info > 0 {
			chart.LabelAndIntValue("Info", uint64(counts.Info))
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	switch {
	case counts.Errors > 0:
		md.Cautionf("%d error(s) found. Each one costs 10 points.", counts.Errors)
	case counts.Warnings > 0:
		md.Warningf("%d warning(s) found. Each one costs 5 points.", counts.Warnings)
	case counts.Info > 0:
		md.Note("Only informational findings.")
	default:
		md.Tip("No issues found.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writePerf(md *markdown.Markdown, set *model.MetricSet) {
	md.H2("Performance")
	md.PlainText("")

	rows := make([][]string, 0, len(compare.MetricOrder))
	for _, key := range compare.MetricOrder {
		m, ok := set.Get(key)
		if !ok {
			continue
		}
		rows = append(rows, []string{m.Name, perf.FormatValue(m), ratingLabel(m.Rating)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value", "Rating"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFindings(md *markdown.Markdown, findings []model.Finding) {
	md.H2("Findings")
	md.PlainText("")

	if len(findings) == 0 {
		md.PlainText("No findings.")
		md.PlainText("")
		return
	}

	groups := []struct {
		severity model.Severity
		header   string
	}{
		{model.SeverityError, "🔴 Errors"},
		{model.SeverityWarning, "🟡 Warnings"},
		{model.SeverityInfo, "🔵 Info"},
	}
	for _, g := range groups {
		list := model.FilterBySeverity(findings, g.severity)
		if len(list) == 0 {
			continue
		}
		md.H3(g.header)
		md.PlainText("")
		md.Table(markdown.TableSet{
			Header: []string{"Rule", "Message", "Fix"},
			Rows:   findingRows(list),
		})
		md.PlainText("")
	}
}

func findingRows(findings []model.Finding) [][]string {
	rows := make([][]string, len(findings))
	for i, f := range findings {
		fix := f.Fix
		if fix == "" {
			fix = "-"
		}
		rows[i] = []string{f.Rule, escapeCell(f.Message), escapeCell(fix)}
	}
	return rows
}

// WriteComparison outputs a head-to-head comparison.
func (w *MarkdownWriter) WriteComparison(result *model.ComparisonResult) (int, error) {
	md := markdown.NewMarkdown(w.output)
	s := compare.Summarize(result)

	md.H1("Head-to-Head SEO Comparison")
	md.PlainText("")

	rows := [][]string{
		{"URL", result.Primary.URL, result.Competitor.URL, "", ""},
		scoreRow("SEO Score", s.Score),
	}
	if s.PerfScore != nil {
		rows = append(rows, scoreRow("Perf Score", *s.PerfScore))
	}
	rows = append(rows, scoreRow("Errors", s.Errors), scoreRow("Warnings", s.Warnings))
	md.Table(markdown.TableSet{
		Header: []string{"", "You", "Competitor", "Delta", "Winner"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(s.Metrics) > 0 {
		md.H2("Performance Metrics")
		md.PlainText("")
		metricRows := make([][]string, len(s.Metrics))
		for i, ml := range s.Metrics {
			metricRows[i] = []string{
				ml.Primary.Name,
				comparisonValue(ml.Primary),
				comparisonValue(ml.Competitor),
				strconv.FormatFloat(ml.Delta, 'f', -1, 64),
				string(ml.Winner),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Metric", "You", "Competitor", "Delta", "Winner"},
			Rows:   metricRows,
		})
		md.PlainText("")
	}

	w.writeUnique(md, "Issues Only on Your Site", s.OnlyPrimary)
	w.writeUnique(md, "Issues Only on Competitor", s.OnlyCompetitor)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeUnique(md *markdown.Markdown, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	md.H2(title)
	md.PlainText("")
	items := make([]string, len(findings))
	for i, f := range findings {
		items[i] = "**" + f.Severity.String() + "**: " + f.Message
	}
	md.BulletList(items...)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by [seoscan](https://github.com/nao1215/seoscan)*")
}

func scoreRow(label string, l compare.Line) []string {
	return []string{label, strconv.Itoa(l.Primary), strconv.Itoa(l.Competitor), formatDelta(l.Delta), string(l.Winner)}
}

// escapeCell keeps pipes in messages from splitting table cells.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
