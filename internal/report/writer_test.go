package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/perf"
)

func createTestResult() *model.EvaluationResult {
	return &model.EvaluationResult{
		URL:   "https://example.com/",
		Score: 73,
		Findings: []model.Finding{
			{Rule: "meta", Severity: model.SeverityError, Message: "Missing meta description", Fix: "Add a <meta name=\"description\">"},
			{Rule: "opengraph", Severity: model.SeverityWarning, Message: "Missing og:image"},
			{Rule: "twitter", Severity: model.SeverityInfo, Message: "Missing twitter:card"},
		},
		Timestamp: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC),
	}
}

func createTestComparison() *model.ComparisonResult {
	primary := createTestResult()
	primary.Perf = perf.Normalize(perf.Sample{LCP: 1000, CLS: 0.05, FCP: 800, TTFB: 200, LoadTime: 2000, DOMContentLoaded: 900})

	competitor := &model.EvaluationResult{
		URL:   "https://rival.test/",
		Score: 90,
		Findings: []model.Finding{
			{Rule: "opengraph", Severity: model.SeverityWarning, Message: "Missing og:image"},
			{Rule: "sitemap", Severity: model.SeverityWarning, Message: "No sitemap.xml found"},
		},
		Timestamp: primary.Timestamp,
		Perf:      perf.Normalize(perf.Sample{LCP: 3000, CLS: 0.2, FCP: 2000, TTFB: 900, LoadTime: 4000, DOMContentLoaded: 2000}),
	}
	return compare.New(primary, competitor)
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header and score", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"SEO Report", "https://example.com/", "73/100", "ERRORS", "Missing meta description", "Fix: Add a"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("hides info unless verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		if _, err := NewSimpleWriter(&quiet).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(quiet.String(), "Missing twitter:card") {
			t.Error("expected info finding to be hidden")
		}
		if !strings.Contains(quiet.String(), "--verbose") {
			t.Error("expected hint about --verbose")
		}
		if !strings.Contains(verbose.String(), "Missing twitter:card") {
			t.Error("expected info finding in verbose output")
		}
	})

	t.Run("summary line uses singular and plural", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "1 error, 1 warning, 1 info") {
			t.Errorf("unexpected summary in %s", buf.String())
		}
	})

	t.Run("writes performance section with rating labels", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.Perf = perf.Normalize(perf.Sample{LCP: 3000})

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteResult(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		if !strings.Contains(output, "PERFORMANCE") {
			t.Error("expected performance section")
		}
		if !strings.Contains(output, "Needs Improvement") {
			t.Error("expected title-cased rating label")
		}
	})

	t.Run("writes comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"Head-to-Head SEO Comparison",
			"73 vs 90  -17  COMPETITOR WINS",
			"PERFORMANCE METRICS",
			"ISSUES ONLY ON YOUR SITE",
			"Missing meta description",
			"ISSUES ONLY ON COMPETITOR",
			"No sitemap.xml found",
			"0.050",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Count(output, "Missing og:image") != 0 {
			t.Error("shared findings should not be listed as unique")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes valid result JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded["score"] != float64(73) {
			t.Errorf("expected score 73, got %v", decoded["score"])
		}
		if !strings.Contains(buf.String(), "\n  ") {
			t.Error("expected indented output")
		}
	})

	t.Run("compact output has one line", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Errorf("expected single line, got %q", buf.String())
		}
	})

	t.Run("markup in messages is not escaped", func(t *testing.T) {
		t.Parallel()

		result := &model.EvaluationResult{
			URL:   "https://example.com",
			Score: 90,
			Findings: []model.Finding{
				{Rule: "meta-title", Severity: model.SeverityError, Message: "Missing <title> tag"},
			},
		}
		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteResult(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Missing <title> tag") {
			t.Errorf("expected raw markup in %q", buf.String())
		}
		if strings.Contains(buf.String(), `\u003c`) {
			t.Errorf("expected no escaped markup, got %q", buf.String())
		}
	})

	t.Run("comparison includes summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			ScoreDelta int `json:"score_delta"`
			Summary    struct {
				OnlyCompetitor []model.Finding `json:"only_competitor"`
			} `json:"summary"`
		}
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if decoded.ScoreDelta != -17 {
			t.Errorf("expected score delta -17, got %d", decoded.ScoreDelta)
		}
		if len(decoded.Summary.OnlyCompetitor) != 1 {
			t.Errorf("expected 1 competitor-only finding, got %d", len(decoded.Summary.OnlyCompetitor))
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes tables, chart and alert", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteResult(createTestResult()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# SEO Report", "## Summary", "```mermaid", "[!CAUTION]", "## Findings", "Missing og:image"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("clean page gets a tip", func(t *testing.T) {
		t.Parallel()

		result := createTestResult()
		result.Findings = nil
		result.Score = 100

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteResult(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "[!TIP]") {
			t.Error("expected tip alert")
		}
		if strings.Contains(buf.String(), "mermaid") {
			t.Error("expected no chart without findings")
		}
	})

	t.Run("writes comparison", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteComparison(createTestComparison()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{"Head-to-Head SEO Comparison", "COMPETITOR WINS", "## Performance Metrics", "Issues Only on Your Site"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

type failingWriter struct{}

func (failingWriter) WriteResult(*model.EvaluationResult) (int, error) {
	return 0, errors.New("write failed")
}

func (failingWriter) WriteComparison(*model.ComparisonResult) (int, error) {
	return 0, errors.New("write failed")
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var a, b bytes.Buffer
		m := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
		n, err := m.WriteResult(createTestResult())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != a.Len()+b.Len() {
			t.Errorf("expected %d bytes, got %d", a.Len()+b.Len(), n)
		}
	})

	t.Run("stops on first error", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		m := NewMultiWriter(failingWriter{}, NewSimpleWriter(&buf))
		if _, err := m.WriteComparison(createTestComparison()); err == nil {
			t.Error("expected error")
		}
		if buf.Len() != 0 {
			t.Error("expected later writer to be skipped")
		}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		format Format
		check  func(Writer) bool
	}{
		{"json", FormatJSON, func(w Writer) bool { _, ok := w.(*JSONWriter); return ok }},
		{"markdown", FormatMarkdown, func(w Writer) bool { _, ok := w.(*MarkdownWriter); return ok }},
		{"text", FormatText, func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
		{"unknown falls back to text", Format("xml"), func(w Writer) bool { _, ok := w.(*SimpleWriter); return ok }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if !tc.check(New(tc.format, &bytes.Buffer{}, false)) {
				t.Errorf("unexpected writer type for %s", tc.format)
			}
		})
	}
}
