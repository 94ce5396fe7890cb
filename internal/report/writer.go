package report

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/seoscan/internal/model"
)

// Writer renders results to an output.
type Writer interface {
	// WriteResult renders a single evaluation.
	WriteResult(result *model.EvaluationResult) (int, error)

	// WriteComparison renders a head-to-head comparison.
	WriteComparison(result *model.ComparisonResult) (int, error)
}

// Format selects a Writer implementation.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// New returns the writer for format. Unknown formats fall back to text.
func New(format Format, output io.Writer, verbose bool) Writer {
	switch format {
	case FormatJSON:
		return NewJSONWriter(output, WithPrettyPrint())
	case FormatMarkdown:
		return NewMarkdownWriter(output)
	default:
		return NewSimpleWriter(output, WithVerbose(verbose))
	}
}

// MultiWriter writes to multiple Writers in turn and stops on the first
// error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteResult renders the result with every writer.
func (m *MultiWriter) WriteResult(result *model.EvaluationResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteResult(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteComparison renders the comparison with every writer.
func (m *MultiWriter) WriteComparison(result *model.ComparisonResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteComparison(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// ratingLabel turns "needs-improvement" into "Needs Improvement".
func ratingLabel(r model.Rating) string {
	return titleCaser.String(strings.ReplaceAll(string(r), "-", " "))
}

// formatDelta prefixes positive values with a plus sign.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
