package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/model"
)

// JSONWriter outputs results as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed output.
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteResult outputs the evaluation as JSON.
func (w *JSONWriter) WriteResult(result *model.EvaluationResult) (int, error) {
	return w.writeJSON(result)
}

// ComparisonReport is the JSON shape of a comparison: the raw results plus
// the derived head-to-head summary.
type ComparisonReport struct {
	*model.ComparisonResult
	Summary *compare.Summary `json:"summary"`
}

// WriteComparison outputs the comparison as JSON.
func (w *JSONWriter) WriteComparison(result *model.ComparisonResult) (int, error) {
	return w.writeJSON(&ComparisonReport{
		ComparisonResult: result,
		Summary:          compare.Summarize(result),
	})
}

// writeJSON leaves markup in messages such as "Missing <title> tag" unescaped.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
