package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLDocument is a Document backed by a goquery tree.
type HTMLDocument struct {
	doc *goquery.Document
}

// Parse reads HTML markup into a Document. Malformed markup is repaired the
// way browsers repair it; only read errors are returned.
func Parse(r io.Reader) (*HTMLDocument, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &HTMLDocument{doc: doc}, nil
}

// ParseString is Parse for in-memory markup.
func ParseString(markup string) (*HTMLDocument, error) {
	return Parse(strings.NewReader(markup))
}

// SelectAll implements Document.
func (d *HTMLDocument) SelectAll(selector string) []Element {
	sel, err := compile(selector)
	if err != nil {
		return nil
	}
	return wrap(d.doc.FindMatcher(sel).Nodes)
}
