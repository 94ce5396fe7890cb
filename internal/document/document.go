package document

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is the read-only view of a page that rules evaluate.
type Document interface {
	// SelectAll returns every element matching the CSS selector in document
	// order. An invalid selector matches nothing.
	SelectAll(selector string) []Element
}

// Element is a single element node in a Document.
type Element struct {
	node *html.Node
}

// Tag returns the lowercase tag name, e.g. "h2".
func (e Element) Tag() string {
	if e.node == nil {
		return ""
	}
	return strings.ToLower(e.node.Data)
}

// Attr returns the value of the named attribute and whether it is present.
// A present attribute with an empty value returns ("", true).
func (e Element) Attr(name string) (string, bool) {
	if e.node == nil {
		return "", false
	}
	for _, a := range e.node.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

// AttrOr returns the attribute value, or def when it is absent.
func (e Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// Text returns the concatenated text content of the element and its
// descendants.
func (e Element) Text() string {
	if e.node == nil {
		return ""
	}
	return goquery.NewDocumentFromNode(e.node).Text()
}

// FirstAttr returns the named attribute of the first element matching
// selector. ok is false when nothing matches or the attribute is absent.
func FirstAttr(doc Document, selector, name string) (string, bool) {
	els := doc.SelectAll(selector)
	if len(els) == 0 {
		return "", false
	}
	return els[0].Attr(name)
}

// Text returns the concatenated text of every element matching selector.
func Text(doc Document, selector string) string {
	var sb strings.Builder
	for _, el := range doc.SelectAll(selector) {
		sb.WriteString(el.Text())
	}
	return sb.String()
}

func wrap(nodes []*html.Node) []Element {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]Element, len(nodes))
	for i, n := range nodes {
		out[i] = Element{node: n}
	}
	return out
}
