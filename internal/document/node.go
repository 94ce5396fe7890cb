package document

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// NodeDocument is a Document over an existing parse tree, queried with
// cascadia directly.
type NodeDocument struct {
	root *html.Node
}

// FromNode wraps a parsed tree, typically the result of html.Parse.
func FromNode(root *html.Node) *NodeDocument {
	return &NodeDocument{root: root}
}

// SelectAll implements Document.
func (d *NodeDocument) SelectAll(selector string) []Element {
	if d.root == nil {
		return nil
	}
	sel, err := compile(selector)
	if err != nil {
		return nil
	}
	return wrap(cascadia.QueryAll(d.root, sel))
}
