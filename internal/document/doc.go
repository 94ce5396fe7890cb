// Package document adapts parsed HTML into the narrow, read-only query
// interface the SEO rules work against.
//
// Two backends are provided. HTMLDocument is built from raw markup through
// goquery; NodeDocument wraps an already-parsed *html.Node tree and walks it
// with cascadia directly. Both share the same compiled-selector cache and
// produce identical results, so rules never know which one they received.
package document
