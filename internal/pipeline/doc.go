// Package pipeline runs page audits as a sequence of steps.
//
// A single audit flows through three steps: fetch (page, robots.txt and
// sitemap.xml), parse (markup into a queryable document), and evaluate
// (rules, optional performance sampling, scoring). Each step receives the
// Job accumulated so far and fills in its part.
//
// Steps are kept separate so that callers holding already-fetched markup
// can skip the fetch step, and so that logging, cancellation, and error
// recording are handled uniformly in one place.
//
// BatchProcessor audits many URLs concurrently with an errgroup limit, and
// Auditor is the entry point used by the CLI, HTTP API, and MCP server.
package pipeline
