// Package fetcher retrieves a page together with its origin's robots.txt
// and sitemap.xml.
//
// The three requests run concurrently. Only the page itself is mandatory:
// a failed or non-2xx robots/sitemap request simply yields empty text,
// which the rules report as "not found or not accessible".
package fetcher
