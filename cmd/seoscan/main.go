// Package main provides the entry point for the seoscan CLI.
//
// seoscan audits web pages for on-page SEO problems, optionally measures
// Core Web Vitals in a headless browser, and compares a page against a
// competitor.
//
// Usage:
//
//	seoscan scan <url>...
//	seoscan compare <your-url> <competitor-url>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
