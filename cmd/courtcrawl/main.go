// Package main provides the entry point for the courtcrawl CLI.
//
// courtcrawl extracts legal-case data from the CourtListener REST API:
// it walks dockets, their opinion clusters, and each cluster's opinions,
// and flattens every resolved opinion into one output record.
//
// Usage:
//
//	courtcrawl crawl --court scotus --limit 200 --csv cases.csv
//
// See --help for all available options.
package main

// main is the entry point for courtcrawl.
func main() {
	Execute()
}
