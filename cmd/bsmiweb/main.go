// Package main provides the entry point for the bsmiweb CLI.
//
// bsmiweb looks up Taiwan BSMI product-safety registrations by mark code,
// caches the scraped records locally, and serves them over HTTP.
//
// Usage:
//
//	bsmiweb serve
//	bsmiweb lookup <mark-code>
//	bsmiweb import
//
// See --help for all available options.
package main

// main is the entry point for bsmiweb.
func main() {
	Execute()
}
