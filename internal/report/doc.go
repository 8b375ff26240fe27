// Package report renders lookup results for the CLI.
//
// Three formats are supported: a human-readable text layout for terminal
// use, JSON for scripting, and Markdown for documentation and sharing.
// All writers render the same LookupResult shape the HTTP API serves.
package report
