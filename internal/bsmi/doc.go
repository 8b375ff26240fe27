// Package bsmi talks to the BSMI (Bureau of Standards, Metrology and
// Inspection) web properties and normalizes what they return.
//
// The package has two halves:
//   - Client: a thin HTTP client that identifies itself with the bsmiweb
//     User-Agent, decodes legacy charsets (Big5 pages still exist on
//     Taiwanese government infrastructure), and turns non-success statuses
//     into *FetchError values
//   - Scraper: fetches a registration record by mark code from the public
//     lookup form and extracts the vendor block and certificate list from
//     the returned HTML
//
// The extraction layer is deliberately pattern-based rather than a full DOM
// traversal: the lookup page is a single undocumented layout, and the
// patterns mirror its markup exactly. Absence of a field or a malformed row
// is never an error; fields come back empty and rows are skipped, which
// keeps the scraper resilient against minor markup drift. All of that
// brittleness stays behind this package's narrow surface so callers only
// see normalized model types.
package bsmi
