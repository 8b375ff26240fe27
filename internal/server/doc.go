// Package server exposes the registration lookup over HTTP.
//
// Routes:
//   - GET /bsmi/{id}: look up a registration mark code; serves the cached
//     record, scraping the origin only on a miss
//   - GET /taxid/{taxId}: list registrations sharing a unified business
//     number
//   - GET /sitemap.xml: every known mark code as an absolute URL, for
//     search engine indexing
//   - GET /healthz: liveness probe
//
// Responses are JSON except the sitemap, which is XML.
package server
