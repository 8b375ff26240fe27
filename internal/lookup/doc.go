// Package lookup implements the cached registration lookup policy.
//
// A lookup resolves a mark code against the local store first:
//   - missing: the record is scraped from the origin synchronously, stored,
//     and returned
//   - fresh: the stored record is returned as-is
//   - stale: the stored record is returned immediately and a background
//     refresh is enqueued, so the caller never waits on the origin for a
//     record that already exists locally
//
// The returned result also carries any resale authorizations referencing
// the record's certificates.
package lookup
