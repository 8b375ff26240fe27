// Package database provides SQLite-based storage for registration records
// and authorization data.
//
// The store owns three relations:
//   - registrations: one row per mark code, timestamped for the
//     cache/refresh freshness check
//   - certificates: product certificates keyed to a registration; the set
//     for a registration is always replaced wholesale, never merged
//   - authorizations: the open-data resale authorization feed, replaced
//     in full on every import run
//
// All multi-row writes (the registration upsert and the authorization
// replacement) run inside a single transaction so the delete-then-recreate
// pattern is atomic: a failed run leaves the previous data intact.
package database
