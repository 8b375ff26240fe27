// Package refresh runs background re-scrapes of stale registration records.
//
// The lookup path never waits on a refresh: it enqueues the mark code and
// returns the stored record immediately. A fixed pool of workers drains the
// queue, re-fetches each record from the origin, and replaces the stored
// copy. Refresh failures are logged and swallowed; the stored record simply
// stays stale until a later lookup enqueues it again.
//
// Each mark code is tracked while in flight so that repeated lookups of the
// same stale record cost exactly one upstream fetch.
package refresh
