package bsmi

import "fmt"

// FetchError is returned when a BSMI endpoint answers with a non-success
// HTTP status. It is distinct from a "record not found" outcome, which the
// remote reports inside a successful response body.
//
// Callers can use errors.As to detect transport-level failures and map them
// to a generic server error, while not-found stays a first-class nil result.
type FetchError struct {
	// URL is the endpoint that failed.
	URL string

	// StatusCode is the HTTP status code returned by the endpoint.
	StatusCode int
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("bsmi: %s returned HTTP %d", e.URL, e.StatusCode)
}
