package riot

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed API call so callers can pick a recovery
// strategy without inspecting HTTP details.
type ErrorKind int

const (
	// KindTransient covers rate-limit and temporary server faults (429/500/503).
	KindTransient ErrorKind = iota
	// KindNotFound means the player or match does not exist (404).
	KindNotFound
	// KindForbidden means the credential is invalid or revoked (403).
	KindForbidden
	// KindMalformed means the payload decoded but is missing required fields.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// APIError is the error type returned by every client endpoint.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Endpoint   string
	Attempts   int
	Err        error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("riot %s: %s (status %d): %v", e.Endpoint, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("riot %s: %s (status %d)", e.Endpoint, e.Kind, e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.Err }

// KindOf extracts the ErrorKind from err. Unknown errors are reported as
// transient so a one-off network fault never kills a worker.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}
