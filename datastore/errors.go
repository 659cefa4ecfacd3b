package datastore

import (
	"errors"
	"fmt"
	"time"
)

// ErrAPIKeyMissing is returned by New when no API key was provided either
// directly or via the environment. It is always detected before any request
// is made.
var ErrAPIKeyMissing = errors.New(
	"API key required: set VOIDS_DATASTORE_API_KEY (or API_KEY), or provide it explicitly")

// Error is returned for any request that failed: transport errors, responses
// with an unexpected status, and malformed deferral acknowledgments.
type Error struct {
	Op         string // the operation that failed: "get", "update" or "status poll"
	StatusCode int    // HTTP status code, or 0 if no response was received
	Message    string // error detail reported by the service, if any
	Err        error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("datastore: %s failed with status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("datastore: %s failed: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("datastore: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("datastore: %s failed", e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// PollTimeoutError is returned when a deferred request did not resolve
// within the poll timeout.
type PollTimeoutError struct {
	RequestID string
	Timeout   time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("datastore: polling for request %s timed out after %s", e.RequestID, e.Timeout)
}
