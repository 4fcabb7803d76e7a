// internal/client/types.go
package client

import (
	"fmt"

	qerrors "nlquery-gateway/internal/common/errors"
)

// APIError is the structured error shape the gateway puts on the wire:
// the envelope payload plus the HTTP status it arrived with.
type APIError struct {
	Status     int           `json:"status"`
	Code       string        `json:"code"`
	Message    string        `json:"message"`
	Details    []interface{} `json:"details,omitempty"`
	RetryAfter int           `json:"retryAfter,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// QueryError is the decoded, display-ready form of a failure. Derived fresh
// per failure, never persisted.
type QueryError struct {
	Message    string
	Status     int
	Code       qerrors.ErrorCode
	SQL        string
	Advice     string
	Details    []string
	RetryAfter int
}
