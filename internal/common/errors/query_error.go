package errors

import "fmt"

// QueryError is the typed error thrown by the orchestration layer. Once an
// error carries a QueryError it is considered classified and is never
// re-classified downstream.
type QueryError struct {
	Code       ErrorCode `json:"code"`
	Status     int       `json:"status"`
	Message    string    `json:"message"`
	Details    []string  `json:"details,omitempty"`
	RetryAfter int       `json:"retryAfter,omitempty"` // seconds
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("QueryError[%s]: %s", e.Code, e.Message)
}

// New creates a QueryError with the canonical status for code. An empty
// message falls back to the taxonomy default.
func New(code ErrorCode, message string) *QueryError {
	if message == "" {
		message = MessageFor(code)
	}
	return &QueryError{
		Code:    code,
		Status:  StatusFor(code),
		Message: message,
	}
}

// Newf creates a QueryError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *QueryError {
	return New(code, fmt.Sprintf(format, args...))
}

// WithStatus overrides the canonical status. Used when the caller explicitly
// knows better than the taxonomy (the explicit status wins on the wire).
func (e *QueryError) WithStatus(status int) *QueryError {
	e.Status = status
	return e
}

// WithDetails attaches structured "field: message" detail strings.
func (e *QueryError) WithDetails(details ...string) *QueryError {
	e.Details = append(e.Details, details...)
	return e
}

// WithRetryAfter attaches retry timing in seconds.
func (e *QueryError) WithRetryAfter(seconds int) *QueryError {
	e.RetryAfter = seconds
	return e
}

// NewValidationError creates a field-level validation error. Every detail is
// of the form "field: message" so clients can map fields to labels.
func NewValidationError(message string, details ...string) *QueryError {
	return New(ErrCodeValidation, message).WithDetails(details...)
}

// NewConfigurationError creates a system-not-set-up error. The message should
// name what is missing (datasource, AI provider, schema sync) so clients can
// pick an actionable hint.
func NewConfigurationError(message string) *QueryError {
	return New(ErrCodeConfiguration, message)
}

// NewDatabaseError creates a query-time failure against the target store.
// SQL text may be embedded in the message deliberately ("... SQL: SELECT ...")
// to aid debugging; clients extract and display it separately.
func NewDatabaseError(message string) *QueryError {
	return New(ErrCodeDatabase, message)
}

// NewExternalServiceError marks a planner/executor dependency failure that is
// not the caller's fault.
func NewExternalServiceError(message string) *QueryError {
	return New(ErrCodeExternalService, message)
}

// AsQueryError reports whether err is (or wraps) an already-classified
// QueryError.
func AsQueryError(err error) (*QueryError, bool) {
	for err != nil {
		if qe, ok := err.(*QueryError); ok {
			return qe, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return nil, false
		}
		err = u.Unwrap()
	}
	return nil, false
}
