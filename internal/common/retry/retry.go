// Package retry provides a generic operation runner with error classification
// and capped exponential backoff, used to harden side-effecting operations
// (webhook delivery, notification publishing) against transient failures.
package retry

import (
	"context"
	"strings"
	"time"
)

// ErrorType categorizes a failed attempt.
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "NETWORK_ERROR"
	ErrorTypeResourceBusy ErrorType = "RESOURCE_BUSY"
	ErrorTypeServer       ErrorType = "SERVER_ERROR"
	ErrorTypeOperation    ErrorType = "OPERATION_FAILED"
)

// Config controls retry behavior. MaxRetries counts retries, not attempts:
// an operation runs at most MaxRetries+1 times.
type Config struct {
	MaxRetries        int
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	BackoffMultiplier float64
}

// DefaultConfig matches the delivery defaults used across the gateway.
func DefaultConfig() Config {
	return Config{
		MaxRetries:        3,
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// ErrorDetails describes the last failure of an execution.
type ErrorDetails struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Retryable bool      `json:"retryable"`
}

// ExecutionResult is produced exactly once per ExecuteWithRetry call. Attempts
// increases monotonically from 1 to MaxRetries+1.
type ExecutionResult[T any] struct {
	Success       bool          `json:"success"`
	Data          T             `json:"data,omitempty"`
	Error         *ErrorDetails `json:"error,omitempty"`
	Attempts      int           `json:"attempts"`
	LastAttemptAt time.Time     `json:"lastAttemptAt"`
}

// Classify maps an error to a type and retryability. Rules are evaluated in a
// fixed priority order against the lowercased message.
func Classify(err error) ErrorDetails {
	msg := strings.ToLower(err.Error())

	switch {
	case containsAny(msg, "econnrefused", "econnreset", "etimedout", "timeout"):
		return ErrorDetails{Type: ErrorTypeNetwork, Message: err.Error(), Retryable: true}
	case containsAny(msg, "lock", "deadlock", "resource busy"):
		return ErrorDetails{Type: ErrorTypeResourceBusy, Message: err.Error(), Retryable: true}
	case containsAny(msg, "500", "502", "503"):
		return ErrorDetails{Type: ErrorTypeServer, Message: err.Error(), Retryable: true}
	default:
		return ErrorDetails{Type: ErrorTypeOperation, Message: err.Error(), Retryable: false}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Logger is the minimal logging surface this package needs.
type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// Executor runs operations with retry. It holds no state between invocations
// beyond its immutable config; attempts of one call never run concurrently.
type Executor struct {
	config Config
	logger Logger
}

func NewExecutor(config Config, logger Logger) *Executor {
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Millisecond
	}
	if config.BackoffMultiplier < 1.0 {
		config.BackoffMultiplier = 1.0
	}
	return &Executor{config: config, logger: logger}
}

func (e *Executor) Config() Config { return e.config }

// ExecuteWithRetry runs op until it succeeds, fails non-retryably, exhausts
// attempts, or ctx is cancelled. Cancellation during backoff stops scheduling
// further attempts and resolves with the last error.
func ExecuteWithRetry[T any](ctx context.Context, e *Executor, operation string, op func(attempt int) (T, error)) ExecutionResult[T] {
	maxAttempts := e.config.MaxRetries + 1
	var lastErr ErrorDetails

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		data, err := op(attempt)
		now := time.Now().UTC()

		if err == nil {
			if e.logger != nil && attempt > 1 {
				e.logger.Info("operation succeeded after retry", map[string]interface{}{
					"operation": operation,
					"attempts":  attempt,
				})
			}
			return ExecutionResult[T]{
				Success:       true,
				Data:          data,
				Attempts:      attempt,
				LastAttemptAt: now,
			}
		}

		lastErr = Classify(err)

		if !lastErr.Retryable || attempt == maxAttempts {
			// No further delay once the outcome is settled.
			return ExecutionResult[T]{
				Success:       false,
				Error:         &lastErr,
				Attempts:      attempt,
				LastAttemptAt: now,
			}
		}

		delay := e.backoff(attempt)
		if e.logger != nil {
			e.logger.Warn("operation failed, retrying", map[string]interface{}{
				"operation": operation,
				"attempt":   attempt,
				"errorType": string(lastErr.Type),
				"nextDelay": delay.String(),
			})
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ExecutionResult[T]{
				Success:       false,
				Error:         &lastErr,
				Attempts:      attempt,
				LastAttemptAt: now,
			}
		}
	}

	// Unreachable: the loop always returns.
	return ExecutionResult[T]{Success: false, Error: &lastErr, Attempts: maxAttempts}
}

// backoff computes min(initial * multiplier^(attempt-1), max) against the
// 1-indexed attempt counter, so the first retry waits exactly InitialDelay.
func (e *Executor) backoff(attempt int) time.Duration {
	delay := e.config.InitialDelay
	for i := 1; i < attempt; i++ {
		delay = time.Duration(float64(delay) * e.config.BackoffMultiplier)
		if e.config.MaxDelay > 0 && delay >= e.config.MaxDelay {
			return e.config.MaxDelay
		}
	}
	return delay
}
