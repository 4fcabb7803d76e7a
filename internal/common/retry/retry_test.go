package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// ==========================
// Test Logger Implementation
// ==========================

type TestLogger struct {
	t *testing.T
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, fields)
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, fields)
}

func fastConfig(maxRetries int) Config {
	return Config{
		MaxRetries:        maxRetries,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

// ==========================
// Classification
// ==========================

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		errType   ErrorType
		retryable bool
	}{
		{"connection refused", errors.New("dial tcp: ECONNREFUSED"), ErrorTypeNetwork, true},
		{"connection reset", errors.New("read: econnreset by peer"), ErrorTypeNetwork, true},
		{"timeout", errors.New("context deadline exceeded (timeout)"), ErrorTypeNetwork, true},
		{"deadlock", errors.New("deadlock detected"), ErrorTypeResourceBusy, true},
		{"resource busy", errors.New("resource busy, try later"), ErrorTypeResourceBusy, true},
		{"http 502", errors.New("unexpected status 502"), ErrorTypeServer, true},
		{"http 503", errors.New("503 service unavailable"), ErrorTypeServer, true},
		{"plain failure", errors.New("invalid payload"), ErrorTypeOperation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := Classify(tt.err)
			assert.Equal(t, tt.errType, details.Type)
			assert.Equal(t, tt.retryable, details.Retryable)
			assert.Equal(t, tt.err.Error(), details.Message)
		})
	}
}

// ==========================
// Execution
// ==========================

func TestExecuteWithRetry_SuccessFirstAttempt(t *testing.T) {
	e := NewExecutor(fastConfig(3), &TestLogger{t})

	result := ExecuteWithRetry(context.Background(), e, "op", func(attempt int) (string, error) {
		return "ok", nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, "ok", result.Data)
	assert.Equal(t, 1, result.Attempts)
	assert.Nil(t, result.Error)
	assert.False(t, result.LastAttemptAt.IsZero())
}

func TestExecuteWithRetry_NonRetryableStopsAfterOneAttempt(t *testing.T) {
	e := NewExecutor(fastConfig(3), &TestLogger{t})

	calls := 0
	result := ExecuteWithRetry(context.Background(), e, "op", func(attempt int) (string, error) {
		calls++
		return "", errors.New("invalid payload")
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ErrorTypeOperation, result.Error.Type)
	assert.False(t, result.Error.Retryable)
}

func TestExecuteWithRetry_RetryableExhaustsAllAttempts(t *testing.T) {
	e := NewExecutor(fastConfig(2), &TestLogger{t})

	calls := 0
	result := ExecuteWithRetry(context.Background(), e, "op", func(attempt int) (string, error) {
		calls++
		assert.Equal(t, calls, attempt)
		return "", errors.New("ECONNREFUSED")
	})

	// 1 initial + maxRetries retries.
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, calls)
	assert.Equal(t, ErrorTypeNetwork, result.Error.Type)
}

func TestExecuteWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	e := NewExecutor(fastConfig(3), &TestLogger{t})

	result := ExecuteWithRetry(context.Background(), e, "op", func(attempt int) (int, error) {
		if attempt < 3 {
			return 0, errors.New("timeout")
		}
		return 42, nil
	})

	assert.True(t, result.Success)
	assert.Equal(t, 42, result.Data)
	assert.Equal(t, 3, result.Attempts)
}

func TestExecuteWithRetry_ContextCancellationStopsScheduling(t *testing.T) {
	e := NewExecutor(Config{
		MaxRetries:        5,
		InitialDelay:      200 * time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}, &TestLogger{t})

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan ExecutionResult[string], 1)
	go func() {
		done <- ExecuteWithRetry(ctx, e, "op", func(attempt int) (string, error) {
			calls++
			return "", errors.New("timeout")
		})
	}()

	time.Sleep(20 * time.Millisecond) // let the first attempt fail into backoff
	cancel()

	result := <-done
	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, calls)
	assert.Equal(t, ErrorTypeNetwork, result.Error.Type)
}

// ==========================
// Backoff
// ==========================

func TestBackoff_FirstRetryUsesInitialDelay(t *testing.T) {
	e := NewExecutor(Config{
		MaxRetries:        3,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2.0,
	}, nil)

	// Attempt counter is 1-indexed: delay(1) == initial, not initial*multiplier.
	assert.Equal(t, 100*time.Millisecond, e.backoff(1))
	assert.Equal(t, 200*time.Millisecond, e.backoff(2))
	assert.Equal(t, 400*time.Millisecond, e.backoff(3))
}

func TestBackoff_CappedAtMaxDelay(t *testing.T) {
	e := NewExecutor(Config{
		MaxRetries:        10,
		InitialDelay:      100 * time.Millisecond,
		MaxDelay:          300 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}, nil)

	assert.Equal(t, 300*time.Millisecond, e.backoff(3))
	assert.Equal(t, 300*time.Millisecond, e.backoff(8))
}
