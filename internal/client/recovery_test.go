// internal/client/recovery_test.go
package client

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qerrors "nlquery-gateway/internal/common/errors"
)

func fullContext(calls *[]string) RecoveryContext {
	record := func(name string) func() {
		return func() { *calls = append(*calls, name) }
	}
	return RecoveryContext{
		Relogin:             record("relogin"),
		ConfigureProvider:   record("provider"),
		ConfigureDatasource: record("datasource"),
		NewConversation:     record("conversation"),
		Retry:               record("retry"),
	}
}

func TestResolveRecovery_Relogin(t *testing.T) {
	var calls []string
	ctx := fullContext(&calls)

	action := ResolveRecovery(QueryError{Code: qerrors.ErrCodeUnauthenticated, Status: 401}, ctx)

	require.NotNil(t, action)
	assert.Equal(t, "Sign in again", action.Label)
	action.Run()
	assert.Equal(t, []string{"relogin"}, calls)
}

func TestResolveRecovery_ReloginByStatusAlone(t *testing.T) {
	var calls []string
	action := ResolveRecovery(QueryError{Status: 401}, fullContext(&calls))
	require.NotNil(t, action)
	assert.Equal(t, "Sign in again", action.Label)
}

func TestResolveRecovery_ConfigureProvider(t *testing.T) {
	var calls []string
	action := ResolveRecovery(QueryError{
		Code:    qerrors.ErrCodeConfiguration,
		Status:  400,
		Message: "No AI provider available",
	}, fullContext(&calls))

	require.NotNil(t, action)
	assert.Equal(t, "Configure AI provider", action.Label)
}

func TestResolveRecovery_ConfigureDatasource(t *testing.T) {
	var calls []string
	action := ResolveRecovery(QueryError{
		Code:    qerrors.ErrCodeConfiguration,
		Status:  400,
		Message: "Datasource schema is not available. Please sync the datasource schema first.",
	}, fullContext(&calls))

	require.NotNil(t, action)
	assert.Equal(t, "Configure datasource", action.Label)
}

func TestResolveRecovery_NewConversation(t *testing.T) {
	var calls []string
	for _, qe := range []QueryError{
		{Code: qerrors.ErrCodeConversationForbidden, Status: 403},
		{Code: qerrors.ErrCodeConversationNotFound, Status: 404},
		{Status: 403},
		{Status: 404},
	} {
		action := ResolveRecovery(qe, fullContext(&calls))
		require.NotNil(t, action)
		assert.Equal(t, "Start new conversation", action.Label)
	}
}

func TestResolveRecovery_RetryCountdown(t *testing.T) {
	var calls []string
	ctx := fullContext(&calls)
	ctx.RetryCountdown = 6

	action := ResolveRecovery(QueryError{Code: qerrors.ErrCodeRateLimit, Status: 429}, ctx)

	require.NotNil(t, action)
	assert.Equal(t, "Retry in 6 seconds", action.Label)
	assert.True(t, action.Disabled)
}

func TestResolveRecovery_RetryReady(t *testing.T) {
	var calls []string
	ctx := fullContext(&calls)
	ctx.RetryCountdown = 0

	action := ResolveRecovery(QueryError{Code: qerrors.ErrCodeRateLimit, Status: 429}, ctx)

	require.NotNil(t, action)
	assert.Equal(t, "Retry", action.Label)
	assert.False(t, action.Disabled)
	action.Run()
	assert.Equal(t, []string{"retry"}, calls)
}

func TestResolveRecovery_RetryDisabledWhileSubmitting(t *testing.T) {
	var calls []string
	ctx := fullContext(&calls)
	ctx.Submitting = true

	action := ResolveRecovery(QueryError{Code: qerrors.ErrCodeInternal, Status: 500}, ctx)

	require.NotNil(t, action)
	assert.Equal(t, "Retry", action.Label)
	assert.True(t, action.Disabled)
}

func TestResolveRecovery_NoRetryCallbackNoAction(t *testing.T) {
	action := ResolveRecovery(QueryError{Code: qerrors.ErrCodeInternal, Status: 500}, RecoveryContext{})
	assert.Nil(t, action)
}

func TestResolveRecovery_StrictPriority(t *testing.T) {
	// An error that superficially qualifies for several branches resolves to
	// the highest-priority one only.
	var calls []string
	action := ResolveRecovery(QueryError{
		Code:    qerrors.ErrCodeUnauthenticated,
		Status:  429,
		Message: "no provider, please sync the datasource",
	}, fullContext(&calls))

	require.NotNil(t, action)
	assert.Equal(t, "Sign in again", action.Label)
}

func TestResolveRecovery_ValidationGetsNoAction(t *testing.T) {
	action := ResolveRecovery(QueryError{Code: qerrors.ErrCodeValidation, Status: 400}, RecoveryContext{
		Retry: func() {},
	})
	assert.Nil(t, action)
}

// ==========================
// Countdown
// ==========================

func TestCountdown_EmitsDecrementingValues(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var got []int
	for n := range Countdown(ctx, 3, time.Millisecond) {
		got = append(got, n)
	}

	assert.Equal(t, []int{3, 2, 1, 0}, got)
}

func TestCountdown_CancelStopsEmission(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	ch := Countdown(ctx, 1000, 10*time.Millisecond)
	first := <-ch
	assert.Equal(t, 1000, first)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // closed, done
			}
		case <-deadline:
			t.Fatal("countdown channel never closed after cancel")
		}
	}
}
