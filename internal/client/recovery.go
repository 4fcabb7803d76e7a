// internal/client/recovery.go
package client

import (
	"fmt"
	"strings"

	qerrors "nlquery-gateway/internal/common/errors"
)

// RecoveryAction is the single suggested next step for a decoded error.
type RecoveryAction struct {
	Label    string
	Run      func()
	Disabled bool
}

// RecoveryContext carries the caller-side state and callbacks the resolver
// picks from. A nil callback disables the corresponding action.
type RecoveryContext struct {
	RetryCountdown int
	Submitting     bool

	Relogin             func() // expected to also reset any in-flight conversation
	ConfigureProvider   func()
	ConfigureDatasource func()
	NewConversation     func()
	Retry               func()
}

// ResolveRecovery picks at most one action for err. The branches below are a
// strict priority order, not independent rules: the first match wins and
// nothing further is evaluated.
func ResolveRecovery(err QueryError, ctx RecoveryContext) *RecoveryAction {
	if err.Code == qerrors.ErrCodeUnauthenticated || err.Status == 401 {
		return &RecoveryAction{Label: "Sign in again", Run: ctx.Relogin}
	}

	if err.Code == qerrors.ErrCodeConfiguration {
		if mentionsProvider(err.Message) {
			return &RecoveryAction{Label: "Configure AI provider", Run: ctx.ConfigureProvider}
		}
		return &RecoveryAction{Label: "Configure datasource", Run: ctx.ConfigureDatasource}
	}

	if err.Code == qerrors.ErrCodeConversationForbidden ||
		err.Code == qerrors.ErrCodeConversationNotFound ||
		err.Status == 403 || err.Status == 404 {
		return &RecoveryAction{Label: "Start new conversation", Run: ctx.NewConversation}
	}

	if err.Code == qerrors.ErrCodeInternal || err.Code == qerrors.ErrCodeRateLimit ||
		err.Status >= 500 || err.Status == 429 {
		if ctx.Retry == nil {
			return nil
		}
		if ctx.RetryCountdown > 0 {
			return &RecoveryAction{
				Label:    fmt.Sprintf("Retry in %d seconds", ctx.RetryCountdown),
				Run:      ctx.Retry,
				Disabled: true,
			}
		}
		return &RecoveryAction{Label: "Retry", Run: ctx.Retry, Disabled: ctx.Submitting}
	}

	return nil
}

func mentionsProvider(message string) bool {
	lower := strings.ToLower(message)
	return strings.Contains(lower, "provider") ||
		strings.Contains(lower, "model") ||
		strings.Contains(message, "模型")
}
