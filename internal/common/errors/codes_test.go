package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_RoundTrip(t *testing.T) {
	// Every taxonomy code normalizes back to itself and keeps its canonical
	// status.
	for _, code := range Codes() {
		normalized, ok := Normalize(string(code))
		assert.True(t, ok, "code %s should normalize", code)
		assert.Equal(t, code, normalized)
		assert.Equal(t, StatusFor(code), StatusFor(normalized))
	}
}

func TestNormalize_TrimsWhitespace(t *testing.T) {
	code, ok := Normalize("  RATE_LIMIT \n")
	assert.True(t, ok)
	assert.Equal(t, ErrCodeRateLimit, code)
}

func TestNormalize_RejectsUnknownAndWrongCase(t *testing.T) {
	tests := []string{
		"",
		"rate_limit",
		"Validation_Error",
		"SOMETHING_ELSE",
		"E_VALIDATION_ERROR",
	}

	for _, raw := range tests {
		_, ok := Normalize(raw)
		assert.False(t, ok, "raw %q must not normalize", raw)
	}
}

func TestStatusFor_CanonicalMapping(t *testing.T) {
	tests := []struct {
		code   ErrorCode
		status int
	}{
		{ErrCodeValidation, 400},
		{ErrCodeDatabase, 400},
		{ErrCodeConfiguration, 400},
		{ErrCodeRateLimit, 429},
		{ErrCodeUnauthenticated, 401},
		{ErrCodeConversationForbidden, 403},
		{ErrCodeConversationNotFound, 404},
		{ErrCodeInternal, 500},
		{ErrCodeExternalService, 502},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, StatusFor(tt.code), "code %s", tt.code)
	}
}

func TestMessageFor_EveryCodeHasOneDefault(t *testing.T) {
	seen := make(map[string]bool)
	for _, code := range Codes() {
		msg := MessageFor(code)
		assert.NotEmpty(t, msg, "code %s", code)
		seen[msg] = true
	}
	// Default messages are distinct per code.
	assert.Len(t, seen, len(Codes()))
}

func TestAsQueryError_UnwrapsClassifiedErrors(t *testing.T) {
	base := New(ErrCodeDatabase, "Database error. SQL: SELECT 1")

	qe, ok := AsQueryError(base)
	assert.True(t, ok)
	assert.Equal(t, ErrCodeDatabase, qe.Code)

	_, ok = AsQueryError(assertableErr{})
	assert.False(t, ok)
}

type assertableErr struct{}

func (assertableErr) Error() string { return "plain" }
