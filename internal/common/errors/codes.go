// Package errors provides the closed error taxonomy and wire envelope for the
// query gateway.
package errors

import "strings"

// ErrorCode represents standardized error codes carried across the wire.
type ErrorCode string

const (
	ErrCodeValidation            ErrorCode = "VALIDATION_ERROR"
	ErrCodeDatabase              ErrorCode = "DATABASE_ERROR"
	ErrCodeConfiguration         ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeRateLimit             ErrorCode = "RATE_LIMIT"
	ErrCodeUnauthenticated       ErrorCode = "UNAUTHENTICATED"
	ErrCodeConversationForbidden ErrorCode = "CONVERSATION_FORBIDDEN"
	ErrCodeConversationNotFound  ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeInternal              ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService       ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// defaultMessages maps every code to exactly one default message. Built once,
// read-only afterwards.
var defaultMessages = map[ErrorCode]string{
	ErrCodeValidation:            "Invalid request",
	ErrCodeDatabase:              "Database error",
	ErrCodeConfiguration:         "Configuration error",
	ErrCodeRateLimit:             "Too many requests",
	ErrCodeUnauthenticated:       "Authentication required",
	ErrCodeConversationForbidden: "You do not have access to this conversation",
	ErrCodeConversationNotFound:  "Conversation not found",
	ErrCodeInternal:              "Internal server error",
	ErrCodeExternalService:       "External service error",
}

// canonicalStatus maps every code to exactly one canonical HTTP status.
var canonicalStatus = map[ErrorCode]int{
	ErrCodeValidation:            400,
	ErrCodeDatabase:              400,
	ErrCodeConfiguration:         400,
	ErrCodeRateLimit:             429,
	ErrCodeUnauthenticated:       401,
	ErrCodeConversationForbidden: 403,
	ErrCodeConversationNotFound:  404,
	ErrCodeInternal:              500,
	ErrCodeExternalService:       502,
}

// MessageFor returns the default human message for a code.
func MessageFor(code ErrorCode) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[ErrCodeInternal]
}

// StatusFor returns the canonical HTTP status for a code.
func StatusFor(code ErrorCode) int {
	if status, ok := canonicalStatus[code]; ok {
		return status
	}
	return canonicalStatus[ErrCodeInternal]
}

// Normalize trims whitespace and matches raw against the closed code set,
// case-sensitively. Unknown input yields ("", false); callers must infer a code
// by other means rather than fabricate one.
func Normalize(raw string) (ErrorCode, bool) {
	code := ErrorCode(strings.TrimSpace(raw))
	if _, ok := canonicalStatus[code]; ok {
		return code, true
	}
	return "", false
}

// Codes returns all taxonomy codes, for exhaustive iteration in tests.
func Codes() []ErrorCode {
	return []ErrorCode{
		ErrCodeValidation,
		ErrCodeDatabase,
		ErrCodeConfiguration,
		ErrCodeRateLimit,
		ErrCodeUnauthenticated,
		ErrCodeConversationForbidden,
		ErrCodeConversationNotFound,
		ErrCodeInternal,
		ErrCodeExternalService,
	}
}
