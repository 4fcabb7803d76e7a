// internal/client/decoder_test.go
package client

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	qerrors "nlquery-gateway/internal/common/errors"
)

// ==========================
// Structured Errors
// ==========================

func TestDecode_Structured_ServerCodeWins(t *testing.T) {
	// Message text screams database, but the server already classified.
	qe := Decode(&APIError{
		Status:  429,
		Code:    "RATE_LIMIT",
		Message: "sql database syntax error rate exceeded",
	}, "fallback")

	assert.Equal(t, qerrors.ErrCodeRateLimit, qe.Code)
	assert.Equal(t, 429, qe.Status)
}

func TestDecode_Structured_UnknownCodeFallsBackToMessage(t *testing.T) {
	qe := Decode(&APIError{
		Status:  400,
		Code:    "E_SOMETHING_NEW",
		Message: "Datasource schema is not available. Please sync the datasource schema first.",
	}, "fallback")

	assert.Equal(t, qerrors.ErrCodeConfiguration, qe.Code)
}

func TestDecode_Structured_StatusInferenceLast(t *testing.T) {
	tests := []struct {
		status int
		code   qerrors.ErrorCode
	}{
		{429, qerrors.ErrCodeRateLimit},
		{401, qerrors.ErrCodeUnauthenticated},
		{403, qerrors.ErrCodeConversationForbidden},
		{404, qerrors.ErrCodeConversationNotFound},
		{500, qerrors.ErrCodeInternal},
		{502, qerrors.ErrCodeInternal},
		{400, qerrors.ErrCodeValidation},
	}

	for _, tt := range tests {
		qe := Decode(&APIError{Status: tt.status, Message: "xyzzy"}, "fallback")
		assert.Equal(t, tt.code, qe.Code, "status %d", tt.status)
	}
}

func TestDecode_Structured_EmptyMessageUsesFallback(t *testing.T) {
	qe := Decode(&APIError{Status: 500}, "Query failed")
	assert.Equal(t, "Query failed", qe.Message)
}

func TestDecode_SQLExtraction(t *testing.T) {
	qe := Decode(&APIError{
		Status:  400,
		Code:    "DATABASE_ERROR",
		Message: "Database error. SQL: SELECT * FROM t; Syntax Error",
	}, "fallback")

	assert.Equal(t, "SELECT * FROM t", qe.SQL)
	assert.NotContains(t, qe.Message, "SELECT * FROM t")
	assert.Contains(t, qe.Message, "Syntax Error")
}

func TestDecode_SQLExtraction_BareLeadingStatement(t *testing.T) {
	qe := Decode(&APIError{
		Status:  400,
		Code:    "DATABASE_ERROR",
		Message: "SELECT name FROM users WHERE; column does not exist",
	}, "fallback")

	assert.Equal(t, "SELECT name FROM users WHERE", qe.SQL)
	assert.Contains(t, qe.Message, "column does not exist")
}

func TestDecode_SQLExtraction_NoStatement(t *testing.T) {
	qe := Decode(&APIError{
		Status:  400,
		Code:    "DATABASE_ERROR",
		Message: "Database access denied. Please check database credentials.",
	}, "fallback")

	assert.Empty(t, qe.SQL)
	assert.Equal(t, "Database access denied. Please check database credentials.", qe.Message)
}

func TestDecode_RetryAfterCarriedThrough(t *testing.T) {
	qe := Decode(&APIError{Status: 429, Code: "RATE_LIMIT", Message: "throttled", RetryAfter: 30}, "fallback")
	assert.Equal(t, 30, qe.RetryAfter)
}

// ==========================
// Detail Rewriting
// ==========================

func TestDecode_DetailRewriting(t *testing.T) {
	qe := Decode(&APIError{
		Status:  400,
		Code:    "VALIDATION_ERROR",
		Message: "Invalid request",
		Details: []interface{}{
			"conversationId: conversationId must be a positive integer",
			"question: question is required",
			"limit: limit must be at most 1000",
		},
	}, "fallback")

	assert.Equal(t, []string{
		"Conversation ID: Conversation ID must be a positive integer",
		"Question: Question is required",
		"Limit: Limit must be at most 1000",
	}, qe.Details)
}

func TestDecode_DetailRewriting_UnknownFieldPassesThrough(t *testing.T) {
	qe := Decode(&APIError{
		Status:  400,
		Code:    "VALIDATION_ERROR",
		Details: []interface{}{"widget: widget is broken"},
	}, "fallback")

	assert.Equal(t, []string{"widget: widget is broken"}, qe.Details)
}

func TestDecode_DetailCoercion(t *testing.T) {
	qe := Decode(&APIError{
		Status: 400,
		Code:   "VALIDATION_ERROR",
		Details: []interface{}{
			float64(42),
			true,
			nil,
			map[string]interface{}{"message": "question is required"},
			map[string]interface{}{"weird": "shape"},
		},
	}, "fallback")

	assert.Equal(t, []string{
		"42",
		"true",
		"<nil>",
		"Question is required",
		`{"weird":"shape"}`,
	}, qe.Details)
}

// ==========================
// Bare Errors
// ==========================

func TestDecode_Bare_ValidationPhrase(t *testing.T) {
	qe := Decode(errors.New("question is required"), "fallback")

	assert.Equal(t, qerrors.ErrCodeValidation, qe.Code)
	assert.Equal(t, "Question is required", qe.Message)
}

func TestDecode_Bare_KeywordClusters(t *testing.T) {
	tests := []struct {
		name    string
		message string
		code    qerrors.ErrorCode
	}{
		{"rate limit english", "rate limit exceeded, slow down", qerrors.ErrCodeRateLimit},
		{"rate limit chinese", "请求过于频繁，请稍后再试", qerrors.ErrCodeRateLimit},
		{"unauthenticated english", "please log in to continue", qerrors.ErrCodeUnauthenticated},
		{"unauthenticated chinese", "登录已过期", qerrors.ErrCodeUnauthenticated},
		{"forbidden", "permission denied for conversation 5", qerrors.ErrCodeConversationForbidden},
		{"forbidden chinese", "没有权限访问该会话", qerrors.ErrCodeConversationForbidden},
		{"not found", "conversation 5 not found", qerrors.ErrCodeConversationNotFound},
		{"not found chinese", "会话不存在", qerrors.ErrCodeConversationNotFound},
		{"configuration", "no datasource configured yet", qerrors.ErrCodeConfiguration},
		{"configuration chinese", "数据源未配置", qerrors.ErrCodeConfiguration},
		{"database", "syntax error at or near FROM", qerrors.ErrCodeDatabase},
		{"database chinese", "数据库查询失败", qerrors.ErrCodeDatabase},
		{"unmatched", "something completely different", qerrors.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qe := Decode(errors.New(tt.message), "fallback")
			assert.Equal(t, tt.code, qe.Code)
		})
	}
}

func TestDecode_Bare_NetworkFailureFriendlyMessage(t *testing.T) {
	for _, msg := range []string{"Failed to fetch", "NetworkError when attempting to fetch resource", "TypeError: cannot read"} {
		qe := Decode(errors.New(msg), "fallback")
		assert.Equal(t, "Network error. Please check your connection and try again.", qe.Message)
		assert.Equal(t, qerrors.ErrCodeInternal, qe.Code)
	}
}

func TestDecode_NeverPanics(t *testing.T) {
	for _, thrown := range []interface{}{nil, 42, struct{}{}, (*APIError)(nil), ""} {
		qe := Decode(thrown, "fallback")
		assert.Equal(t, qerrors.ErrCodeInternal, qe.Code)
		assert.Equal(t, "fallback", qe.Message)
	}
}

// ==========================
// Advice
// ==========================

func TestDecode_ConfigurationAdvice(t *testing.T) {
	tests := []struct {
		name    string
		message string
		advice  string
	}{
		{"schema sync", "Datasource schema is not available. Please sync the datasource schema first.", "Sync the datasource first"},
		{"provider", "No AI provider available", "Configure an AI provider first"},
		{"datasource", "No datasource configured", "Configure a datasource first"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qe := Decode(&APIError{Status: 400, Code: "CONFIGURATION_ERROR", Message: tt.message}, "fallback")
			assert.Equal(t, tt.advice, qe.Advice)
		})
	}
}
