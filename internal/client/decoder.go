// internal/client/decoder.go
package client

import (
	"regexp"
	"strings"

	qerrors "nlquery-gateway/internal/common/errors"
)

// Decode reconstructs a typed QueryError from whatever a failed call produced:
// a structured *APIError, a plain error, or a bare string. It never panics;
// the worst case is INTERNAL_ERROR carrying the fallback message. A
// server-supplied code is always trusted over local inference.
func Decode(thrown interface{}, fallback string) QueryError {
	switch v := thrown.(type) {
	case *APIError:
		if v != nil {
			return decodeStructured(v, fallback)
		}
	case APIError:
		return decodeStructured(&v, fallback)
	case error:
		if v != nil {
			return decodeBare(v.Error(), fallback)
		}
	case string:
		if v != "" {
			return decodeBare(v, fallback)
		}
	}
	return QueryError{
		Message: fallback,
		Code:    qerrors.ErrCodeInternal,
		Status:  qerrors.StatusFor(qerrors.ErrCodeInternal),
	}
}

func decodeStructured(apiErr *APIError, fallback string) QueryError {
	code, ok := qerrors.Normalize(apiErr.Code)
	if !ok {
		code, ok = inferCodeFromMessage(apiErr.Message)
	}
	if !ok {
		code, ok = inferCodeFromStatus(apiErr.Status)
	}
	if !ok {
		code = qerrors.ErrCodeInternal
	}

	message := strings.TrimSpace(apiErr.Message)
	if message == "" {
		message = fallback
	}

	status := apiErr.Status
	if status <= 0 {
		status = qerrors.StatusFor(code)
	}

	out := QueryError{
		Message:    message,
		Status:     status,
		Code:       code,
		Details:    rewriteDetails(apiErr.Details),
		RetryAfter: apiErr.RetryAfter,
	}

	if code == qerrors.ErrCodeDatabase {
		out.SQL, out.Message = extractSQL(out.Message)
	}
	out.Advice = adviceFor(code, out.Message)
	return out
}

func decodeBare(raw, fallback string) QueryError {
	message := strings.TrimSpace(raw)
	if message == "" {
		message = fallback
	}

	// Local validation phrases are classified directly.
	if localized, ok := localizeValidationMessage(message); ok {
		return QueryError{
			Message: localized,
			Code:    qerrors.ErrCodeValidation,
			Status:  qerrors.StatusFor(qerrors.ErrCodeValidation),
			Advice:  adviceFor(qerrors.ErrCodeValidation, localized),
		}
	}

	if isNetworkFailure(message) {
		return QueryError{
			Message: "Network error. Please check your connection and try again.",
			Code:    qerrors.ErrCodeInternal,
			Status:  qerrors.StatusFor(qerrors.ErrCodeInternal),
		}
	}

	code, ok := inferCodeFromMessage(message)
	if !ok {
		code = qerrors.ErrCodeInternal
	}

	out := QueryError{
		Message: message,
		Code:    code,
		Status:  qerrors.StatusFor(code),
	}
	if code == qerrors.ErrCodeDatabase {
		out.SQL, out.Message = extractSQL(out.Message)
	}
	out.Advice = adviceFor(code, out.Message)
	return out
}

// messageRules infer a taxonomy code from free text when the server supplied
// none. Prioritized, first match wins. English and Chinese phrasings are both
// recognized because upstream services emit either.
var messageRules = []struct {
	pattern *regexp.Regexp
	code    qerrors.ErrorCode
}{
	{regexp.MustCompile(`(?i)rate limit|too many requests|429|请求过于频繁|限流`), qerrors.ErrCodeRateLimit},
	{regexp.MustCompile(`(?i)unauthenticated|unauthorized|not logged in|please log ?in|401|未登录|请先登录|登录已过期`), qerrors.ErrCodeUnauthenticated},
	{regexp.MustCompile(`(?i)forbidden|permission denied|无权|没有权限`), qerrors.ErrCodeConversationForbidden},
	{regexp.MustCompile(`(?i)conversation.*not found|not found.*conversation|会话不存在|找不到会话`), qerrors.ErrCodeConversationNotFound},
	{regexp.MustCompile(`(?i)not configured|no (ai )?provider|no datasource|sync the datasource|schema is not available|未配置|请先同步`), qerrors.ErrCodeConfiguration},
	{regexp.MustCompile(`(?i)database error|sql|syntax error|read[- ]only|check database credentials|数据库`), qerrors.ErrCodeDatabase},
}

func inferCodeFromMessage(message string) (qerrors.ErrorCode, bool) {
	for _, rule := range messageRules {
		if rule.pattern.MatchString(message) {
			return rule.code, true
		}
	}
	return "", false
}

func inferCodeFromStatus(status int) (qerrors.ErrorCode, bool) {
	switch {
	case status == 429:
		return qerrors.ErrCodeRateLimit, true
	case status == 401:
		return qerrors.ErrCodeUnauthenticated, true
	case status == 403:
		return qerrors.ErrCodeConversationForbidden, true
	case status == 404:
		return qerrors.ErrCodeConversationNotFound, true
	case status >= 500:
		return qerrors.ErrCodeInternal, true
	case status == 400:
		return qerrors.ErrCodeValidation, true
	}
	return "", false
}

var networkFailurePattern = regexp.MustCompile(`(?i)failed to fetch|networkerror|typeerror|connection (refused|reset)|网络`)

func isNetworkFailure(message string) bool {
	return networkFailurePattern.MatchString(message)
}

var (
	// "Database error. SQL: SELECT ...; <reason>" or a bare statement.
	embeddedSQLPattern = regexp.MustCompile(`(?is)SQL:\s*((?:SELECT|INSERT|UPDATE|DELETE|WITH)\b[^;]*)`)
	leadingSQLPattern  = regexp.MustCompile(`(?is)^\s*((?:SELECT|INSERT|UPDATE|DELETE|WITH)\b[^;]*)`)
)

// extractSQL pulls an embedded SQL statement out of a DATABASE_ERROR message
// so the UI can render it separately. Returns the statement (possibly empty)
// and the message with the statement removed.
func extractSQL(message string) (string, string) {
	if m := embeddedSQLPattern.FindStringSubmatchIndex(message); m != nil {
		sqlText := strings.TrimSpace(message[m[2]:m[3]])
		return sqlText, tidyMessage(message[:m[0]], message[m[1]:])
	}
	if m := leadingSQLPattern.FindStringSubmatchIndex(message); m != nil {
		sqlText := strings.TrimSpace(message[m[2]:m[3]])
		return sqlText, tidyMessage("", message[m[1]:])
	}
	return "", message
}

func tidyMessage(before, after string) string {
	before = strings.TrimSpace(before)
	after = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(after), ";"))
	joined := strings.TrimSpace(strings.TrimSuffix(before+" "+after, " "))
	joined = strings.TrimSpace(joined)
	if joined == "" {
		return "Database error."
	}
	return joined
}

func adviceFor(code qerrors.ErrorCode, message string) string {
	switch code {
	case qerrors.ErrCodeConfiguration:
		lower := strings.ToLower(message)
		switch {
		case strings.Contains(lower, "sync") || strings.Contains(message, "同步"):
			return "Sync the datasource first"
		case strings.Contains(lower, "provider") || strings.Contains(lower, "model") || strings.Contains(message, "模型"):
			return "Configure an AI provider first"
		default:
			return "Configure a datasource first"
		}
	case qerrors.ErrCodeValidation:
		return "Check the highlighted fields and try again"
	case qerrors.ErrCodeRateLimit:
		return "Wait a moment before retrying"
	case qerrors.ErrCodeUnauthenticated:
		return "Sign in again to continue"
	case qerrors.ErrCodeConversationForbidden, qerrors.ErrCodeConversationNotFound:
		return "Start a new conversation"
	}
	return ""
}
