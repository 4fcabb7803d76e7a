// internal/orchestrator/validate.go
package orchestrator

import (
	"fmt"
	"strings"

	qerrors "nlquery-gateway/internal/common/errors"
	"nlquery-gateway/internal/models"
)

// validateRequest checks every field of the request and returns a single
// VALIDATION_ERROR naming each violating field as a "field: message" detail.
func validateRequest(req *models.QueryRequest, cfg Config) *qerrors.QueryError {
	var details []string

	question := strings.TrimSpace(req.Question)
	if question == "" {
		details = append(details, "question: question is required")
	} else if cfg.MaxQuestionLength > 0 && len([]rune(question)) > cfg.MaxQuestionLength {
		details = append(details, fmt.Sprintf("question: question must be at most %d characters", cfg.MaxQuestionLength))
	}

	if req.DatasourceID < 0 {
		details = append(details, "datasource: datasource must be a positive integer")
	}
	if req.ActionID < 0 {
		details = append(details, "action: action must be a positive integer")
	}
	if req.AIProviderID < 0 {
		details = append(details, "aiProvider: aiProvider must be a positive integer")
	}
	if req.ConversationID < 0 {
		details = append(details, "conversationId: conversationId must be a positive integer")
	}

	if req.Limit < 0 {
		details = append(details, "limit: limit must be a positive integer")
	} else if cfg.MaxLimit > 0 && req.Limit > cfg.MaxLimit {
		details = append(details, fmt.Sprintf("limit: limit must be at most %d", cfg.MaxLimit))
	}

	if len(details) == 0 {
		return nil
	}
	return qerrors.NewValidationError("Invalid request", details...)
}
