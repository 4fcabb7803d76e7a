// internal/aiclient/planner.go
package aiclient

import (
	"context"
	"fmt"
	"time"

	commonhttp "nlquery-gateway/internal/common/http"
	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/models"
)

// PlannerClient calls the NL->SQL planning service over HTTP.
type PlannerClient struct {
	http    *commonhttp.Client
	baseURL string
	logger  logger.Logger
}

func NewPlannerClient(baseURL string, timeout time.Duration, log logger.Logger) *PlannerClient {
	return &PlannerClient{
		http:    commonhttp.NewClient(timeout),
		baseURL: baseURL,
		logger:  log.With(map[string]interface{}{"component": "planner_client"}),
	}
}

type planRequest struct {
	Question     string `json:"question"`
	DatasourceID int64  `json:"datasourceId"`
	Limit        int    `json:"limit"`
}

type planResponse struct {
	Statements []models.SQLStatement `json:"statements"`
	Error      string                `json:"error,omitempty"`
}

func (c *PlannerClient) Plan(ctx context.Context, question string, datasourceID int64, limit int) (*models.SQLPlan, error) {
	start := time.Now()

	var resp planResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/plan", planRequest{
		Question:     question,
		DatasourceID: datasourceID,
		Limit:        limit,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("planner call failed: %w", err)
	}
	// Some planner failures arrive as 200s with an error field.
	if resp.Error != "" {
		return nil, fmt.Errorf("planner error: %s", resp.Error)
	}

	c.logger.Debug("plan received", map[string]interface{}{
		"statements": len(resp.Statements),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return &models.SQLPlan{Statements: resp.Statements}, nil
}
