// internal/aiclient/executor.go
package aiclient

import (
	"context"
	"fmt"
	"time"

	commonhttp "nlquery-gateway/internal/common/http"
	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/models"
	"nlquery-gateway/internal/orchestrator"
)

// ExecutorClient runs a planned SQL statement set against the execution
// service and returns its rows.
type ExecutorClient struct {
	http    *commonhttp.Client
	baseURL string
	logger  logger.Logger
}

func NewExecutorClient(baseURL string, timeout time.Duration, log logger.Logger) *ExecutorClient {
	return &ExecutorClient{
		http:    commonhttp.NewClient(timeout),
		baseURL: baseURL,
		logger:  log.With(map[string]interface{}{"component": "executor_client"}),
	}
}

type executeRequest struct {
	Statements []models.SQLStatement `json:"statements"`
	Limit      int                   `json:"limit"`
}

type executeResponse struct {
	Rows    []models.Row `json:"rows"`
	Summary string       `json:"summary,omitempty"`
	Error   string       `json:"error,omitempty"`
}

func (c *ExecutorClient) Execute(ctx context.Context, plan *models.SQLPlan, opts orchestrator.ExecuteOptions) (*models.ExecutionOutput, error) {
	start := time.Now()

	var resp executeResponse
	err := c.http.PostJSON(ctx, c.baseURL+"/v1/execute", executeRequest{
		Statements: plan.Statements,
		Limit:      opts.Limit,
	}, &resp)
	if err != nil {
		return nil, fmt.Errorf("executor call failed: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("executor error: %s", resp.Error)
	}

	c.logger.Debug("execution completed", map[string]interface{}{
		"rowCount":   len(resp.Rows),
		"durationMs": time.Since(start).Milliseconds(),
	})
	return &models.ExecutionOutput{Rows: resp.Rows, Summary: resp.Summary}, nil
}
