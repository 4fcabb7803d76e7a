// internal/orchestrator/collaborators.go
package orchestrator

import (
	"context"

	"nlquery-gateway/internal/models"
)

// Planner turns a natural-language question into a SQL plan. Planning is an
// external service; its error text is the only classification signal.
type Planner interface {
	Plan(ctx context.Context, question string, datasourceID int64, limit int) (*models.SQLPlan, error)
}

// ExecuteOptions carries per-call execution settings.
type ExecuteOptions struct {
	Limit int
}

// Executor runs a SQL plan against the resolved datasource.
type Executor interface {
	Execute(ctx context.Context, plan *models.SQLPlan, opts ExecuteOptions) (*models.ExecutionOutput, error)
}

// ProviderRepository lists configured AI providers. Read-only; the default
// flag is enforced at creation time by the repository layer.
type ProviderRepository interface {
	List(ctx context.Context) ([]models.AIProvider, error)
}

// DatasourceRepository lists configured datasources. Read-only.
type DatasourceRepository interface {
	List(ctx context.Context) ([]models.Datasource, error)
}

// ConversationRepository persists conversation turns. All writes are
// best-effort from the orchestrator's point of view.
type ConversationRepository interface {
	Create(ctx context.Context, title string) (int64, error)
	AppendMessage(ctx context.Context, msg models.ConversationMessage) error
}

// ResultCache caches successful responses keyed by question/datasource/limit.
// A failing cache never fails a query.
type ResultCache interface {
	Get(ctx context.Context, key string) (*models.QueryResponse, bool)
	Set(ctx context.Context, key string, resp *models.QueryResponse) error
}
