// internal/orchestrator/orchestrator.go
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	qerrors "nlquery-gateway/internal/common/errors"
	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/common/metrics"
	"nlquery-gateway/internal/models"
)

// Config holds the per-request limits the orchestrator enforces.
type Config struct {
	MaxQuestionLength int
	DefaultLimit      int
	MaxLimit          int
}

// Orchestrator runs one natural-language query end to end: resolve the
// provider and datasource, plan, execute, persist a conversation turn.
// One orchestration call owns no state shared with any other call.
type Orchestrator struct {
	config        Config
	planner       Planner
	executor      Executor
	providers     ProviderRepository
	datasources   DatasourceRepository
	conversations ConversationRepository // optional
	cache         ResultCache            // optional
	logger        logger.Logger
}

func New(
	config Config,
	planner Planner,
	executor Executor,
	providers ProviderRepository,
	datasources DatasourceRepository,
	conversations ConversationRepository,
	cache ResultCache,
	log logger.Logger,
) *Orchestrator {
	if config.DefaultLimit <= 0 {
		config.DefaultLimit = 100
	}
	return &Orchestrator{
		config:        config,
		planner:       planner,
		executor:      executor,
		providers:     providers,
		datasources:   datasources,
		conversations: conversations,
		cache:         cache,
		logger:        log.With(map[string]interface{}{"component": "orchestrator"}),
	}
}

// Run handles one QueryRequest. Failures are always *errors.QueryError values
// carrying code, status and message; collaborator errors are classified here,
// exactly once.
func (o *Orchestrator) Run(ctx context.Context, req *models.QueryRequest) (*models.QueryResponse, error) {
	start := time.Now()

	if verr := validateRequest(req, o.config); verr != nil {
		metrics.QueryErrorsTotal.WithLabelValues(string(verr.Code)).Inc()
		return nil, verr
	}

	provider, err := o.resolveProvider(ctx, req.AIProviderID)
	if err != nil {
		return nil, o.failErr(err)
	}

	datasource, err := o.resolveDatasource(ctx, req.DatasourceID)
	if err != nil {
		return nil, o.failErr(err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = o.config.DefaultLimit
	}

	question := strings.TrimSpace(req.Question)
	cacheKey := resultCacheKey(datasource.ID, question, limit)

	// Cached responses short-circuit the planner and executor. Skipped when a
	// conversation is attached so the transcript always reflects a real run.
	if o.cache != nil && req.ConversationID == 0 {
		if cached, ok := o.cache.Get(ctx, cacheKey); ok {
			metrics.CacheHitsTotal.Inc()
			o.logger.Info("query served from cache", map[string]interface{}{
				"datasourceId": datasource.ID,
			})
			return cached, nil
		}
	}

	plan, err := o.planner.Plan(ctx, question, datasource.ID, limit)
	if err != nil {
		return nil, o.fail(classifyPlannerError(err))
	}
	if plan == nil || len(plan.Statements) == 0 {
		return nil, o.fail(qerrors.NewExternalServiceError("AI planner returned an empty SQL plan"))
	}

	output, err := o.executor.Execute(ctx, plan, ExecuteOptions{Limit: limit})
	if err != nil {
		return nil, o.fail(classifyExecutorError(err, plan.Statements[0].SQL))
	}

	resp := &models.QueryResponse{
		SQL:            joinStatements(plan),
		Rows:           output.Rows,
		Summary:        output.Summary,
		DatasourceID:   datasource.ID,
		AIProviderID:   provider.ID,
		Limit:          limit,
		ConversationID: req.ConversationID,
	}

	// Conversation logging is best-effort: the query result is the primary
	// contract and a failed write must never change it.
	if o.conversations != nil && req.ConversationID > 0 {
		o.appendConversationTurn(ctx, req.ConversationID, question, resp)
	}

	if o.cache != nil && req.ConversationID == 0 {
		if err := o.cache.Set(ctx, cacheKey, resp); err != nil {
			o.logger.Warn("result cache write failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	metrics.QueriesTotal.WithLabelValues(fmt.Sprintf("%d", datasource.ID)).Inc()
	metrics.QueryDuration.Observe(time.Since(start).Seconds())

	o.logger.Info("query completed", map[string]interface{}{
		"datasourceId": datasource.ID,
		"aiProviderId": provider.ID,
		"rowCount":     len(output.Rows),
		"durationMs":   time.Since(start).Milliseconds(),
	})

	return resp, nil
}

// NewConversation starts an empty conversation and returns its id.
func (o *Orchestrator) NewConversation(ctx context.Context, title string) (int64, error) {
	if o.conversations == nil {
		return 0, qerrors.NewConfigurationError("Conversations are not enabled")
	}
	id, err := o.conversations.Create(ctx, title)
	if err != nil {
		return 0, qerrors.New(qerrors.ErrCodeInternal, "")
	}
	return id, nil
}

func (o *Orchestrator) resolveProvider(ctx context.Context, explicitID int64) (*models.AIProvider, error) {
	providers, err := o.providers.List(ctx)
	if err != nil {
		return nil, qerrors.New(qerrors.ErrCodeInternal, "")
	}

	if explicitID > 0 {
		for i := range providers {
			if providers[i].ID == explicitID {
				return &providers[i], nil
			}
		}
		return nil, qerrors.NewConfigurationError("Selected AI provider not found")
	}

	for i := range providers {
		if providers[i].IsDefault {
			return &providers[i], nil
		}
	}
	return nil, qerrors.NewConfigurationError("No AI provider available")
}

func (o *Orchestrator) resolveDatasource(ctx context.Context, explicitID int64) (*models.Datasource, error) {
	datasources, err := o.datasources.List(ctx)
	if err != nil {
		return nil, qerrors.New(qerrors.ErrCodeInternal, "")
	}

	if explicitID > 0 {
		for i := range datasources {
			if datasources[i].ID == explicitID {
				return &datasources[i], nil
			}
		}
		// An explicit id that resolves to nothing is the caller's mistake.
		return nil, qerrors.NewValidationError("Selected datasource not found",
			"datasource: datasource not found")
	}

	for i := range datasources {
		if datasources[i].IsDefault {
			return &datasources[i], nil
		}
	}
	return nil, qerrors.NewConfigurationError("No datasource configured")
}

func (o *Orchestrator) appendConversationTurn(ctx context.Context, conversationID int64, question string, resp *models.QueryResponse) {
	now := time.Now().UTC()
	turn := []models.ConversationMessage{
		{
			ConversationID: conversationID,
			Role:           models.RoleUser,
			Content:        question,
			CreatedAt:      now,
		},
		{
			ConversationID: conversationID,
			Role:           models.RoleAssistant,
			Content:        resp.Summary,
			Metadata: map[string]interface{}{
				"sql":          resp.SQL,
				"rowCount":     len(resp.Rows),
				"datasourceId": resp.DatasourceID,
				"aiProviderId": resp.AIProviderID,
			},
			CreatedAt: now,
		},
	}

	for _, msg := range turn {
		if err := o.conversations.AppendMessage(ctx, msg); err != nil {
			o.logger.Warn("conversation write failed", map[string]interface{}{
				"conversationId": conversationID,
				"role":           string(msg.Role),
				"error":          err.Error(),
			})
			return
		}
	}
}

func (o *Orchestrator) fail(qe *qerrors.QueryError) error {
	metrics.QueryErrorsTotal.WithLabelValues(string(qe.Code)).Inc()
	o.logger.Error("query failed", map[string]interface{}{
		"errorCode": string(qe.Code),
		"status":    qe.Status,
		"message":   qe.Message,
	})
	return qe
}

func (o *Orchestrator) failErr(err error) error {
	if qe, ok := qerrors.AsQueryError(err); ok {
		return o.fail(qe)
	}
	return o.fail(qerrors.New(qerrors.ErrCodeInternal, ""))
}

func resultCacheKey(datasourceID int64, question string, limit int) string {
	return fmt.Sprintf("nlq:result:%d:%d:%s", datasourceID, limit, question)
}

func joinStatements(plan *models.SQLPlan) string {
	parts := make([]string, len(plan.Statements))
	for i, stmt := range plan.Statements {
		parts[i] = stmt.SQL
	}
	return strings.Join(parts, "; ")
}
