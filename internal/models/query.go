// internal/models/query.go
package models

import "time"

// QueryRequest is one natural-language query from a caller. Numeric fields are
// optional; zero means "not supplied" and resolution falls back to defaults.
type QueryRequest struct {
	Question       string `json:"question"`
	DatasourceID   int64  `json:"datasource,omitempty"`
	ActionID       int64  `json:"action,omitempty"`
	AIProviderID   int64  `json:"aiProvider,omitempty"`
	ConversationID int64  `json:"conversationId,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

// Row is one result row, column name to value.
type Row map[string]interface{}

// QueryResponse carries the executed SQL, its rows, and the resolved resource
// ids so the caller knows which implicit resources were chosen. Immutable
// after construction.
type QueryResponse struct {
	SQL            string `json:"sql"`
	Rows           []Row  `json:"rows"`
	Summary        string `json:"summary,omitempty"`
	DatasourceID   int64  `json:"datasourceId,omitempty"`
	AIProviderID   int64  `json:"aiProviderId,omitempty"`
	Limit          int    `json:"limit,omitempty"`
	ConversationID int64  `json:"conversationId,omitempty"`
}

// SQLStatement is one planned statement from the NL->SQL planner.
type SQLStatement struct {
	SQL     string `json:"sql"`
	Purpose string `json:"purpose,omitempty"`
}

// SQLPlan is the planner's output for a question.
type SQLPlan struct {
	Statements []SQLStatement `json:"statements"`
}

// ExecutionOutput is the executor's result for a plan.
type ExecutionOutput struct {
	Rows    []Row  `json:"rows"`
	Summary string `json:"summary,omitempty"`
}

// AIProvider is a configured model provider. IsDefault is enforced at
// creation time by the repository layer; consumers only read the flag.
type AIProvider struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Model     string `json:"model"`
	IsDefault bool   `json:"isDefault"`
}

// Datasource is a configured target database.
type Datasource struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Engine    string `json:"engine"`
	IsDefault bool   `json:"isDefault"`
}

// MessageRole distinguishes conversation turns.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// ConversationMessage is one turn appended after a successful query.
type ConversationMessage struct {
	ConversationID int64                  `json:"conversationId"`
	Role           MessageRole            `json:"role"`
	Content        string                 `json:"content"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"createdAt"`
}

// QueryAuditRecord is the per-orchestration document indexed for the query
// history trail.
type QueryAuditRecord struct {
	RequestID    string    `json:"requestId"`
	Question     string    `json:"question"`
	SQL          string    `json:"sql,omitempty"`
	DatasourceID int64     `json:"datasourceId,omitempty"`
	AIProviderID int64     `json:"aiProviderId,omitempty"`
	Outcome      string    `json:"outcome"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	Timestamp    time.Time `json:"timestamp"`
}
