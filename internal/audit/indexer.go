// internal/audit/indexer.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"nlquery-gateway/internal/common/logger"
	"nlquery-gateway/internal/models"
)

// Indexer writes one audit document per orchestration to Elasticsearch. The
// audit trail is best-effort: callers log indexing failures and move on.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if index == "" {
		index = "query-audit"
	}
	return &Indexer{
		client: client,
		index:  index,
		logger: log.With(map[string]interface{}{"component": "audit_indexer"}),
	}
}

// Index stores one audit record, keyed by its request id.
func (i *Indexer) Index(ctx context.Context, record *models.QueryAuditRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: record.RequestID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to index audit record: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("audit indexing failed: %s", res.String())
	}

	i.logger.Debug("audit record indexed", map[string]interface{}{
		"requestId": record.RequestID,
		"outcome":   record.Outcome,
	})
	return nil
}
