// internal/notify/schema.go
package notify

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"nlquery-gateway/internal/models"
)

// webhookSchema is the contract external webhook consumers rely on. Outbound
// payloads are validated before delivery so a malformed event never reaches a
// subscriber.
var webhookSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"id":           map[string]interface{}{"type": "string", "minLength": 1},
		"event":        map[string]interface{}{"type": "string", "enum": []string{"query.completed", "query.failed"}},
		"question":     map[string]interface{}{"type": "string", "minLength": 1},
		"datasourceId": map[string]interface{}{"type": "integer", "minimum": 0},
		"errorCode":    map[string]interface{}{"type": "string"},
		"rowCount":     map[string]interface{}{"type": "integer", "minimum": 0},
		"timestamp":    map[string]interface{}{"type": "string"},
	},
	"required": []string{"id", "event", "question", "timestamp"},
}

func validatePayload(n *models.QueryNotification) error {
	schemaLoader := gojsonschema.NewGoLoader(webhookSchema)
	documentLoader := gojsonschema.NewGoLoader(n)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("payload validation failed: %v", errs)
	}

	return nil
}
