// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"nlquery-gateway/internal/models"
)

// ProviderRepo reads configured AI providers from the metadata database.
type ProviderRepo struct {
	db *sql.DB
}

func NewProviderRepo(db *sql.DB) *ProviderRepo {
	return &ProviderRepo{db: db}
}

func (r *ProviderRepo) List(ctx context.Context) ([]models.AIProvider, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, model, is_default
		FROM ai_providers
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list ai providers: %w", err)
	}
	defer rows.Close()

	var providers []models.AIProvider
	for rows.Next() {
		var p models.AIProvider
		if err := rows.Scan(&p.ID, &p.Name, &p.Model, &p.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan ai provider: %w", err)
		}
		providers = append(providers, p)
	}
	return providers, rows.Err()
}

// DatasourceRepo reads configured target databases from the metadata database.
type DatasourceRepo struct {
	db *sql.DB
}

func NewDatasourceRepo(db *sql.DB) *DatasourceRepo {
	return &DatasourceRepo{db: db}
}

func (r *DatasourceRepo) List(ctx context.Context) ([]models.Datasource, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, engine, is_default
		FROM datasources
		ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasources: %w", err)
	}
	defer rows.Close()

	var datasources []models.Datasource
	for rows.Next() {
		var d models.Datasource
		if err := rows.Scan(&d.ID, &d.Name, &d.Engine, &d.IsDefault); err != nil {
			return nil, fmt.Errorf("failed to scan datasource: %w", err)
		}
		datasources = append(datasources, d)
	}
	return datasources, rows.Err()
}

// ConversationRepo persists conversations and their turns.
type ConversationRepo struct {
	db *sql.DB
}

func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

func (r *ConversationRepo) Create(ctx context.Context, title string) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO conversations (title, created_at)
		VALUES ($1, NOW())
		RETURNING id`, title).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

func (r *ConversationRepo) AppendMessage(ctx context.Context, msg models.ConversationMessage) error {
	var metadata []byte
	if msg.Metadata != nil {
		var err error
		metadata, err = json.Marshal(msg.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal message metadata: %w", err)
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO conversation_messages (conversation_id, role, content, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		msg.ConversationID, string(msg.Role), msg.Content, metadata, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append conversation message: %w", err)
	}
	return nil
}
