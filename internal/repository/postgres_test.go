// internal/repository/postgres_test.go
package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlquery-gateway/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// ==========================
// Provider Repository Tests
// ==========================

func TestProviderRepo_List(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, model, is_default\s+FROM ai_providers`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "model", "is_default"}).
			AddRow(1, "openai", "gpt-4o", true).
			AddRow(2, "anthropic", "claude", false))

	repo := NewProviderRepo(db)
	providers, err := repo.List(context.Background())

	assert.NoError(t, err)
	require.Len(t, providers, 2)
	assert.Equal(t, models.AIProvider{ID: 1, Name: "openai", Model: "gpt-4o", IsDefault: true}, providers[0])
	assert.Equal(t, models.AIProvider{ID: 2, Name: "anthropic", Model: "claude", IsDefault: false}, providers[1])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProviderRepo_List_Empty(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, model, is_default\s+FROM ai_providers`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "model", "is_default"}))

	repo := NewProviderRepo(db)
	providers, err := repo.List(context.Background())

	assert.NoError(t, err)
	assert.Empty(t, providers)
}

func TestProviderRepo_List_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, model, is_default\s+FROM ai_providers`).
		WillReturnError(errors.New("pq: relation \"ai_providers\" does not exist"))

	repo := NewProviderRepo(db)
	_, err := repo.List(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list ai providers")
}

// ==========================
// Datasource Repository Tests
// ==========================

func TestDatasourceRepo_List(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, engine, is_default\s+FROM datasources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "engine", "is_default"}).
			AddRow(10, "warehouse", "postgres", true))

	repo := NewDatasourceRepo(db)
	datasources, err := repo.List(context.Background())

	assert.NoError(t, err)
	require.Len(t, datasources, 1)
	assert.Equal(t, "warehouse", datasources[0].Name)
	assert.True(t, datasources[0].IsDefault)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasourceRepo_List_ScanError(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`SELECT id, name, engine, is_default\s+FROM datasources`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "engine", "is_default"}).
			AddRow("not-an-int", "warehouse", "postgres", true))

	repo := NewDatasourceRepo(db)
	_, err := repo.List(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to scan datasource")
}

// ==========================
// Conversation Repository Tests
// ==========================

func TestConversationRepo_Create(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO conversations`).
		WithArgs("exploring users").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	repo := NewConversationRepo(db)
	id, err := repo.Create(context.Background(), "exploring users")

	assert.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepo_Create_Error(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery(`INSERT INTO conversations`).
		WillReturnError(errors.New("pq: connection refused"))

	repo := NewConversationRepo(db)
	_, err := repo.Create(context.Background(), "t")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create conversation")
}

func TestConversationRepo_AppendMessage(t *testing.T) {
	db, mock := setupMockDB(t)

	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO conversation_messages`).
		WithArgs(int64(42), "assistant", "3 rows found", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewConversationRepo(db)
	err := repo.AppendMessage(context.Background(), models.ConversationMessage{
		ConversationID: 42,
		Role:           models.RoleAssistant,
		Content:        "3 rows found",
		Metadata:       map[string]interface{}{"sql": "SELECT 1"},
		CreatedAt:      now,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConversationRepo_AppendMessage_NilMetadata(t *testing.T) {
	db, mock := setupMockDB(t)

	now := time.Now().UTC()
	mock.ExpectExec(`INSERT INTO conversation_messages`).
		WithArgs(int64(42), "user", "how many users?", sqlmock.AnyArg(), now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewConversationRepo(db)
	err := repo.AppendMessage(context.Background(), models.ConversationMessage{
		ConversationID: 42,
		Role:           models.RoleUser,
		Content:        "how many users?",
		CreatedAt:      now,
	})

	assert.NoError(t, err)
}
