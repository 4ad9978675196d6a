package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"waconsole/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockAssignmentService(t *testing.T) (*AssignmentService, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db := sqlx.NewDb(mockDB, "sqlmock")
	return &AssignmentService{db: db}, mock, func() { mockDB.Close() }
}

func assignmentColumnNames() []string {
	return []string{
		"conversation_id", "contact_phone", "contact_name",
		"assistant_id", "assistant_name", "assistant_config", "assigned_at",
		"priority", "auto_enable", "schedule", "notify_on_handoff",
		"custom_behavior", "notes", "ai_enabled",
	}
}

func assignmentRow(conversationID, assistantID string) *sqlmock.Rows {
	snapshot, _ := json.Marshal(models.AssistantInfo{ID: assistantID, Name: "Order helper"})
	return sqlmock.NewRows(assignmentColumnNames()).
		AddRow(conversationID, "+31612345678", "Maria",
			assistantID, "Order helper", snapshot, time.Now(),
			5, true, nil, nil, nil, nil, true)
}

func TestAssign_SnapshotsAndEnables(t *testing.T) {
	service, mock, cleanup := newMockAssignmentService(t)
	defer cleanup()

	mock.ExpectExec("UPDATE conversations SET").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("WHERE c.id = \\$1 AND c.assistant_id IS NOT NULL").
		WithArgs(testConvID).
		WillReturnRows(assignmentRow(testConvID, "asst_abc123"))

	priority := 5
	assignment, err := service.Assign(context.Background(), models.AssignmentRequest{
		ConversationID: testConvID,
		AssistantID:    "asst_abc123",
		Priority:       &priority,
	}, &models.AssistantInfo{ID: "asst_abc123", Name: "Order helper", Model: "gpt-4o"})
	require.NoError(t, err)

	assert.Equal(t, "asst_abc123", assignment.AssistantID)
	assert.True(t, assignment.AIEnabled)
	require.NotNil(t, assignment.AssistantConfig)

	var snapshot models.AssistantInfo
	require.NoError(t, json.Unmarshal(*assignment.AssistantConfig, &snapshot))
	assert.Equal(t, "asst_abc123", snapshot.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAssign_UnknownConversation(t *testing.T) {
	service, mock, cleanup := newMockAssignmentService(t)
	defer cleanup()

	mock.ExpectExec("UPDATE conversations SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := service.Assign(context.Background(), models.AssignmentRequest{
		ConversationID: testConvID,
		AssistantID:    "asst_abc123",
	}, &models.AssistantInfo{ID: "asst_abc123"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassign_ClearsEverything(t *testing.T) {
	service, mock, cleanup := newMockAssignmentService(t)
	defer cleanup()

	mock.ExpectExec("assistant_id = NULL").
		WithArgs(testConvID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, service.Unassign(context.Background(), testConvID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnassign_UnknownConversation(t *testing.T) {
	service, mock, cleanup := newMockAssignmentService(t)
	defer cleanup()

	mock.ExpectExec("assistant_id = NULL").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := service.Unassign(context.Background(), testConvID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAssignments_Empty(t *testing.T) {
	service, mock, cleanup := newMockAssignmentService(t)
	defer cleanup()

	mock.ExpectQuery("WHERE c.assistant_id IS NOT NULL").
		WillReturnRows(sqlmock.NewRows(assignmentColumnNames()))

	assignments, err := service.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, assignments)
	assert.Empty(t, assignments)

	assert.NoError(t, mock.ExpectationsWereMet())
}
