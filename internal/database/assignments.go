package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"waconsole/internal/models"

	"github.com/jmoiron/sqlx"
)

// AssignmentService manages the link between conversations and hosted
// assistant configurations. The assistant itself lives on the platform;
// locally we keep a denormalized snapshot plus override fields.
type AssignmentService struct {
	db *sqlx.DB
}

// NewAssignmentService creates a new assignment service
func NewAssignmentService(db *sqlx.DB) (*AssignmentService, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required for assignment service")
	}
	return &AssignmentService{db: db}, nil
}

const assignmentColumns = `
	c.id AS conversation_id,
	ct.phone_number AS contact_phone,
	ct.display_name AS contact_name,
	c.assistant_id, c.assistant_name, c.assistant_config,
	c.assistant_assigned_at AS assigned_at,
	c.priority, c.auto_enable, c.schedule, c.notify_on_handoff,
	c.custom_behavior, c.assignment_notes AS notes, c.ai_enabled`

// List returns all conversations that currently have an assistant.
func (s *AssignmentService) List(ctx context.Context) ([]models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM conversations c
		JOIN contacts ct ON ct.id = c.contact_id
		WHERE c.assistant_id IS NOT NULL
		ORDER BY c.assistant_assigned_at DESC NULLS LAST
	`

	var assignments []models.Assignment
	if err := s.db.SelectContext(ctx, &assignments, query); err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	if assignments == nil {
		assignments = []models.Assignment{}
	}

	return assignments, nil
}

// Get returns the assignment for one conversation.
func (s *AssignmentService) Get(ctx context.Context, conversationID string) (*models.Assignment, error) {
	query := `
		SELECT ` + assignmentColumns + `
		FROM conversations c
		JOIN contacts ct ON ct.id = c.contact_id
		WHERE c.id = $1 AND c.assistant_id IS NOT NULL
	`

	var assignment models.Assignment
	err := s.db.GetContext(ctx, &assignment, query, conversationID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("assignment for conversation %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	return &assignment, nil
}

// Assign writes the assistant reference, a fresh denormalized snapshot
// and the override fields onto the conversation row. Re-assignment
// overwrites every snapshot and override field; nothing from a previous
// assistant's snapshot survives.
func (s *AssignmentService) Assign(ctx context.Context, req models.AssignmentRequest, assistant *models.AssistantInfo) (*models.Assignment, error) {
	snapshot, err := assistant.Snapshot()
	if err != nil {
		return nil, err
	}

	var schedule, behavior interface{}
	if req.Schedule != nil {
		raw, err := json.Marshal(req.Schedule)
		if err != nil {
			return nil, fmt.Errorf("failed to encode schedule: %w", err)
		}
		schedule = raw
	}
	if req.CustomBehavior != nil {
		raw, err := json.Marshal(req.CustomBehavior)
		if err != nil {
			return nil, fmt.Errorf("failed to encode custom behavior: %w", err)
		}
		behavior = raw
	}

	autoEnable := true
	if req.AutoEnable != nil {
		autoEnable = *req.AutoEnable
	}

	query := `
		UPDATE conversations SET
			assistant_id = $2,
			assistant_name = $3,
			assistant_config = $4,
			assistant_assigned_at = CURRENT_TIMESTAMP,
			priority = $5,
			auto_enable = $6,
			schedule = $7,
			notify_on_handoff = $8,
			custom_behavior = $9,
			assignment_notes = $10,
			ai_enabled = $11,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, req.ConversationID,
		assistant.ID, assistant.Name, []byte(snapshot),
		req.Priority, autoEnable, schedule, req.NotifyOnHandoff,
		behavior, req.Notes, autoEnable)
	if err != nil {
		return nil, fmt.Errorf("failed to assign assistant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("conversation %s: %w", req.ConversationID, ErrNotFound)
	}

	return s.Get(ctx, req.ConversationID)
}

// Unassign clears the assistant reference, its snapshot and all override
// fields, and reverts ai_enabled to false.
func (s *AssignmentService) Unassign(ctx context.Context, conversationID string) error {
	query := `
		UPDATE conversations SET
			assistant_id = NULL,
			assistant_name = NULL,
			assistant_config = NULL,
			assistant_assigned_at = NULL,
			priority = NULL,
			auto_enable = NULL,
			schedule = NULL,
			notify_on_handoff = NULL,
			custom_behavior = NULL,
			assignment_notes = NULL,
			ai_enabled = FALSE,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, conversationID)
	if err != nil {
		return fmt.Errorf("failed to unassign assistant: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}

	return nil
}
