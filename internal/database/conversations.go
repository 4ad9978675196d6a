package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"waconsole/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ConversationService handles conversation threads and message timelines
type ConversationService struct {
	db       *sqlx.DB
	contacts *ContactService
}

// NewConversationService creates a new conversation service
func NewConversationService(db *sqlx.DB, contacts *ContactService) (*ConversationService, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required for conversation service")
	}
	if contacts == nil {
		return nil, fmt.Errorf("contact service is required for conversation service")
	}

	service := &ConversationService{db: db, contacts: contacts}

	if err := service.CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create conversation tables: %w", err)
	}

	return service, nil
}

// CreateTables creates the conversation and message tables. The partial
// unique index enforces at most one active conversation per contact at
// the storage layer, not just by application-level convention.
func (s *ConversationService) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY,
			contact_id INTEGER NOT NULL REFERENCES contacts(id) ON DELETE CASCADE,
			title TEXT NOT NULL DEFAULT '',
			description TEXT,
			status TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'resolved', 'escalated')),
			total_messages INTEGER NOT NULL DEFAULT 0,
			unread_count INTEGER NOT NULL DEFAULT 0 CHECK (unread_count >= 0),
			last_seq BIGINT NOT NULL DEFAULT 0,
			last_message_at TIMESTAMPTZ,
			ai_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			assistant_id TEXT,
			assistant_name TEXT,
			assistant_config JSONB,
			assistant_assigned_at TIMESTAMPTZ,
			priority INTEGER,
			auto_enable BOOLEAN,
			schedule JSONB,
			notify_on_handoff BOOLEAN,
			custom_behavior JSONB,
			assignment_notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_conversations_one_active
			ON conversations(contact_id) WHERE status = 'active'`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_last_message_at
			ON conversations(last_message_at DESC)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
			seq BIGINT NOT NULL,
			content TEXT NOT NULL,
			sender_type TEXT NOT NULL CHECK (sender_type IN ('user', 'ai', 'admin')),
			provider_message_id TEXT,
			delivery_status TEXT NOT NULL DEFAULT 'pending',
			ai_thread_id TEXT,
			tokens_used INTEGER,
			latency_ms INTEGER,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (conversation_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_conversation_seq
			ON messages(conversation_id, seq)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_provider_id
			ON messages(provider_message_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to run conversation schema statement: %w", err)
		}
	}

	return nil
}

const conversationColumns = `
	c.id, c.contact_id, c.title, c.description, c.status,
	c.total_messages, c.unread_count, c.last_seq, c.last_message_at,
	c.ai_enabled, c.assistant_id, c.assistant_name, c.assistant_config,
	c.assistant_assigned_at, c.priority, c.auto_enable, c.schedule,
	c.notify_on_handoff, c.custom_behavior, c.assignment_notes,
	c.created_at, c.updated_at,
	ct.phone_number AS contact_phone, ct.display_name AS contact_name`

// GetOrCreate returns the active conversation for a contact, creating
// the contact (plus default CRM profile) and the conversation as needed.
// The partial unique index turns the historical lookup-then-create race
// into an ON CONFLICT re-read.
func (s *ConversationService) GetOrCreate(ctx context.Context, rawPhone, name string) (*models.Conversation, bool, error) {
	contact, err := s.contacts.GetByPhone(ctx, rawPhone)
	if errors.Is(err, ErrNotFound) {
		contact, err = s.contacts.UpsertContact(ctx, ContactUpsert{
			PhoneNumber: rawPhone,
			DisplayName: name,
		})
	}
	if err != nil {
		return nil, false, err
	}

	if conv, err := s.findActive(ctx, contact.ID); err == nil {
		return conv, false, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	title := name
	if title == "" {
		title = contact.BestName()
	}

	insert := `
		INSERT INTO conversations (id, contact_id, title, status)
		VALUES ($1, $2, $3, 'active')
		ON CONFLICT (contact_id) WHERE status = 'active' DO NOTHING
	`
	res, err := s.db.ExecContext(ctx, insert, uuid.New().String(), contact.ID, title)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}

	created := false
	if n, _ := res.RowsAffected(); n > 0 {
		created = true

		// New thread counts toward the profile's aggregate
		bump := `
			UPDATE crm_profiles
			SET total_conversations = total_conversations + 1, updated_at = CURRENT_TIMESTAMP
			WHERE contact_id = $1
		`
		if _, err := s.db.ExecContext(ctx, bump, contact.ID); err != nil {
			return nil, false, fmt.Errorf("failed to bump conversation counter: %w", err)
		}
	}

	conv, err := s.findActive(ctx, contact.ID)
	if err != nil {
		return nil, false, err
	}

	return conv, created, nil
}

func (s *ConversationService) findActive(ctx context.Context, contactID int) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations c
		JOIN contacts ct ON ct.id = c.contact_id
		WHERE c.contact_id = $1 AND c.status = 'active'
	`

	var conv models.Conversation
	err := s.db.GetContext(ctx, &conv, query, contactID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("active conversation for contact %d: %w", contactID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active conversation: %w", err)
	}

	return &conv, nil
}

// GetByID returns one conversation with its contact joined in.
func (s *ConversationService) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations c
		JOIN contacts ct ON ct.id = c.contact_id
		WHERE c.id = $1
	`

	var conv models.Conversation
	err := s.db.GetContext(ctx, &conv, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}

	return &conv, nil
}

// List returns conversations ordered by recent activity.
func (s *ConversationService) List(ctx context.Context, limit, offset int) ([]models.Conversation, error) {
	query := `
		SELECT ` + conversationColumns + `
		FROM conversations c
		JOIN contacts ct ON ct.id = c.contact_id
		ORDER BY c.last_message_at DESC NULLS LAST, c.created_at DESC
		LIMIT $1 OFFSET $2
	`

	var conversations []models.Conversation
	if err := s.db.SelectContext(ctx, &conversations, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	if conversations == nil {
		conversations = []models.Conversation{}
	}

	return conversations, nil
}

// MarkRead zeroes the unread counter. Idempotent: marking an already-read
// conversation is a no-op, not an error.
func (s *ConversationService) MarkRead(ctx context.Context, id string) error {
	query := `
		UPDATE conversations
		SET unread_count = 0, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark conversation read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}

	return nil
}

// UpdateStatus transitions a conversation between active, resolved and
// escalated. Transitions are admin-driven; no automatic retries.
func (s *ConversationService) UpdateStatus(ctx context.Context, id, status string) (*models.Conversation, error) {
	switch status {
	case models.StatusActive, models.StatusResolved, models.StatusEscalated:
	default:
		return nil, fmt.Errorf("invalid status %q", status)
	}

	query := `
		UPDATE conversations
		SET status = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query, id, status)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, fmt.Errorf("contact already has an active conversation")
		}
		return nil, fmt.Errorf("failed to update status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}

	return s.GetByID(ctx, id)
}

// Delete removes a conversation; its messages cascade.
func (s *ConversationService) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}

	return nil
}

// AppendMessage appends one timeline entry. Counter updates and the
// per-conversation sequence allocation happen atomically in one
// transaction: total_messages always moves, unread_count only for
// inbound messages, and the allocated seq orders the timeline without
// trusting wall clocks.
func (s *ConversationService) AppendMessage(ctx context.Context, conversationID string, in models.AppendMessageInput) (*models.Message, error) {
	switch in.SenderType {
	case models.SenderUser, models.SenderAI, models.SenderAdmin:
	default:
		return nil, fmt.Errorf("invalid sender type %q", in.SenderType)
	}
	if in.Content == "" {
		return nil, fmt.Errorf("message content is empty")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bump := `
		UPDATE conversations SET
			total_messages = total_messages + 1,
			unread_count = unread_count + CASE WHEN $2 THEN 1 ELSE 0 END,
			last_seq = last_seq + 1,
			last_message_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING last_seq
	`

	inbound := in.SenderType == models.SenderUser

	var seq int64
	err = tx.GetContext(ctx, &seq, bump, conversationID, inbound)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to bump conversation counters: %w", err)
	}

	insert := `
		INSERT INTO messages (
			id, conversation_id, seq, content, sender_type,
			provider_message_id, delivery_status, ai_thread_id,
			tokens_used, latency_ms, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, CURRENT_TIMESTAMP)
		RETURNING *
	`

	status := models.DeliveryPending
	if inbound {
		// Inbound messages already arrived; there is nothing to deliver
		status = models.DeliveryDelivered
	}

	var msg models.Message
	err = tx.GetContext(ctx, &msg, insert,
		uuid.New().String(), conversationID, seq, in.Content, in.SenderType,
		in.ProviderMessageID, status, in.AIThreadID, in.TokensUsed, in.LatencyMs)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	profileBump := `
		UPDATE crm_profiles
		SET total_messages = total_messages + 1, updated_at = CURRENT_TIMESTAMP
		WHERE contact_id = (SELECT contact_id FROM conversations WHERE id = $1)
	`
	if _, err := tx.ExecContext(ctx, profileBump, conversationID); err != nil {
		return nil, fmt.Errorf("failed to bump profile message counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit message append: %w", err)
	}

	return &msg, nil
}

// ListMessages returns one page of a conversation's timeline ordered by
// sequence number. Order is "asc" (oldest first) or "desc" (latest N).
// Offset pagination can skip or duplicate rows at page boundaries under
// concurrent inserts; acceptable for an admin console.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID string, limit, offset int, order string) ([]models.Message, int, error) {
	if _, err := s.GetByID(ctx, conversationID); err != nil {
		return nil, 0, err
	}

	dir := "ASC"
	if order == "desc" {
		dir = "DESC"
	}

	var count int
	if err := s.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID); err != nil {
		return nil, 0, fmt.Errorf("failed to count messages: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT * FROM messages
		WHERE conversation_id = $1
		ORDER BY seq %s
		LIMIT $2 OFFSET $3
	`, dir)

	var messages []models.Message
	if err := s.db.SelectContext(ctx, &messages, query, conversationID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list messages: %w", err)
	}

	if messages == nil {
		messages = []models.Message{}
	}

	return messages, count, nil
}

// UpdateDeliveryStatus applies a gateway status callback to the message
// carrying the given provider id. The only mutation messages ever see.
func (s *ConversationService) UpdateDeliveryStatus(ctx context.Context, providerMessageID, status string) (*models.Message, error) {
	query := `
		UPDATE messages
		SET delivery_status = $2
		WHERE provider_message_id = $1
		RETURNING *
	`

	var msg models.Message
	err := s.db.GetContext(ctx, &msg, query, providerMessageID, status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("message with provider id %s: %w", providerMessageID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	return &msg, nil
}
