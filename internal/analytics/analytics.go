package analytics

import (
	"context"
	"fmt"
	"time"

	"waconsole/internal/models"

	"github.com/jmoiron/sqlx"
)

// Period constants for analytics queries
const (
	PeriodToday      = "today"
	PeriodYesterday  = "yesterday"
	PeriodLast7Days  = "last_7_days"
	PeriodLast30Days = "last_30_days"
)

// Service derives usage summaries from the conversation, message and
// contact tables. No separate event log is kept; the data model already
// carries everything the dashboard needs.
type Service struct {
	db *sqlx.DB
}

// NewService creates a new analytics service
func NewService(db *sqlx.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required for analytics service")
	}
	return &Service{db: db}, nil
}

// periodRange resolves a period name to [start, end) in UTC.
func periodRange(period string, now time.Time) (time.Time, time.Time, error) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch period {
	case PeriodToday:
		return today, today.AddDate(0, 0, 1), nil
	case PeriodYesterday:
		return today.AddDate(0, 0, -1), today, nil
	case PeriodLast7Days:
		return today.AddDate(0, 0, -7), today.AddDate(0, 0, 1), nil
	case PeriodLast30Days:
		return today.AddDate(0, 0, -30), today.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q", period)
	}
}

// GetSummary aggregates usage for one period.
func (s *Service) GetSummary(ctx context.Context, period string) (*models.AnalyticsSummary, error) {
	start, end, err := periodRange(period, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	summary := &models.AnalyticsSummary{
		Period:    period,
		StartDate: start,
		EndDate:   end,
	}

	convQuery := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2) AS started,
			COUNT(*) FILTER (WHERE status = 'active') AS active,
			COUNT(*) FILTER (WHERE status = 'escalated') AS escalated,
			COUNT(*) FILTER (WHERE status = 'resolved') AS resolved
		FROM conversations
	`
	var conv struct {
		Started   int `db:"started"`
		Active    int `db:"active"`
		Escalated int `db:"escalated"`
		Resolved  int `db:"resolved"`
	}
	if err := s.db.GetContext(ctx, &conv, convQuery, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate conversations: %w", err)
	}
	summary.ConversationsStarted = conv.Started
	summary.ActiveConversations = conv.Active
	summary.EscalatedCount = conv.Escalated
	summary.ResolvedCount = conv.Resolved

	msgQuery := `
		SELECT
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE sender_type = 'user') AS inbound,
			COUNT(*) FILTER (WHERE sender_type = 'admin') AS admin,
			COUNT(*) FILTER (WHERE sender_type = 'ai') AS ai,
			COALESCE(SUM(tokens_used), 0) AS tokens
		FROM messages
		WHERE created_at >= $1 AND created_at < $2
	`
	var msg struct {
		Total   int `db:"total"`
		Inbound int `db:"inbound"`
		Admin   int `db:"admin"`
		AI      int `db:"ai"`
		Tokens  int `db:"tokens"`
	}
	if err := s.db.GetContext(ctx, &msg, msgQuery, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate messages: %w", err)
	}
	summary.TotalMessages = msg.Total
	summary.InboundMessages = msg.Inbound
	summary.AdminMessages = msg.Admin
	summary.AIMessages = msg.AI
	summary.AITokensUsed = msg.Tokens

	contactQuery := `
		SELECT
			(SELECT COUNT(DISTINCT c.contact_id)
				FROM messages m
				JOIN conversations c ON c.id = m.conversation_id
				WHERE m.sender_type = 'user' AND m.created_at >= $1 AND m.created_at < $2) AS active_contacts,
			(SELECT COUNT(*) FROM contacts WHERE synced_at >= $1 AND synced_at < $2) AS contacts_synced
	`
	var contacts struct {
		ActiveContacts int `db:"active_contacts"`
		ContactsSynced int `db:"contacts_synced"`
	}
	if err := s.db.GetContext(ctx, &contacts, contactQuery, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate contacts: %w", err)
	}
	summary.ActiveContacts = contacts.ActiveContacts
	summary.ContactsSynced = contacts.ContactsSynced

	return summary, nil
}
