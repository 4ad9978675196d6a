package models

import "time"

// AnalyticsSummary aggregates usage for a time period. Derived from the
// conversation/message tables, not a separate event log.
type AnalyticsSummary struct {
	Period               string    `json:"period"` // "today", "yesterday", "last_7_days", "last_30_days"
	ConversationsStarted int       `json:"conversations_started"`
	ActiveConversations  int       `json:"active_conversations"`
	EscalatedCount       int       `json:"escalated_count"`
	ResolvedCount        int       `json:"resolved_count"`
	TotalMessages        int       `json:"total_messages"`
	InboundMessages      int       `json:"inbound_messages"`
	AdminMessages        int       `json:"admin_messages"`
	AIMessages           int       `json:"ai_messages"`
	AITokensUsed         int       `json:"ai_tokens_used"`
	ActiveContacts       int       `json:"active_contacts"` // distinct contacts with inbound traffic
	ContactsSynced       int       `json:"contacts_synced"` // contacts touched by directory sync
	StartDate            time.Time `json:"start_date"`
	EndDate              time.Time `json:"end_date"`
}

// AnalyticsResponse represents the API response for analytics
// @Description Analytics response payload
type AnalyticsResponse struct {
	Success bool              `json:"success" example:"true"`
	Summary *AnalyticsSummary `json:"summary,omitempty"`
	Error   string            `json:"error,omitempty" example:""`
}
