package models

import (
	"encoding/json"
	"time"
)

// Conversation statuses
const (
	StatusActive    = "active"
	StatusResolved  = "resolved"
	StatusEscalated = "escalated"
)

// Message sender types
const (
	SenderUser  = "user"
	SenderAI    = "ai"
	SenderAdmin = "admin"
)

// Message delivery statuses as reported by the gateway
const (
	DeliveryPending   = "pending"
	DeliverySent      = "sent"
	DeliveryDelivered = "delivered"
	DeliveryRead      = "read"
	DeliveryFailed    = "failed"
)

// Conversation is one admin/AI-to-contact thread. At most one active
// conversation exists per contact, enforced by a partial unique index.
// @Description Conversation thread with unread tracking and AI assignment
type Conversation struct {
	ID            string     `json:"id" db:"id"`
	ContactID     int        `json:"contact_id" db:"contact_id"`
	Title         string     `json:"title" db:"title"`
	Description   *string    `json:"description" db:"description"`
	Status        string     `json:"status" db:"status" example:"active"`
	TotalMessages int        `json:"total_messages" db:"total_messages"`
	UnreadCount   int        `json:"unread_count" db:"unread_count"`
	LastSeq       int64      `json:"last_seq" db:"last_seq"`
	LastMessageAt *time.Time `json:"last_message_at" db:"last_message_at"`
	AIEnabled     bool       `json:"ai_enabled" db:"ai_enabled"`

	// Denormalized assistant snapshot plus assignment overrides. The
	// snapshot is a cache: it is rewritten on every (re)assignment and is
	// not guaranteed fresh relative to the assistant's live config.
	AssistantID         *string          `json:"assistant_id" db:"assistant_id"`
	AssistantName       *string          `json:"assistant_name" db:"assistant_name"`
	AssistantConfig     *json.RawMessage `json:"assistant_config" db:"assistant_config" swaggertype:"object"`
	AssistantAssignedAt *time.Time       `json:"assistant_assigned_at" db:"assistant_assigned_at"`
	Priority            *int             `json:"priority" db:"priority"`
	AutoEnable          *bool            `json:"auto_enable" db:"auto_enable"`
	Schedule            *json.RawMessage `json:"schedule" db:"schedule" swaggertype:"object"`
	NotifyOnHandoff     *bool            `json:"notify_on_handoff" db:"notify_on_handoff"`
	CustomBehavior      *json.RawMessage `json:"custom_behavior" db:"custom_behavior" swaggertype:"object"`
	AssignmentNotes     *string          `json:"assignment_notes" db:"assignment_notes"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// Joined from contacts for list views
	ContactPhone *string `json:"contact_phone,omitempty" db:"contact_phone"`
	ContactName  *string `json:"contact_name,omitempty" db:"contact_name"`
}

// Message is one append-only timeline entry in a conversation. Only the
// delivery status mutates after insert, driven by gateway callbacks.
// @Description Single message in a conversation timeline
type Message struct {
	ID                string    `json:"id" db:"id"`
	ConversationID    string    `json:"conversation_id" db:"conversation_id"`
	Seq               int64     `json:"seq" db:"seq"`
	Content           string    `json:"content" db:"content"`
	SenderType        string    `json:"sender_type" db:"sender_type" example:"admin"`
	ProviderMessageID *string   `json:"provider_message_id" db:"provider_message_id"`
	DeliveryStatus    string    `json:"delivery_status" db:"delivery_status" example:"pending"`
	AIThreadID        *string   `json:"ai_thread_id" db:"ai_thread_id"`
	TokensUsed        *int      `json:"tokens_used" db:"tokens_used"`
	LatencyMs         *int      `json:"latency_ms" db:"latency_ms"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}

// IsInbound reports whether the message came from the contact. Only
// inbound messages bump a conversation's unread counter.
func (m *Message) IsInbound() bool {
	return m.SenderType == SenderUser
}

// AppendMessageInput carries everything needed to append one message.
type AppendMessageInput struct {
	Content           string  `json:"content"`
	SenderType        string  `json:"sender_type"`
	ProviderMessageID *string `json:"provider_message_id,omitempty"`
	AIThreadID        *string `json:"ai_thread_id,omitempty"`
	TokensUsed        *int    `json:"tokens_used,omitempty"`
	LatencyMs         *int    `json:"latency_ms,omitempty"`
}

// StartConversationRequest creates or reuses a conversation for a contact.
type StartConversationRequest struct {
	Phone string `json:"phone"`
	Name  string `json:"name,omitempty"`
}

// SendMessageRequest is the admin send payload.
type SendMessageRequest struct {
	Content string `json:"content"`
}

// UpdateStatusRequest transitions a conversation's status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
