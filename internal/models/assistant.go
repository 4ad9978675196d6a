package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AssistantInfo is the denormalized view of an externally hosted AI
// assistant configuration. The platform owns the runtime behavior; we
// cache name/model/instructions for display and snapshotting.
// @Description Hosted assistant configuration summary
type AssistantInfo struct {
	ID           string    `json:"id" example:"asst_abc123"`
	Name         string    `json:"name" example:"Order helper"`
	Model        string    `json:"model" example:"gpt-4o"`
	Description  string    `json:"description,omitempty"`
	Instructions string    `json:"instructions,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot serializes the assistant config for storage on the
// conversation row. Re-assignment overwrites the previous snapshot in
// full; nothing is merged.
func (a *AssistantInfo) Snapshot() (json.RawMessage, error) {
	raw, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot assistant config: %w", err)
	}
	return raw, nil
}

// ScheduleWindow bounds when an assigned assistant may answer on its own.
type ScheduleWindow struct {
	Start    string `json:"start" example:"09:00"` // HH:MM, 24h
	End      string `json:"end" example:"18:00"`
	Timezone string `json:"timezone,omitempty" example:"Europe/Amsterdam"`
	Days     []int  `json:"days,omitempty"` // 0=Sunday..6=Saturday, empty means every day
}

// Validate checks the window's time bounds.
func (s *ScheduleWindow) Validate() error {
	for _, v := range []string{s.Start, s.End} {
		var h, m int
		if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil || h < 0 || h > 23 || m < 0 || m > 59 {
			return fmt.Errorf("invalid schedule time %q, expected HH:MM", v)
		}
	}
	for _, d := range s.Days {
		if d < 0 || d > 6 {
			return fmt.Errorf("invalid schedule day %d", d)
		}
	}
	return nil
}

// CustomBehavior is the validated override block stored on an assignment.
type CustomBehavior struct {
	Greeting          string   `json:"greeting,omitempty"`
	Tone              string   `json:"tone,omitempty" example:"friendly"`
	HandoffConditions []string `json:"handoff_conditions,omitempty"`
	BlockedTopics     []string `json:"blocked_topics,omitempty"`
}

// AssignmentRequest assigns an assistant to a conversation with overrides.
type AssignmentRequest struct {
	ConversationID  string          `json:"conversation_id"`
	AssistantID     string          `json:"assistant_id"`
	Priority        *int            `json:"priority,omitempty"`
	AutoEnable      *bool           `json:"auto_enable,omitempty"`
	Schedule        *ScheduleWindow `json:"schedule,omitempty"`
	NotifyOnHandoff *bool           `json:"notify_on_handoff,omitempty"`
	CustomBehavior  *CustomBehavior `json:"custom_behavior,omitempty"`
	Notes           *string         `json:"notes,omitempty"`
}

// Validate rejects structurally invalid assignment requests before any
// network or database call.
func (r *AssignmentRequest) Validate() error {
	if r.ConversationID == "" {
		return fmt.Errorf("conversation_id is required")
	}
	if r.AssistantID == "" {
		return fmt.Errorf("assistant_id is required")
	}
	if r.Priority != nil && (*r.Priority < 0 || *r.Priority > 10) {
		return fmt.Errorf("priority must be between 0 and 10")
	}
	if r.Schedule != nil {
		if err := r.Schedule.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Assignment is the list view of one conversation-to-assistant link.
// @Description Assistant assignment with contact and override metadata
type Assignment struct {
	ConversationID  string           `json:"conversation_id" db:"conversation_id"`
	ContactPhone    string           `json:"contact_phone" db:"contact_phone"`
	ContactName     *string          `json:"contact_name" db:"contact_name"`
	AssistantID     string           `json:"assistant_id" db:"assistant_id"`
	AssistantName   *string          `json:"assistant_name" db:"assistant_name"`
	AssistantConfig *json.RawMessage `json:"assistant_config" db:"assistant_config" swaggertype:"object"`
	AssignedAt      *time.Time       `json:"assigned_at" db:"assigned_at"`
	Priority        *int             `json:"priority" db:"priority"`
	AutoEnable      *bool            `json:"auto_enable" db:"auto_enable"`
	Schedule        *json.RawMessage `json:"schedule" db:"schedule" swaggertype:"object"`
	NotifyOnHandoff *bool            `json:"notify_on_handoff" db:"notify_on_handoff"`
	CustomBehavior  *json.RawMessage `json:"custom_behavior" db:"custom_behavior" swaggertype:"object"`
	Notes           *string          `json:"notes" db:"notes"`
	AIEnabled       bool             `json:"ai_enabled" db:"ai_enabled"`
}
