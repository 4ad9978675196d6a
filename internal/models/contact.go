package models

import (
	"time"

	"github.com/lib/pq"
)

// Contact represents one external messaging identity synced from the
// WhatsApp gateway. The normalized phone number is the natural key.
// @Description WhatsApp contact with platform metadata
type Contact struct {
	ID          int        `json:"id" db:"id" example:"1"`
	PhoneNumber string     `json:"phone_number" db:"phone_number" example:"+31612345678"`
	JID         string     `json:"jid" db:"jid" example:"31612345678@s.whatsapp.net"`
	DisplayName *string    `json:"display_name" db:"display_name" example:"Maria Lopez"`
	PushName    *string    `json:"push_name" db:"push_name" example:"Maria"`
	AvatarURL   *string    `json:"avatar_url" db:"avatar_url"`
	IsVerified  bool       `json:"is_verified" db:"is_verified" example:"false"`
	IsBusiness  bool       `json:"is_business" db:"is_business" example:"false"`
	LastSeenAt  *time.Time `json:"last_seen_at" db:"last_seen_at"`
	IsActive    bool       `json:"is_active" db:"is_active" example:"true"`
	RawPayload  []byte     `json:"-" db:"raw_payload"` // provider payload as stored, not exposed over the API
	SyncedAt    *time.Time `json:"synced_at" db:"synced_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// BestName returns the most useful display name for a contact, falling
// back to the push name and finally the phone number.
func (c *Contact) BestName() string {
	if c.DisplayName != nil && *c.DisplayName != "" {
		return *c.DisplayName
	}
	if c.PushName != nil && *c.PushName != "" {
		return *c.PushName
	}
	return c.PhoneNumber
}

// CRMProfile holds the relationship data owned 1:1 by a Contact.
// It cannot outlive its contact (cascade delete).
// @Description CRM profile attached to a contact
type CRMProfile struct {
	ID                  int            `json:"id" db:"id"`
	ContactID           int            `json:"contact_id" db:"contact_id"`
	LifecycleStage      string         `json:"lifecycle_stage" db:"lifecycle_stage" example:"prospect"`
	EngagementScore     int            `json:"engagement_score" db:"engagement_score" example:"0"`
	PreferredStores     pq.StringArray `json:"preferred_stores" db:"preferred_stores" swaggertype:"array,string"`
	DietaryRestrictions pq.StringArray `json:"dietary_restrictions" db:"dietary_restrictions" swaggertype:"array,string"`
	ShoppingPersona     *string        `json:"shopping_persona" db:"shopping_persona"`
	Notes               *string        `json:"notes" db:"notes"`
	Tags                pq.StringArray `json:"tags" db:"tags" swaggertype:"array,string"`
	TotalMessages       int            `json:"total_messages" db:"total_messages"`
	TotalConversations  int            `json:"total_conversations" db:"total_conversations"`
	CreatedAt           time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time      `json:"updated_at" db:"updated_at"`
}

// Lifecycle stages for CRM profiles
const (
	StageProspect = "prospect"
	StageLead     = "lead"
	StageCustomer = "customer"
	StageChurned  = "churned"
)

// ProfileUpdate carries the admin-editable CRM profile fields.
type ProfileUpdate struct {
	LifecycleStage      *string  `json:"lifecycle_stage,omitempty"`
	EngagementScore     *int     `json:"engagement_score,omitempty"`
	PreferredStores     []string `json:"preferred_stores,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`
	ShoppingPersona     *string  `json:"shopping_persona,omitempty"`
	Notes               *string  `json:"notes,omitempty"`
}
