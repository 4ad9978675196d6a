package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
// @Description Database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                   // Database connection status
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Database ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// ErrorResponse is the uniform failure envelope. Every handler converts
// errors into this shape; nothing propagates as an unhandled exception.
// @Description Error envelope
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"contact not found"`
}

// MessageResponse is the generic success envelope for mutations that
// return no entity.
// @Description Generic success envelope
type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty"`
}

// ContactListResponse wraps the contact directory listing.
// @Description Contact list response
type ContactListResponse struct {
	Success bool      `json:"success" example:"true"`
	Data    []Contact `json:"data"`
	Count   int       `json:"count" example:"42"`
}

// SyncResponse reports aggregate contact-sync counts. Partial progress is
// never rolled back, so the counts reflect what actually landed.
// @Description Contact sync result
type SyncResponse struct {
	Success    bool   `json:"success" example:"true"`
	Synced     int    `json:"synced" example:"120"`
	WithImages int    `json:"withImages" example:"37"`
	Total      int    `json:"total" example:"120"`
	Error      string `json:"error,omitempty"`
}

// ProfileResponse wraps a single CRM profile.
// @Description CRM profile response
type ProfileResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    *CRMProfile `json:"data,omitempty"`
}

// ConversationListResponse wraps the conversation listing.
// @Description Conversation list response
type ConversationListResponse struct {
	Success bool `json:"success" example:"true"`
	Data    struct {
		Conversations []Conversation `json:"conversations"`
	} `json:"data"`
}

// ConversationResponse wraps a single conversation.
// @Description Single conversation response
type ConversationResponse struct {
	Success bool          `json:"success" example:"true"`
	Data    *Conversation `json:"data,omitempty"`
}

// MessageListResponse wraps a page of messages.
// @Description Message list response
type MessageListResponse struct {
	Success bool      `json:"success" example:"true"`
	Data    []Message `json:"data"`
	Count   int       `json:"count" example:"17"`
}

// SentMessageResponse wraps a freshly appended message.
// @Description Sent message response
type SentMessageResponse struct {
	Success bool     `json:"success" example:"true"`
	Data    *Message `json:"data,omitempty"`
}

// AssignmentListResponse wraps the assistant assignment listing.
// @Description Assignment list response
type AssignmentListResponse struct {
	Success bool         `json:"success" example:"true"`
	Data    []Assignment `json:"data"`
}

// AssignmentResponse wraps a single assignment.
// @Description Single assignment response
type AssignmentResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    *Assignment `json:"data,omitempty"`
}

// AssistantListResponse wraps the hosted assistant catalog.
// @Description Assistant catalog response
type AssistantListResponse struct {
	Success    bool            `json:"success" example:"true"`
	Assistants []AssistantInfo `json:"assistants"`
}

// GatewayProxyResponse wraps single-contact gateway lookups.
// @Description Gateway proxy response
type GatewayProxyResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
}

// AdminAuthRequest is the admin login payload.
// @Description Admin login request
type AdminAuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AdminAuthResponse carries the issued session token.
// @Description Admin login response
type AdminAuthResponse struct {
	Success bool   `json:"success" example:"true"`
	Token   string `json:"token,omitempty"`
	Error   string `json:"error,omitempty"`
}
