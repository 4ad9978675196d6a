// Package realtime pushes data-change events to connected admin sessions
// over SSE, optionally fanned out across instances via Redis pub/sub.
package realtime

import "fmt"

// EventType identifies what changed.
type EventType string

const (
	EventMessageCreated      EventType = "message.created"
	EventMessageUpdated      EventType = "message.updated"
	EventConversationCreated EventType = "conversation.created"
	EventConversationUpdated EventType = "conversation.updated"
)

// ChannelConversations is the global channel keeping conversation-list
// views (last-message timestamps, unread badges) fresh.
const ChannelConversations = "conversations"

// ConversationChannel scopes message events to one open conversation.
func ConversationChannel(conversationID string) string {
	return fmt.Sprintf("conversation:%s", conversationID)
}

// Event is one realtime notification. Delivery is at-least-once; message
// events carry the server-assigned per-conversation sequence number so
// clients can dedup and reorder without trusting wall clocks.
type Event struct {
	Channel string      `json:"channel"`
	Type    EventType   `json:"type"`
	Seq     int64       `json:"seq,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Publisher is what the write path calls after a successful mutation.
type Publisher interface {
	Publish(event Event)
}
