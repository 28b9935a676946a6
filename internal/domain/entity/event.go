package entity

import (
	"time"
)

const (
	EventUnreadCount         = "unread_count"
	EventMessageNew          = "message.new"
	EventConversationChanged = "conversation.changed"
	EventPong                = "pong"
	EventError               = "error"
)

// RealtimeEvent is pushed to websocket subscribers of a topic.
type RealtimeEvent struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`

	// SkipRoutePrefix suppresses delivery to connections whose current
	// route starts with it.
	SkipRoutePrefix string `json:"-"`
}

func NewRealtimeEvent(eventType string, data interface{}) RealtimeEvent {
	return RealtimeEvent{Type: eventType, Data: data, Timestamp: time.Now()}
}

// UserTopic is the topic carrying events addressed to one user.
func UserTopic(userID string) string {
	return "user:" + userID
}

type UnreadCountPayload struct {
	Count int64 `json:"count"`
}

type MessageToastPayload struct {
	MessageID string          `json:"message_id"`
	ProductID string          `json:"product_id"`
	SenderID  string          `json:"sender_id"`
	Sender    *ProfileSummary `json:"sender,omitempty"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
}

type ConversationChangedPayload struct {
	ProductID     string `json:"product_id"`
	CounterpartID string `json:"counterpart_id"`
	Reason        string `json:"reason"`
}
