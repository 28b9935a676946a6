package entity

import (
	"time"
)

// Conversation is the thread between the current user and one counterpart
// about one listing. It is derived from message rows and never stored.
type Conversation struct {
	Key           string          `json:"key"`
	ProductID     string          `json:"product_id"`
	CounterpartID string          `json:"counterpart_id"`
	Counterpart   *ProfileSummary `json:"counterpart,omitempty"`
	Product       *ProductSummary `json:"product,omitempty"`
	Messages      []*Message      `json:"messages"`
	LastMessage   string          `json:"last_message"`
	LastMessageAt time.Time       `json:"last_message_at"`
	UnreadCount   int             `json:"unread_count"`
	IsStub        bool            `json:"is_stub"`
}

// ConversationKey identifies a conversation relative to the current user.
func ConversationKey(productID, counterpartID string) string {
	return productID + "|" + counterpartID
}
