package entity

import (
	"strings"
	"time"
)

// ImageContentPrefix marks a message whose content is an uploaded image URL.
const ImageContentPrefix = "[image]"

// ImagePlaceholder replaces image URLs in previews and notifications.
const ImagePlaceholder = "📷 Photo"

type Message struct {
	ID         string    `json:"id" firestore:"id"`
	Content    string    `json:"content" firestore:"content"`
	SenderID   string    `json:"sender_id" firestore:"senderId"`
	ReceiverID string    `json:"receiver_id" firestore:"receiverId"`
	ProductID  string    `json:"product_id" firestore:"productId"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	IsRead     bool      `json:"is_read" firestore:"isRead"`
}

// ImageContent builds the content of an image message.
func ImageContent(url string) string {
	return ImageContentPrefix + url
}

// IsImage reports whether the message carries an image attachment.
func (m *Message) IsImage() bool {
	return strings.HasPrefix(m.Content, ImageContentPrefix)
}

// ImageURL returns the attachment URL of an image message.
func (m *Message) ImageURL() string {
	if !m.IsImage() {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(m.Content, ImageContentPrefix))
}

// Preview is the text shown in conversation lists and toasts.
func (m *Message) Preview() string {
	if m.IsImage() {
		return ImagePlaceholder
	}
	return m.Content
}

// CounterpartOf returns the other participant from userID's point of view.
func (m *Message) CounterpartOf(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
