package repository

import (
	"context"

	"comoresmarket/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error

	// ListForUser returns every message sent or received by the user,
	// oldest first.
	ListForUser(ctx context.Context, userID string) ([]*entity.Message, error)

	// ListThread returns the messages exchanged between two users about a
	// product in both directions, oldest first.
	ListThread(ctx context.Context, productID, userA, userB string) ([]*entity.Message, error)

	// MarkThreadRead flags unread messages from sender to receiver about the
	// product as read and returns how many rows changed.
	MarkThreadRead(ctx context.Context, productID, senderID, receiverID string) (int64, error)

	CountUnread(ctx context.Context, receiverID string) (int64, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)

	// DeleteDirection removes the messages sent by sender to receiver about
	// the product.
	DeleteDirection(ctx context.Context, productID, senderID, receiverID string) error
	DeleteByUser(ctx context.Context, userID string) error
}
