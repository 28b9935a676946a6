package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type gormMessageRepository struct {
	db *gorm.DB
}

func NewGormMessageRepository(db *gorm.DB) repository.MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(newMessageRow(message)).Error; err != nil {
		return errors.Internal("Failed to create message", err)
	}
	return nil
}

func (r *gormMessageRepository) find(query *gorm.DB) ([]*entity.Message, error) {
	var rows []messageRow
	if err := query.Order("created_at ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	messages := make([]*entity.Message, len(rows))
	for i := range rows {
		messages[i] = rows[i].toEntity()
	}
	return messages, nil
}

func (r *gormMessageRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Message, error) {
	messages, err := r.find(r.db.WithContext(ctx).
		Where("(sender_id = ? OR receiver_id = ?)", userID, userID))
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) ListThread(ctx context.Context, productID, userA, userB string) ([]*entity.Message, error) {
	messages, err := r.find(r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))",
			userA, userB, userB, userA))
	if err != nil {
		return nil, errors.Internal("Failed to list conversation messages", err)
	}
	return messages, nil
}

func (r *gormMessageRepository) direction(ctx context.Context, productID, senderID, receiverID string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&messageRow{}).
		Where("product_id = ? AND sender_id = ? AND receiver_id = ?", productID, senderID, receiverID)
}

func (r *gormMessageRepository) MarkThreadRead(ctx context.Context, productID, senderID, receiverID string) (int64, error) {
	result := r.direction(ctx, productID, senderID, receiverID).
		Where("is_read = ?", false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, errors.Internal("Failed to mark messages as read", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormMessageRepository) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messageRow{}).
		Where("receiver_id = ? AND is_read = ?", receiverID, false).
		Count(&count).Error
	if err != nil {
		return 0, errors.Internal("Failed to count unread messages", err)
	}
	return count, nil
}

func (r *gormMessageRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&messageRow{}).Where("product_id = ?", productID).Count(&count).Error
	if err != nil {
		return 0, errors.Internal("Failed to count messages", err)
	}
	return count, nil
}

func (r *gormMessageRepository) DeleteDirection(ctx context.Context, productID, senderID, receiverID string) error {
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND sender_id = ? AND receiver_id = ?", productID, senderID, receiverID).
		Delete(&messageRow{}).Error
	if err != nil {
		return errors.Internal("Failed to delete messages", err)
	}
	return nil
}

func (r *gormMessageRepository) DeleteByUser(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		Delete(&messageRow{}).Error
	if err != nil {
		return errors.Internal("Failed to delete user messages", err)
	}
	return nil
}
