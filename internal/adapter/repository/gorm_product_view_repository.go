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

type gormProductViewRepository struct {
	db *gorm.DB
}

func NewGormProductViewRepository(db *gorm.DB) repository.ProductViewRepository {
	return &gormProductViewRepository{db: db}
}

func (r *gormProductViewRepository) Create(ctx context.Context, view *entity.ProductView) error {
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(newProductViewRow(view)).Error; err != nil {
		return errors.Internal("Failed to log product view", err)
	}
	return nil
}

func (r *gormProductViewRepository) HasViewed(ctx context.Context, productID, viewerID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&productViewRow{}).
		Where("product_id = ? AND viewer_id = ?", productID, viewerID).
		Count(&count).Error
	if err != nil {
		return false, errors.Internal("Failed to check product view", err)
	}
	return count > 0, nil
}

func (r *gormProductViewRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductView, error) {
	var rows []productViewRow
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to list product views", err)
	}

	views := make([]*entity.ProductView, len(rows))
	for i := range rows {
		views[i] = rows[i].toEntity()
	}
	return views, nil
}

func (r *gormProductViewRepository) DeleteByProduct(ctx context.Context, productID string) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&productViewRow{}).Error; err != nil {
		return errors.Internal("Failed to delete product views", err)
	}
	return nil
}

func (r *gormProductViewRepository) DeleteByViewer(ctx context.Context, viewerID string) error {
	if err := r.db.WithContext(ctx).Where("viewer_id = ?", viewerID).Delete(&productViewRow{}).Error; err != nil {
		return errors.Internal("Failed to delete product views", err)
	}
	return nil
}
