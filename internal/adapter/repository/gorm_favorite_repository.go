package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type gormFavoriteRepository struct {
	db *gorm.DB
}

func NewGormFavoriteRepository(db *gorm.DB) repository.FavoriteRepository {
	return &gormFavoriteRepository{db: db}
}

func (r *gormFavoriteRepository) Add(ctx context.Context, userID, productID string) (*entity.Favorite, error) {
	row := favoriteRow{
		ID:        entity.FavoriteID(userID, productID),
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}

	db := r.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, errors.Internal("Failed to add favorite", err)
	}

	var stored favoriteRow
	if err := db.Where("user_id = ? AND product_id = ?", userID, productID).Take(&stored).Error; err != nil {
		return nil, errors.Internal("Failed to load favorite", err)
	}
	return stored.toEntity(), nil
}

func (r *gormFavoriteRepository) Remove(ctx context.Context, userID, productID string) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&favoriteRow{}).Error
	if err != nil {
		return errors.Internal("Failed to remove favorite", err)
	}
	return nil
}

func (r *gormFavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&favoriteRow{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Count(&count).Error
	if err != nil {
		return false, errors.Internal("Failed to check favorite", err)
	}
	return count > 0, nil
}

func (r *gormFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	var rows []favoriteRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Internal("Failed to get favorites", err)
	}

	favorites := make([]*entity.Favorite, len(rows))
	for i := range rows {
		favorites[i] = rows[i].toEntity()
	}
	return favorites, nil
}

func (r *gormFavoriteRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&favoriteRow{}).Where("product_id = ?", productID).Count(&count).Error; err != nil {
		return 0, errors.Internal("Failed to count favorites", err)
	}
	return count, nil
}

func (r *gormFavoriteRepository) DeleteByUser(ctx context.Context, userID string) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&favoriteRow{}).Error; err != nil {
		return errors.Internal("Failed to delete favorites", err)
	}
	return nil
}

func (r *gormFavoriteRepository) DeleteByProduct(ctx context.Context, productID string) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&favoriteRow{}).Error; err != nil {
		return errors.Internal("Failed to delete favorites", err)
	}
	return nil
}
