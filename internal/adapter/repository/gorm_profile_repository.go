package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type gormProfileRepository struct {
	db *gorm.DB
}

func NewGormProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &gormProfileRepository{db: db}
}

func (r *gormProfileRepository) Create(ctx context.Context, profile *entity.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	profile.Email = strings.ToLower(profile.Email)

	if err := r.db.WithContext(ctx).Create(newProfileRow(profile)).Error; err != nil {
		return errors.Internal("Failed to create profile", err)
	}
	return nil
}

func (r *gormProfileRepository) first(ctx context.Context, column, value string) (*entity.Profile, error) {
	var rows []profileRow
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to get profile", err)
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("Profile", nil)
	}
	return rows[0].toEntity(), nil
}

func (r *gormProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	return r.first(ctx, "id", id)
}

func (r *gormProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	return r.first(ctx, "email", strings.ToLower(email))
}

func (r *gormProfileRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error) {
	profiles := make(map[string]*entity.Profile)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return profiles, nil
	}

	var rows []profileRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to get profiles", err)
	}
	for i := range rows {
		profiles[rows[i].ID] = rows[i].toEntity()
	}
	return profiles, nil
}

func (r *gormProfileRepository) filtered(ctx context.Context, filter repository.ProfileFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&profileRow{})
	if filter.IsPro != nil {
		query = query.Where("is_pro = ?", *filter.IsPro)
	}
	if filter.IsBanned != nil {
		query = query.Where("is_banned = ?", *filter.IsBanned)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		like := "%" + q + "%"
		query = query.Where("(LOWER(full_name) LIKE ? OR email LIKE ?)", like, like)
	}
	return query
}

func (r *gormProfileRepository) List(ctx context.Context, filter repository.ProfileFilter, limit, offset int) ([]*entity.Profile, int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return nil, 0, errors.Internal("Failed to count profiles", err)
	}

	query := r.filtered(ctx, filter).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var rows []profileRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, errors.Internal("Failed to list profiles", err)
	}

	profiles := make([]*entity.Profile, len(rows))
	for i := range rows {
		profiles[i] = rows[i].toEntity()
	}
	return profiles, total, nil
}

func (r *gormProfileRepository) Count(ctx context.Context, filter repository.ProfileFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, errors.Internal("Failed to count profiles", err)
	}
	return total, nil
}

func (r *gormProfileRepository) Update(ctx context.Context, profile *entity.Profile) error {
	profile.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(newProfileRow(profile)).Error; err != nil {
		return errors.Internal("Failed to update profile", err)
	}
	return nil
}

func (r *gormProfileRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&profileRow{}).Error; err != nil {
		return errors.Internal("Failed to delete profile", err)
	}
	return nil
}
