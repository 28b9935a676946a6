package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type gormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) repository.ProductRepository {
	return &gormProductRepository{db: db}
}

func (r *gormProductRepository) Create(ctx context.Context, product *entity.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now

	if err := r.db.WithContext(ctx).Create(newProductRow(product)).Error; err != nil {
		return errors.Internal("Failed to create product", err)
	}
	return nil
}

func (r *gormProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var rows []productRow
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to get product", err)
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("Product", nil)
	}
	return rows[0].toEntity(), nil
}

func (r *gormProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error) {
	products := make(map[string]*entity.Product)
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return products, nil
	}

	var rows []productRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to get products", err)
	}
	for i := range rows {
		products[rows[i].ID] = rows[i].toEntity()
	}
	return products, nil
}

func (r *gormProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]*entity.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&productRow{})

	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.SubCategory != "" {
		query = query.Where("sub_category = ?", filter.SubCategory)
	}
	if filter.Island != "" {
		query = query.Where("location_island = ?", filter.Island)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.MinPrice > 0 {
		query = query.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query = query.Where("price <= ?", filter.MaxPrice)
	}
	if q := strings.ToLower(strings.TrimSpace(filter.Query)); q != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Internal("Failed to count products", err)
	}

	query = query.Order("created_at DESC").Order("id ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var rows []productRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, errors.Internal("Failed to list products", err)
	}

	products := make([]*entity.Product, len(rows))
	for i := range rows {
		products[i] = rows[i].toEntity()
	}
	return products, total, nil
}

func (r *gormProductRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&productRow{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, errors.Internal("Failed to count products", err)
	}
	return count, nil
}

func (r *gormProductRepository) Update(ctx context.Context, product *entity.Product) error {
	product.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Save(newProductRow(product)).Error; err != nil {
		return errors.Internal("Failed to update product", err)
	}
	return nil
}

func (r *gormProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&productRow{}).Error; err != nil {
		return errors.Internal("Failed to delete product", err)
	}
	return nil
}
