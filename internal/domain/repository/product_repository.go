package repository

import (
	"context"

	"comoresmarket/internal/domain/entity"
)

// ProductFilter narrows the listing directory. Zero values disable a filter.
type ProductFilter struct {
	CategoryID  string
	SubCategory string
	Island      string
	MinPrice    int64
	MaxPrice    int64
	Query       string
	UserID      string
}

type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Product, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]*entity.Product, int64, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id string) error
}
