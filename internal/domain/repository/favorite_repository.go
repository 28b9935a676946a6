package repository

import (
	"context"

	"comoresmarket/internal/domain/entity"
)

type FavoriteRepository interface {
	// Add is idempotent: adding an existing pair returns the stored row.
	Add(ctx context.Context, userID, productID string) (*entity.Favorite, error)
	Remove(ctx context.Context, userID, productID string) error
	Exists(ctx context.Context, userID, productID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error)
	CountByProduct(ctx context.Context, productID string) (int64, error)
	DeleteByUser(ctx context.Context, userID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
