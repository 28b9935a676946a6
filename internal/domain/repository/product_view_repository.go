package repository

import (
	"context"

	"comoresmarket/internal/domain/entity"
)

type ProductViewRepository interface {
	Create(ctx context.Context, view *entity.ProductView) error
	HasViewed(ctx context.Context, productID, viewerID string) (bool, error)

	// ListByProduct returns the views of a listing, newest first.
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductView, error)
	DeleteByProduct(ctx context.Context, productID string) error
	DeleteByViewer(ctx context.Context, viewerID string) error
}
