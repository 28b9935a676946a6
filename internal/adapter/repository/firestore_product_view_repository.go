package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type firestoreProductViewRepository struct {
	client *firestore.Client
}

func NewFirestoreProductViewRepository(client *firestore.Client) repository.ProductViewRepository {
	return &firestoreProductViewRepository{client: client}
}

func (r *firestoreProductViewRepository) Create(ctx context.Context, view *entity.ProductView) error {
	if view.ID == "" {
		view.ID = r.client.Collection("product_views").NewDoc().ID
	}
	if view.CreatedAt.IsZero() {
		view.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection("product_views").Doc(view.ID).Set(ctx, view); err != nil {
		return errors.Internal("Failed to log product view", err)
	}
	return nil
}

func (r *firestoreProductViewRepository) HasViewed(ctx context.Context, productID, viewerID string) (bool, error) {
	docs, err := r.client.Collection("product_views").
		Where("productId", "==", productID).
		Where("viewerId", "==", viewerID).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return false, errors.Internal("Failed to check product view", err)
	}
	return len(docs) > 0, nil
}

func (r *firestoreProductViewRepository) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductView, error) {
	docs, err := r.client.Collection("product_views").
		Where("productId", "==", productID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to list product views", err)
	}

	views := make([]*entity.ProductView, 0, len(docs))
	for _, doc := range docs {
		var view entity.ProductView
		if err := doc.DataTo(&view); err != nil {
			continue
		}
		views = append(views, &view)
	}
	return views, nil
}

func (r *firestoreProductViewRepository) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := deleteQuery(ctx, r.client, r.client.Collection("product_views").Where("productId", "==", productID)); err != nil {
		return errors.Internal("Failed to delete product views", err)
	}
	return nil
}

func (r *firestoreProductViewRepository) DeleteByViewer(ctx context.Context, viewerID string) error {
	if _, err := deleteQuery(ctx, r.client, r.client.Collection("product_views").Where("viewerId", "==", viewerID)); err != nil {
		return errors.Internal("Failed to delete product views", err)
	}
	return nil
}
