package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type firestoreFavoriteRepository struct {
	client *firestore.Client
}

func NewFirestoreFavoriteRepository(client *firestore.Client) repository.FavoriteRepository {
	return &firestoreFavoriteRepository{client: client}
}

func (r *firestoreFavoriteRepository) Add(ctx context.Context, userID, productID string) (*entity.Favorite, error) {
	ref := r.client.Collection("favorites").Doc(entity.FavoriteID(userID, productID))

	doc, err := ref.Get(ctx)
	if err == nil && doc.Exists() {
		var existing entity.Favorite
		if err := doc.DataTo(&existing); err != nil {
			return nil, errors.Internal("Failed to parse favorite", err)
		}
		return &existing, nil
	}
	if err != nil && !isFirestoreNotFound(err) {
		return nil, errors.Internal("Failed to check favorite", err)
	}

	favorite := &entity.Favorite{
		ID:        ref.ID,
		UserID:    userID,
		ProductID: productID,
		CreatedAt: time.Now(),
	}
	if _, err := ref.Set(ctx, favorite); err != nil {
		return nil, errors.Internal("Failed to add favorite", err)
	}
	return favorite, nil
}

func (r *firestoreFavoriteRepository) Remove(ctx context.Context, userID, productID string) error {
	_, err := r.client.Collection("favorites").Doc(entity.FavoriteID(userID, productID)).Delete(ctx)
	if err != nil {
		return errors.Internal("Failed to remove favorite", err)
	}
	return nil
}

func (r *firestoreFavoriteRepository) Exists(ctx context.Context, userID, productID string) (bool, error) {
	doc, err := r.client.Collection("favorites").Doc(entity.FavoriteID(userID, productID)).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return false, nil
		}
		return false, errors.Internal("Failed to check favorite", err)
	}
	return doc.Exists(), nil
}

func (r *firestoreFavoriteRepository) ListByUser(ctx context.Context, userID string) ([]*entity.Favorite, error) {
	docs, err := r.client.Collection("favorites").
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to get favorites", err)
	}

	favorites := make([]*entity.Favorite, 0, len(docs))
	for _, doc := range docs {
		var favorite entity.Favorite
		if err := doc.DataTo(&favorite); err != nil {
			continue
		}
		favorites = append(favorites, &favorite)
	}
	return favorites, nil
}

func (r *firestoreFavoriteRepository) CountByProduct(ctx context.Context, productID string) (int64, error) {
	count, err := countQuery(ctx, r.client.Collection("favorites").Where("productId", "==", productID))
	if err != nil {
		return 0, errors.Internal("Failed to count favorites", err)
	}
	return count, nil
}

func (r *firestoreFavoriteRepository) DeleteByUser(ctx context.Context, userID string) error {
	if _, err := deleteQuery(ctx, r.client, r.client.Collection("favorites").Where("userId", "==", userID)); err != nil {
		return errors.Internal("Failed to delete favorites", err)
	}
	return nil
}

func (r *firestoreFavoriteRepository) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := deleteQuery(ctx, r.client, r.client.Collection("favorites").Where("productId", "==", productID)); err != nil {
		return errors.Internal("Failed to delete favorites", err)
	}
	return nil
}
