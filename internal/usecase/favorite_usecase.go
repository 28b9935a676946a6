package usecase

import (
	"context"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
)

type FavoriteUseCase struct {
	favoriteRepo repository.FavoriteRepository
	productRepo  repository.ProductRepository
}

func NewFavoriteUseCase(
	favoriteRepo repository.FavoriteRepository,
	productRepo repository.ProductRepository,
) *FavoriteUseCase {
	return &FavoriteUseCase{
		favoriteRepo: favoriteRepo,
		productRepo:  productRepo,
	}
}

func (u *FavoriteUseCase) Add(ctx context.Context, userID, productID string) (*entity.Favorite, error) {
	product, err := u.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID == userID {
		return nil, errors.BadRequest("Cannot add your own listing to favorites", nil)
	}

	return u.favoriteRepo.Add(ctx, userID, productID)
}

// Remove is idempotent.
func (u *FavoriteUseCase) Remove(ctx context.Context, userID, productID string) error {
	return u.favoriteRepo.Remove(ctx, userID, productID)
}

func (u *FavoriteUseCase) IsFavorite(ctx context.Context, userID, productID string) (bool, error) {
	return u.favoriteRepo.Exists(ctx, userID, productID)
}

// List returns the favorites of the user, newest first. Favorites of
// deleted listings are skipped.
func (u *FavoriteUseCase) List(ctx context.Context, userID string) ([]*entity.FavoriteWithProduct, error) {
	favorites, err := u.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(favorites))
	for _, f := range favorites {
		ids = append(ids, f.ProductID)
	}
	products, err := u.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]*entity.FavoriteWithProduct, 0, len(favorites))
	for _, f := range favorites {
		product, ok := products[f.ProductID]
		if !ok {
			logger.Debug("Favorites of %s: listing %s no longer exists", userID, f.ProductID)
			continue
		}
		items = append(items, &entity.FavoriteWithProduct{
			ProductID: f.ProductID,
			Product:   product.WithoutContact(),
			CreatedAt: f.CreatedAt,
		})
	}
	return items, nil
}
