package repository

import (
	"cloud.google.com/go/firestore"
	"gorm.io/gorm"

	"comoresmarket/internal/domain/repository"
)

// Repositories bundles the stores of one data backend.
type Repositories struct {
	Profiles  repository.ProfileRepository
	Products  repository.ProductRepository
	Messages  repository.MessageRepository
	Favorites repository.FavoriteRepository
	Reports   repository.ReportRepository
	Views     repository.ProductViewRepository
}

func NewFirestoreRepositories(client *firestore.Client) *Repositories {
	return &Repositories{
		Profiles:  NewFirestoreProfileRepository(client),
		Products:  NewFirestoreProductRepository(client),
		Messages:  NewFirestoreMessageRepository(client),
		Favorites: NewFirestoreFavoriteRepository(client),
		Reports:   NewFirestoreReportRepository(client),
		Views:     NewFirestoreProductViewRepository(client),
	}
}

func NewGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:  NewGormProfileRepository(db),
		Products:  NewGormProductRepository(db),
		Messages:  NewGormMessageRepository(db),
		Favorites: NewGormFavoriteRepository(db),
		Reports:   NewGormReportRepository(db),
		Views:     NewGormProductViewRepository(db),
	}
}
