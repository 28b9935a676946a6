package repository

import (
	"context"

	"comoresmarket/internal/domain/entity"
)

type ProfileFilter struct {
	Query    string
	IsPro    *bool
	IsBanned *bool
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *entity.Profile) error
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*entity.Profile, error)
	List(ctx context.Context, filter ProfileFilter, limit, offset int) ([]*entity.Profile, int64, error)
	Count(ctx context.Context, filter ProfileFilter) (int64, error)
	Update(ctx context.Context, profile *entity.Profile) error
	Delete(ctx context.Context, id string) error
}
