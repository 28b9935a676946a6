package repository

import (
	"context"

	"comoresmarket/internal/domain/entity"
)

type ReportRepository interface {
	Create(ctx context.Context, report *entity.Report) error
	GetByID(ctx context.Context, id string) (*entity.Report, error)
	FindOpen(ctx context.Context, productID, reporterID string) (*entity.Report, error)
	List(ctx context.Context, status string, limit, offset int) ([]*entity.Report, int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
	Update(ctx context.Context, report *entity.Report) error
	DeleteByReporter(ctx context.Context, reporterID string) error
	DeleteByProduct(ctx context.Context, productID string) error
}
