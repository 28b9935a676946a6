package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type gormReportRepository struct {
	db *gorm.DB
}

func NewGormReportRepository(db *gorm.DB) repository.ReportRepository {
	return &gormReportRepository{db: db}
}

func (r *gormReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(newReportRow(report)).Error; err != nil {
		return errors.Internal("Failed to create report", err)
	}
	return nil
}

func (r *gormReportRepository) first(query *gorm.DB) (*entity.Report, error) {
	var rows []reportRow
	if err := query.Limit(1).Find(&rows).Error; err != nil {
		return nil, errors.Internal("Failed to get report", err)
	}
	if len(rows) == 0 {
		return nil, errors.NotFound("Report", nil)
	}
	return rows[0].toEntity(), nil
}

func (r *gormReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *gormReportRepository) FindOpen(ctx context.Context, productID, reporterID string) (*entity.Report, error) {
	return r.first(r.db.WithContext(ctx).
		Where("product_id = ? AND reporter_id = ? AND status = ?", productID, reporterID, entity.ReportStatusOpen))
}

func (r *gormReportRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.Report, int64, error) {
	query := r.db.WithContext(ctx).Model(&reportRow{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.Internal("Failed to count reports", err)
	}

	query = query.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var rows []reportRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, 0, errors.Internal("Failed to list reports", err)
	}

	reports := make([]*entity.Report, len(rows))
	for i := range rows {
		reports[i] = rows[i].toEntity()
	}
	return reports, total, nil
}

func (r *gormReportRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&reportRow{}).Where("status = ?", status).Count(&count).Error; err != nil {
		return 0, errors.Internal("Failed to count reports", err)
	}
	return count, nil
}

func (r *gormReportRepository) Update(ctx context.Context, report *entity.Report) error {
	if err := r.db.WithContext(ctx).Save(newReportRow(report)).Error; err != nil {
		return errors.Internal("Failed to update report", err)
	}
	return nil
}

func (r *gormReportRepository) DeleteByReporter(ctx context.Context, reporterID string) error {
	if err := r.db.WithContext(ctx).Where("reporter_id = ?", reporterID).Delete(&reportRow{}).Error; err != nil {
		return errors.Internal("Failed to delete reports", err)
	}
	return nil
}

func (r *gormReportRepository) DeleteByProduct(ctx context.Context, productID string) error {
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Delete(&reportRow{}).Error; err != nil {
		return errors.Internal("Failed to delete reports", err)
	}
	return nil
}
