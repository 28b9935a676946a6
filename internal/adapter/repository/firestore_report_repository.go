package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
)

type firestoreReportRepository struct {
	client *firestore.Client
}

func NewFirestoreReportRepository(client *firestore.Client) repository.ReportRepository {
	return &firestoreReportRepository{client: client}
}

func (r *firestoreReportRepository) Create(ctx context.Context, report *entity.Report) error {
	if report.ID == "" {
		report.ID = r.client.Collection("reports").NewDoc().ID
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}

	if _, err := r.client.Collection("reports").Doc(report.ID).Set(ctx, report); err != nil {
		return errors.Internal("Failed to create report", err)
	}
	return nil
}

func (r *firestoreReportRepository) GetByID(ctx context.Context, id string) (*entity.Report, error) {
	doc, err := r.client.Collection("reports").Doc(id).Get(ctx)
	if err != nil {
		if isFirestoreNotFound(err) {
			return nil, errors.NotFound("Report", err)
		}
		return nil, errors.Internal("Failed to get report", err)
	}

	var report entity.Report
	if err := doc.DataTo(&report); err != nil {
		return nil, errors.Internal("Failed to parse report", err)
	}
	return &report, nil
}

func (r *firestoreReportRepository) FindOpen(ctx context.Context, productID, reporterID string) (*entity.Report, error) {
	docs, err := r.client.Collection("reports").
		Where("productId", "==", productID).
		Where("reporterId", "==", reporterID).
		Where("status", "==", entity.ReportStatusOpen).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to find report", err)
	}
	if len(docs) == 0 {
		return nil, errors.NotFound("Report", nil)
	}

	var report entity.Report
	if err := docs[0].DataTo(&report); err != nil {
		return nil, errors.Internal("Failed to parse report", err)
	}
	return &report, nil
}

func (r *firestoreReportRepository) List(ctx context.Context, status string, limit, offset int) ([]*entity.Report, int64, error) {
	query := r.client.Collection("reports").Query
	if status != "" {
		query = query.Where("status", "==", status)
	}

	docs, err := query.OrderBy("createdAt", firestore.Desc).Documents(ctx).GetAll()
	if err != nil {
		return nil, 0, errors.Internal("Failed to list reports", err)
	}

	reports := make([]*entity.Report, 0, len(docs))
	for _, doc := range docs {
		var report entity.Report
		if err := doc.DataTo(&report); err != nil {
			continue
		}
		reports = append(reports, &report)
	}
	return pageOf(reports, limit, offset), int64(len(reports)), nil
}

func (r *firestoreReportRepository) CountByStatus(ctx context.Context, status string) (int64, error) {
	count, err := countQuery(ctx, r.client.Collection("reports").Where("status", "==", status))
	if err != nil {
		return 0, errors.Internal("Failed to count reports", err)
	}
	return count, nil
}

func (r *firestoreReportRepository) Update(ctx context.Context, report *entity.Report) error {
	if _, err := r.client.Collection("reports").Doc(report.ID).Set(ctx, report); err != nil {
		return errors.Internal("Failed to update report", err)
	}
	return nil
}

func (r *firestoreReportRepository) DeleteByReporter(ctx context.Context, reporterID string) error {
	if _, err := deleteQuery(ctx, r.client, r.client.Collection("reports").Where("reporterId", "==", reporterID)); err != nil {
		return errors.Internal("Failed to delete reports", err)
	}
	return nil
}

func (r *firestoreReportRepository) DeleteByProduct(ctx context.Context, productID string) error {
	if _, err := deleteQuery(ctx, r.client, r.client.Collection("reports").Where("productId", "==", productID)); err != nil {
		return errors.Internal("Failed to delete reports", err)
	}
	return nil
}
