package usecase

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/utils"
)

type AdminUseCase struct {
	profileRepo repository.ProfileRepository
	productRepo repository.ProductRepository
	reportRepo  repository.ReportRepository
	listings    *ListingUseCase
	authClient  FirebaseAuthClient
}

func NewAdminUseCase(
	profileRepo repository.ProfileRepository,
	productRepo repository.ProductRepository,
	reportRepo repository.ReportRepository,
	listings *ListingUseCase,
	authClient FirebaseAuthClient,
) *AdminUseCase {
	return &AdminUseCase{
		profileRepo: profileRepo,
		productRepo: productRepo,
		reportRepo:  reportRepo,
		listings:    listings,
		authClient:  authClient,
	}
}

type DashboardStats struct {
	Users       int64 `json:"users"`
	ProUsers    int64 `json:"pro_users"`
	BannedUsers int64 `json:"banned_users"`
	Listings    int64 `json:"listings"`
	OpenReports int64 `json:"open_reports"`
}

type ReportView struct {
	*entity.Report
	Product  *entity.ProductSummary `json:"product,omitempty"`
	Reporter *entity.ProfileSummary `json:"reporter,omitempty"`
}

func (uc *AdminUseCase) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	yes := true

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Users, err = uc.profileRepo.Count(gctx, repository.ProfileFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.ProUsers, err = uc.profileRepo.Count(gctx, repository.ProfileFilter{IsPro: &yes})
		return err
	})
	g.Go(func() (err error) {
		stats.BannedUsers, err = uc.profileRepo.Count(gctx, repository.ProfileFilter{IsBanned: &yes})
		return err
	})
	g.Go(func() (err error) {
		_, stats.Listings, err = uc.productRepo.List(gctx, repository.ProductFilter{}, 1, 0)
		return err
	})
	g.Go(func() (err error) {
		stats.OpenReports, err = uc.reportRepo.CountByStatus(gctx, entity.ReportStatusOpen)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (uc *AdminUseCase) ListUsers(ctx context.Context, filter repository.ProfileFilter, params utils.PaginationParams) ([]*entity.Profile, int64, error) {
	return uc.profileRepo.List(ctx, filter, params.PageSize, params.Offset)
}

// SetBanned suspends or restores a user. A suspended user cannot sign in
// and their sessions are revoked.
func (uc *AdminUseCase) SetBanned(ctx context.Context, adminID, userID string, banned bool) (*entity.Profile, error) {
	if adminID == userID {
		return nil, errors.BadRequest("You cannot ban yourself", nil)
	}

	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.authClient.SetDisabled(ctx, userID, banned); err != nil {
		return nil, err
	}
	profile.IsBanned = banned
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("Admin %s set banned=%t on %s", adminID, banned, userID)
	return profile, nil
}

// SetPro switches the PRO tier of a user once the payment was confirmed.
func (uc *AdminUseCase) SetPro(ctx context.Context, adminID, userID string, isPro bool) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if isPro && !profile.IsPro {
		now := time.Now()
		profile.ProSince = &now
	}
	if !isPro {
		profile.ProSince = nil
	}
	profile.IsPro = isPro

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	logger.Info("Admin %s set pro=%t on %s", adminID, isPro, userID)
	return profile, nil
}

func (uc *AdminUseCase) ListListings(ctx context.Context, filter repository.ProductFilter, params utils.PaginationParams) ([]*entity.Product, int64, error) {
	return uc.productRepo.List(ctx, filter, params.PageSize, params.Offset)
}

func (uc *AdminUseCase) DeleteListing(ctx context.Context, adminID, productID string) error {
	if err := uc.listings.Delete(ctx, Actor{UserID: adminID, IsAdmin: true}, productID); err != nil {
		return err
	}
	logger.Info("Admin %s deleted listing %s", adminID, productID)
	return nil
}

func (uc *AdminUseCase) ListReports(ctx context.Context, status string, params utils.PaginationParams) ([]*ReportView, int64, error) {
	if status != "" && status != entity.ReportStatusOpen && status != entity.ReportStatusResolved {
		return nil, 0, errors.BadRequest("Unknown report status", nil)
	}

	reports, total, err := uc.reportRepo.List(ctx, status, params.PageSize, params.Offset)
	if err != nil {
		return nil, 0, err
	}

	productIDs := make([]string, 0, len(reports))
	reporterIDs := make([]string, 0, len(reports))
	for _, r := range reports {
		productIDs = append(productIDs, r.ProductID)
		reporterIDs = append(reporterIDs, r.ReporterID)
	}
	products, err := uc.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, 0, err
	}
	reporters, err := uc.profileRepo.GetByIDs(ctx, reporterIDs)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*ReportView, 0, len(reports))
	for _, r := range reports {
		views = append(views, &ReportView{
			Report:   r,
			Product:  products[r.ProductID].Summary(),
			Reporter: reporters[r.ReporterID].Summary(),
		})
	}
	return views, total, nil
}

func (uc *AdminUseCase) ResolveReport(ctx context.Context, adminID, reportID string) (*entity.Report, error) {
	report, err := uc.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if report.Status == entity.ReportStatusResolved {
		return report, nil
	}

	now := time.Now()
	report.Status = entity.ReportStatusResolved
	report.ResolvedAt = &now
	if err := uc.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}

	logger.Info("Admin %s resolved report %s", adminID, reportID)
	return report, nil
}
