package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/domain/service"
	"comoresmarket/internal/infrastructure/ratelimit"
	"comoresmarket/pkg/config"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/utils"
)

const statsConcurrency = 4

type ListingUseCase struct {
	productRepo  repository.ProductRepository
	profileRepo  repository.ProfileRepository
	favoriteRepo repository.FavoriteRepository
	viewRepo     repository.ProductViewRepository
	reportRepo   repository.ReportRepository
	messageRepo  repository.MessageRepository
	storage      service.FileUploadService
	rateLimiter  RateLimiter
	quotas       config.Quotas
}

func NewListingUseCase(
	productRepo repository.ProductRepository,
	profileRepo repository.ProfileRepository,
	favoriteRepo repository.FavoriteRepository,
	viewRepo repository.ProductViewRepository,
	reportRepo repository.ReportRepository,
	messageRepo repository.MessageRepository,
	storage service.FileUploadService,
	rateLimiter RateLimiter,
	quotas config.Quotas,
) *ListingUseCase {
	return &ListingUseCase{
		productRepo:  productRepo,
		profileRepo:  profileRepo,
		favoriteRepo: favoriteRepo,
		viewRepo:     viewRepo,
		reportRepo:   reportRepo,
		messageRepo:  messageRepo,
		storage:      storage,
		rateLimiter:  rateLimiter,
		quotas:       quotas,
	}
}

type ListingInput struct {
	Title          string
	Description    string
	Price          int64
	Images         []string
	CategoryID     string
	SubCategory    string
	Island         string
	City           string
	WhatsappNumber string
}

type ListingDetail struct {
	Product    *entity.Product        `json:"product"`
	Seller     *entity.ProfileSummary `json:"seller,omitempty"`
	IsFavorite bool                   `json:"is_favorite"`
	IsOwner    bool                   `json:"is_owner"`
}

// Actor is the authenticated user performing a write.
type Actor struct {
	UserID  string
	IsAdmin bool
}

func (uc *ListingUseCase) Categories() []entity.Category {
	return entity.Categories
}

// List searches the directory, newest first. Seller contact numbers are not
// part of the directory.
func (uc *ListingUseCase) List(ctx context.Context, filter repository.ProductFilter, params utils.PaginationParams) ([]*entity.Product, int64, error) {
	if filter.MinPrice < 0 || filter.MaxPrice < 0 {
		return nil, 0, errors.BadRequest("Price filters must be positive", nil)
	}
	if filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice {
		return nil, 0, errors.BadRequest("Minimum price is greater than maximum price", nil)
	}
	if filter.Island != "" && !entity.IsIsland(filter.Island) {
		return nil, 0, errors.BadRequest("Unknown island", nil)
	}
	filter.Query = strings.TrimSpace(filter.Query)

	products, total, err := uc.productRepo.List(ctx, filter, params.PageSize, params.Offset)
	if err != nil {
		return nil, 0, err
	}
	for i, p := range products {
		products[i] = p.WithoutContact()
	}
	return products, total, nil
}

// ListMine returns the listings of the user, contact number included.
func (uc *ListingUseCase) ListMine(ctx context.Context, userID string, params utils.PaginationParams) ([]*entity.Product, int64, error) {
	return uc.productRepo.List(ctx, repository.ProductFilter{UserID: userID}, params.PageSize, params.Offset)
}

// Get returns a listing with its seller. The WhatsApp number is disclosed
// for PRO sellers and to the owner. The visit is logged unless the viewer
// owns the listing; a signed-in viewer is logged once.
func (uc *ListingUseCase) Get(ctx context.Context, id, viewerID string) (*ListingDetail, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ListingDetail{IsOwner: viewerID != "" && viewerID == product.UserID}

	seller, err := uc.profileRepo.GetByID(ctx, product.UserID)
	switch {
	case err == nil:
		detail.Seller = seller.Summary()
	case errors.IsNotFound(err):
		logger.Warn("Get listing %s: seller %s not found", product.ID, product.UserID)
	default:
		return nil, err
	}

	if detail.IsOwner || (seller != nil && seller.IsPro) {
		detail.Product = product
	} else {
		detail.Product = product.WithoutContact()
	}

	if viewerID != "" && !detail.IsOwner {
		if detail.IsFavorite, err = uc.favoriteRepo.Exists(ctx, viewerID, product.ID); err != nil {
			return nil, err
		}
	}

	if !detail.IsOwner {
		uc.logView(ctx, product.ID, viewerID)
	}
	return detail, nil
}

func (uc *ListingUseCase) logView(ctx context.Context, productID, viewerID string) {
	if viewerID != "" {
		seen, err := uc.viewRepo.HasViewed(ctx, productID, viewerID)
		if err != nil {
			logger.Warn("logView: lookup failed for %s on %s: %v", viewerID, productID, err)
			return
		}
		if seen {
			return
		}
	}
	if err := uc.viewRepo.Create(ctx, &entity.ProductView{ProductID: productID, ViewerID: viewerID}); err != nil {
		logger.Warn("logView: failed to log view of %s: %v", productID, err)
	}
}

func (uc *ListingUseCase) Create(ctx context.Context, userID string, input ListingInput) (*entity.Product, error) {
	seller, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if seller.IsBanned {
		return nil, errors.Forbidden("Your account is suspended", nil)
	}

	if limit := uc.quotas.MaxListings(seller.IsPro); limit > 0 {
		count, err := uc.productRepo.CountByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		if count >= int64(limit) {
			return nil, errors.Unprocessable("LISTING_QUOTA_EXCEEDED",
				fmt.Sprintf("You have reached the limit of %d listings for your account", limit))
		}
	}

	product := &entity.Product{UserID: userID}
	if err := uc.apply(product, input, seller.IsPro); err != nil {
		return nil, err
	}

	if err := uc.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	logger.Info("Listing %s created by %s", product.ID, userID)
	return product, nil
}

// Update replaces the listing content. Photos dropped from the listing are
// deleted from storage.
func (uc *ListingUseCase) Update(ctx context.Context, actor Actor, id string, input ListingInput) (*entity.Product, error) {
	product, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	owner, err := uc.profileRepo.GetByID(ctx, product.UserID)
	if err != nil {
		return nil, err
	}
	if owner.IsBanned && !actor.IsAdmin {
		return nil, errors.Forbidden("Your account is suspended", nil)
	}

	previous := product.Images
	if err := uc.apply(product, input, owner.IsPro); err != nil {
		return nil, err
	}

	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	var removed []string
	for _, url := range previous {
		if !product.Images.Contains(url) {
			removed = append(removed, url)
		}
	}
	uc.deleteImages(ctx, product, removed)

	return product, nil
}

// Delete removes the listing with its photos, favorites, views and reports.
// Conversations about it are kept.
func (uc *ListingUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	product, err := uc.authorize(ctx, actor, id)
	if err != nil {
		return err
	}
	return uc.purge(ctx, product)
}

func (uc *ListingUseCase) purge(ctx context.Context, product *entity.Product) error {
	if err := uc.productRepo.Delete(ctx, product.ID); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return uc.favoriteRepo.DeleteByProduct(gctx, product.ID) })
	g.Go(func() error { return uc.viewRepo.DeleteByProduct(gctx, product.ID) })
	g.Go(func() error { return uc.reportRepo.DeleteByProduct(gctx, product.ID) })
	if err := g.Wait(); err != nil {
		logger.Error("Delete listing %s: failed to clean up related rows: %v", product.ID, err)
	}

	uc.deleteImages(ctx, product, product.Images)
	logger.Info("Listing %s deleted", product.ID)
	return nil
}

// deleteImages removes the photos stored in the owner's folder. Anything
// else the listing references is left alone.
func (uc *ListingUseCase) deleteImages(ctx context.Context, product *entity.Product, urls []string) {
	if len(urls) == 0 || uc.storage == nil {
		return
	}
	owned := make([]string, 0, len(urls))
	for _, url := range urls {
		if uc.storage.OwnsFile(url, config.BucketProducts, product.UserID) {
			owned = append(owned, url)
		} else {
			logger.Warn("Listing %s: skipping photo outside the owner's folder: %s", product.ID, url)
		}
	}
	if len(owned) == 0 {
		return
	}
	if err := uc.storage.DeleteFiles(ctx, owned); err != nil {
		logger.Warn("Listing %s: failed to delete %d photos: %v", product.ID, len(owned), err)
	}
}

func (uc *ListingUseCase) authorize(ctx context.Context, actor Actor, id string) (*entity.Product, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.UserID != actor.UserID && !actor.IsAdmin {
		return nil, errors.Forbidden("You can only modify your own listings", nil)
	}
	return product, nil
}

func (uc *ListingUseCase) apply(product *entity.Product, input ListingInput, isPro bool) error {
	title := strings.TrimSpace(input.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 100 {
		return errors.BadRequest("Title must be between 3 and 100 characters", nil)
	}
	if utf8.RuneCountInString(input.Description) > 5000 {
		return errors.BadRequest("Description is too long", nil)
	}
	if input.Price < 0 {
		return errors.BadRequest("Price must be positive", nil)
	}

	category, ok := entity.FindCategory(input.CategoryID)
	if !ok {
		return errors.BadRequest("Unknown category", nil)
	}
	if !category.HasSubCategory(input.SubCategory) {
		return errors.BadRequest("Unknown sub category", nil)
	}
	if !entity.IsIsland(input.Island) {
		return errors.BadRequest("Unknown island", nil)
	}

	images := make(entity.ImageList, 0, len(input.Images))
	for _, url := range input.Images {
		if url = strings.TrimSpace(url); url == "" || images.Contains(url) {
			continue
		}
		if uc.storage != nil && !uc.storage.OwnsFile(url, config.BucketProducts, product.UserID) {
			return errors.BadRequest("Photos must be uploaded by the listing owner", nil)
		}
		images = append(images, url)
	}
	if len(images) == 0 {
		return errors.BadRequest("At least one photo is required", nil)
	}
	if limit := uc.quotas.MaxPhotos(isPro); limit > 0 && len(images) > limit {
		return errors.Unprocessable("PHOTO_QUOTA_EXCEEDED",
			fmt.Sprintf("A listing can have at most %d photos", limit))
	}

	whatsapp := ""
	if strings.TrimSpace(input.WhatsappNumber) != "" {
		normalized, ok := utils.NormalizeComorosPhone(input.WhatsappNumber)
		if !ok {
			return errors.BadRequest("WhatsApp number must be a Comoros number (+269 followed by 7 digits)", nil)
		}
		whatsapp = normalized
	}

	product.Title = title
	product.Description = strings.TrimSpace(input.Description)
	product.Price = input.Price
	product.Images = images
	product.CategoryID = category.ID
	product.SubCategory = input.SubCategory
	product.LocationIsland = input.Island
	product.LocationCity = strings.TrimSpace(input.City)
	product.WhatsappNumber = whatsapp
	return nil
}

// Report files a moderation report. A reporter has at most one open report
// per listing.
func (uc *ListingUseCase) Report(ctx context.Context, reporterID, productID, reason, details string) (*entity.Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, errors.BadRequest("A reason is required", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(reporterID, ratelimit.ActionReport); !allowed {
			return nil, errors.TooManyRequests("Too many reports", wait)
		}
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID == reporterID {
		return nil, errors.BadRequest("Cannot report your own listing", nil)
	}

	if _, err := uc.reportRepo.FindOpen(ctx, productID, reporterID); err == nil {
		return nil, errors.Conflict("You have already reported this listing")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	report := &entity.Report{
		ProductID:  productID,
		ReporterID: reporterID,
		Reason:     reason,
		Details:    strings.TrimSpace(details),
		Status:     entity.ReportStatusOpen,
	}
	if err := uc.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	logger.Info("Listing %s reported by %s: %s", productID, reporterID, reason)
	return report, nil
}

// Viewers lists the signed-in visitors of a listing, most recent first.
// Only the owner may see them.
func (uc *ListingUseCase) Viewers(ctx context.Context, ownerID, productID string) ([]*entity.Viewer, error) {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.UserID != ownerID {
		return nil, errors.Forbidden("Only the owner can see who viewed this listing", nil)
	}

	views, err := uc.viewRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	unique := service.UniqueViewers(views)

	ids := make([]string, 0, len(unique))
	for _, v := range unique {
		ids = append(ids, v.ViewerID)
	}
	profiles, err := uc.profileRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	viewers := make([]*entity.Viewer, 0, len(unique))
	for _, v := range unique {
		profile, ok := profiles[v.ViewerID]
		if !ok {
			continue
		}
		viewers = append(viewers, &entity.Viewer{Profile: profile.Summary(), ViewedAt: v.CreatedAt})
	}
	return viewers, nil
}

// Stats returns the audience of every listing of the owner.
func (uc *ListingUseCase) Stats(ctx context.Context, ownerID string) ([]*entity.ListingStats, error) {
	products, _, err := uc.productRepo.List(ctx, repository.ProductFilter{UserID: ownerID}, 0, 0)
	if err != nil {
		return nil, err
	}

	stats := make([]*entity.ListingStats, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statsConcurrency)
	for i, p := range products {
		i, p := i, p
		g.Go(func() error {
			s, err := uc.listingStats(gctx, p)
			if err != nil {
				return err
			}
			stats[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (uc *ListingUseCase) listingStats(ctx context.Context, product *entity.Product) (*entity.ListingStats, error) {
	views, err := uc.viewRepo.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	favorites, err := uc.favoriteRepo.CountByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	messages, err := uc.messageRepo.CountByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &entity.ListingStats{
		ProductID:      product.ID,
		Title:          product.Title,
		Views:          int64(len(views)),
		UniqueViewers:  int64(len(service.UniqueViewers(views))),
		FavoritesCount: favorites,
		MessagesCount:  messages,
	}, nil
}
