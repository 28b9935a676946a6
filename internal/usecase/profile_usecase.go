package usecase

import (
	"context"
	"io"
	"net/url"
	"strings"
	"unicode/utf8"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/domain/service"
	"comoresmarket/pkg/config"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
	"comoresmarket/pkg/utils"
)

type ProfileUseCase struct {
	profileRepo  repository.ProfileRepository
	productRepo  repository.ProductRepository
	messageRepo  repository.MessageRepository
	favoriteRepo repository.FavoriteRepository
	viewRepo     repository.ProductViewRepository
	reportRepo   repository.ReportRepository
	listings     *ListingUseCase
	storage      service.FileUploadService
	authClient   FirebaseAuthClient
	config       *config.Config
}

func NewProfileUseCase(
	profileRepo repository.ProfileRepository,
	productRepo repository.ProductRepository,
	messageRepo repository.MessageRepository,
	favoriteRepo repository.FavoriteRepository,
	viewRepo repository.ProductViewRepository,
	reportRepo repository.ReportRepository,
	listings *ListingUseCase,
	storage service.FileUploadService,
	authClient FirebaseAuthClient,
	cfg *config.Config,
) *ProfileUseCase {
	return &ProfileUseCase{
		profileRepo:  profileRepo,
		productRepo:  productRepo,
		messageRepo:  messageRepo,
		favoriteRepo: favoriteRepo,
		viewRepo:     viewRepo,
		reportRepo:   reportRepo,
		listings:     listings,
		storage:      storage,
		authClient:   authClient,
		config:       cfg,
	}
}

type UpdateProfileInput struct {
	FullName    string
	City        string
	Island      string
	PhoneNumber string
}

type SellerPage struct {
	Profile  *entity.PublicProfile `json:"profile"`
	Listings []*entity.Product     `json:"listings"`
	Total    int64                 `json:"total"`
}

type ProOffer struct {
	PriceKMF          int64  `json:"price_kmf"`
	WhatsappNumber    string `json:"whatsapp_number"`
	WhatsappURL       string `json:"whatsapp_url"`
	FreeMaxListings   int    `json:"free_max_listings"`
	FreeMaxPhotos     int    `json:"free_max_photos"`
	ProMaxListings    int    `json:"pro_max_listings"`
	ProMaxPhotos      int    `json:"pro_max_photos"`
	IsPro             bool   `json:"is_pro"`
	ActivationMessage string `json:"activation_message"`
}

func (uc *ProfileUseCase) GetMe(ctx context.Context, userID string) (*entity.Profile, error) {
	return uc.profileRepo.GetByID(ctx, userID)
}

func (uc *ProfileUseCase) UpdateMe(ctx context.Context, userID string, input UpdateProfileInput) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(input.FullName)
	if n := utf8.RuneCountInString(fullName); n < 2 || n > 80 {
		return nil, errors.BadRequest("Full name must be between 2 and 80 characters", nil)
	}
	if input.Island != "" && !entity.IsIsland(input.Island) {
		return nil, errors.BadRequest("Unknown island", nil)
	}

	phone := ""
	if strings.TrimSpace(input.PhoneNumber) != "" {
		normalized, ok := utils.NormalizeComorosPhone(input.PhoneNumber)
		if !ok {
			return nil, errors.BadRequest("Phone number must be a Comoros number (+269 followed by 7 digits)", nil)
		}
		phone = normalized
	}

	profile.FullName = fullName
	profile.City = strings.TrimSpace(input.City)
	profile.Island = input.Island
	profile.PhoneNumber = phone

	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateAvatar stores a new avatar and deletes the previous one.
func (uc *ProfileUseCase) UpdateAvatar(ctx context.Context, userID string, file io.Reader, contentType string) (*entity.Profile, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	avatarURL, err := uc.storage.UploadFile(ctx, file, contentType, config.BucketAvatars, userID)
	if err != nil {
		return nil, err
	}

	previous := profile.AvatarURL
	profile.AvatarURL = avatarURL
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		if delErr := uc.storage.DeleteFile(ctx, avatarURL); delErr != nil {
			logger.Warn("UpdateAvatar: failed to remove orphan upload %s: %v", avatarURL, delErr)
		}
		return nil, err
	}

	if previous != "" && uc.storage.OwnsFile(previous, config.BucketAvatars, userID) {
		if err := uc.storage.DeleteFile(ctx, previous); err != nil {
			logger.Warn("UpdateAvatar: failed to delete previous avatar of %s: %v", userID, err)
		}
	}
	return profile, nil
}

// SellerPage is the public page of a seller with their listings.
func (uc *ProfileUseCase) SellerPage(ctx context.Context, sellerID string, params utils.PaginationParams) (*SellerPage, error) {
	profile, err := uc.profileRepo.GetByID(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if profile.IsBanned {
		return nil, errors.NotFound("Profile", nil)
	}

	listings, total, err := uc.productRepo.List(ctx, repository.ProductFilter{UserID: sellerID}, params.PageSize, params.Offset)
	if err != nil {
		return nil, err
	}
	if !profile.IsPro {
		for i, p := range listings {
			listings[i] = p.WithoutContact()
		}
	}

	return &SellerPage{
		Profile:  profile.Public(),
		Listings: listings,
		Total:    total,
	}, nil
}

// ProOffer describes the PRO tier and how to pay for it. userID may be empty.
func (uc *ProfileUseCase) ProOffer(ctx context.Context, userID string) (*ProOffer, error) {
	quotas := uc.config.Quotas
	offer := &ProOffer{
		PriceKMF:        uc.config.ProPriceKMF,
		WhatsappNumber:  uc.config.ProWhatsappNumber,
		FreeMaxListings: quotas.FreeMaxListings,
		FreeMaxPhotos:   quotas.FreeMaxPhotos,
		ProMaxListings:  quotas.ProMaxListings,
		ProMaxPhotos:    quotas.ProMaxPhotos,
	}

	message := "Bonjour, je souhaite passer PRO sur Comores Market."
	if userID != "" {
		profile, err := uc.profileRepo.GetByID(ctx, userID)
		if err != nil {
			return nil, err
		}
		offer.IsPro = profile.IsPro
		message += " Mon email : " + profile.Email
	}
	offer.ActivationMessage = message

	digits := strings.TrimPrefix(uc.config.ProWhatsappNumber, "+")
	offer.WhatsappURL = "https://wa.me/" + digits + "?text=" + url.QueryEscape(message)
	return offer, nil
}

// DeleteAccount removes everything the user owns, then the profile and the
// authentication account.
func (uc *ProfileUseCase) DeleteAccount(ctx context.Context, userID string) error {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	messages, err := uc.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	var images []string
	for _, m := range messages {
		if u := m.ImageURL(); u != "" && m.SenderID == userID && uc.storage.OwnsFile(u, config.BucketChatImages, userID) {
			images = append(images, u)
		}
	}
	if len(images) > 0 {
		if err := uc.storage.DeleteFiles(ctx, images); err != nil {
			logger.Warn("DeleteAccount: failed to delete chat images of %s: %v", userID, err)
		}
	}
	if err := uc.messageRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}

	products, _, err := uc.productRepo.List(ctx, repository.ProductFilter{UserID: userID}, 0, 0)
	if err != nil {
		return err
	}
	for _, p := range products {
		if err := uc.listings.purge(ctx, p); err != nil {
			return err
		}
	}

	if err := uc.favoriteRepo.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	if err := uc.viewRepo.DeleteByViewer(ctx, userID); err != nil {
		return err
	}
	if err := uc.reportRepo.DeleteByReporter(ctx, userID); err != nil {
		return err
	}

	if profile.AvatarURL != "" && uc.storage.OwnsFile(profile.AvatarURL, config.BucketAvatars, userID) {
		if err := uc.storage.DeleteFile(ctx, profile.AvatarURL); err != nil {
			logger.Warn("DeleteAccount: failed to delete avatar of %s: %v", userID, err)
		}
	}

	if err := uc.profileRepo.Delete(ctx, userID); err != nil {
		return err
	}
	if err := uc.authClient.DeleteUser(ctx, userID); err != nil {
		return err
	}

	logger.Info("Account %s deleted", userID)
	return nil
}
