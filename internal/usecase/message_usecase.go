package usecase

import (
	"context"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/domain/service"
	"comoresmarket/internal/infrastructure/metrics"
	"comoresmarket/internal/infrastructure/ratelimit"
	"comoresmarket/pkg/config"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
)

const MaxMessageLength = 2000

type MessageUseCase struct {
	messageRepo repository.MessageRepository
	profileRepo repository.ProfileRepository
	productRepo repository.ProductRepository
	storage     service.FileUploadService
	notifier    *NotificationUseCase
	rateLimiter RateLimiter
	metrics     *metrics.Metrics
}

func NewMessageUseCase(
	messageRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	productRepo repository.ProductRepository,
	storage service.FileUploadService,
	notifier *NotificationUseCase,
	rateLimiter RateLimiter,
	m *metrics.Metrics,
) *MessageUseCase {
	return &MessageUseCase{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		productRepo: productRepo,
		storage:     storage,
		notifier:    notifier,
		rateLimiter: rateLimiter,
		metrics:     m,
	}
}

type SendMessageInput struct {
	ProductID  string
	ReceiverID string
	Content    string
}

// ListConversations returns every conversation of the user, most recent
// activity first.
func (uc *MessageUseCase) ListConversations(ctx context.Context, userID string) ([]*entity.Conversation, error) {
	messages, err := uc.messageRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.aggregate(ctx, userID, messages)
}

// OpenConversation returns the thread with counterpartID about productID and
// marks the messages addressed to userID as read. A thread without messages
// yields a stub built from the listing and the counterpart profile.
func (uc *MessageUseCase) OpenConversation(ctx context.Context, userID, productID, counterpartID string) (*entity.Conversation, error) {
	if userID == counterpartID {
		return nil, errors.BadRequest("Cannot open a conversation with yourself", nil)
	}

	messages, err := uc.messageRepo.ListThread(ctx, productID, userID, counterpartID)
	if err != nil {
		return nil, err
	}

	if len(messages) == 0 {
		product, err := uc.productRepo.GetByID(ctx, productID)
		if err != nil {
			return nil, err
		}
		counterpart, err := uc.profileRepo.GetByID(ctx, counterpartID)
		if err != nil {
			return nil, err
		}
		if product.UserID != userID && product.UserID != counterpartID {
			return nil, errors.BadRequest("Conversations must involve the seller of the listing", nil)
		}
		return service.NewStubConversation(product, counterpart), nil
	}

	hasUnread := false
	for _, m := range messages {
		if m.ReceiverID == userID && !m.IsRead {
			hasUnread = true
			break
		}
	}
	if hasUnread {
		if _, err := uc.MarkConversationRead(ctx, userID, productID, counterpartID); err != nil {
			return nil, err
		}
		for _, m := range messages {
			if m.ReceiverID == userID {
				m.IsRead = true
			}
		}
	}

	conversations, err := uc.aggregate(ctx, userID, messages)
	if err != nil {
		return nil, err
	}
	return conversations[0], nil
}

// MarkConversationRead flags the counterpart's messages to userID about the
// product as read. It is idempotent.
func (uc *MessageUseCase) MarkConversationRead(ctx context.Context, userID, productID, counterpartID string) (int64, error) {
	updated, err := uc.messageRepo.MarkThreadRead(ctx, productID, counterpartID, userID)
	if err != nil {
		return 0, err
	}
	if updated > 0 && uc.notifier != nil {
		uc.notifier.MessagesRead(ctx, userID, productID, counterpartID)
	}
	return updated, nil
}

// Send stores a text message after checking it does not leak contact
// details, then notifies the receiver.
func (uc *MessageUseCase) Send(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.BadRequest("Message cannot be empty", nil)
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, errors.BadRequest("Message is too long", nil)
	}
	if strings.HasPrefix(content, entity.ImageContentPrefix) {
		return nil, errors.BadRequest("Images must be sent as attachments", nil)
	}

	sender, product, err := uc.prepareSend(ctx, senderID, input.ProductID, input.ReceiverID)
	if err != nil {
		return nil, err
	}

	thread, err := uc.messageRepo.ListThread(ctx, input.ProductID, senderID, input.ReceiverID)
	if err != nil {
		return nil, err
	}
	if err := service.CheckOutboundMessage(recentTextsFrom(thread, senderID), content); err != nil {
		if uc.metrics != nil {
			uc.metrics.ContactDetailsBlocked.Inc()
		}
		logger.Info("Send: contact details blocked from %s about product %s", senderID, input.ProductID)
		return nil, err
	}

	return uc.create(ctx, sender, product, input.ReceiverID, content, "text")
}

// SendImage uploads an attachment to the chat images bucket and posts it as
// an image message.
func (uc *MessageUseCase) SendImage(ctx context.Context, senderID, productID, receiverID string, file io.Reader, contentType string) (*entity.Message, error) {
	sender, product, err := uc.prepareSend(ctx, senderID, productID, receiverID)
	if err != nil {
		return nil, err
	}

	imageURL, err := uc.storage.UploadFile(ctx, file, contentType, config.BucketChatImages, senderID)
	if err != nil {
		return nil, err
	}

	message, err := uc.create(ctx, sender, product, receiverID, entity.ImageContent(imageURL), "image")
	if err != nil {
		if delErr := uc.storage.DeleteFile(ctx, imageURL); delErr != nil {
			logger.Warn("SendImage: failed to remove orphan upload %s: %v", imageURL, delErr)
		}
		return nil, err
	}
	return message, nil
}

// DeleteConversation removes the uploaded images of the thread, then the
// messages of both directions. Nothing is rolled back on partial failure.
func (uc *MessageUseCase) DeleteConversation(ctx context.Context, userID, productID, counterpartID string) error {
	if userID == counterpartID {
		return errors.BadRequest("Invalid conversation", nil)
	}

	thread, err := uc.messageRepo.ListThread(ctx, productID, userID, counterpartID)
	if err != nil {
		return err
	}

	var imageURLs []string
	for _, m := range thread {
		if u := m.ImageURL(); u != "" && uc.storage.OwnsFile(u, config.BucketChatImages, m.SenderID) {
			imageURLs = append(imageURLs, u)
		}
	}

	failed := false
	if len(imageURLs) > 0 {
		if err := uc.storage.DeleteFiles(ctx, imageURLs); err != nil {
			logger.Error("DeleteConversation: failed to delete %d images of %s/%s: %v", len(imageURLs), productID, counterpartID, err)
			failed = true
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return uc.messageRepo.DeleteDirection(gctx, productID, userID, counterpartID)
	})
	g.Go(func() error {
		return uc.messageRepo.DeleteDirection(gctx, productID, counterpartID, userID)
	})
	if err := g.Wait(); err != nil {
		logger.Error("DeleteConversation: failed to delete messages of %s/%s: %v", productID, counterpartID, err)
		failed = true
	}

	if uc.notifier != nil {
		uc.notifier.ConversationDeleted(ctx, userID, productID, counterpartID)
	}

	if failed {
		return errors.Internal("Failed to delete conversation", nil)
	}
	return nil
}

// UnreadCount is the global badge of the user.
func (uc *MessageUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if uc.notifier != nil {
		return uc.notifier.UnreadCount(ctx, userID)
	}
	return uc.messageRepo.CountUnread(ctx, userID)
}

func (uc *MessageUseCase) prepareSend(ctx context.Context, senderID, productID, receiverID string) (*entity.Profile, *entity.Product, error) {
	if productID == "" || receiverID == "" {
		return nil, nil, errors.BadRequest("Product and receiver are required", nil)
	}
	if senderID == receiverID {
		return nil, nil, errors.BadRequest("Cannot send a message to yourself", nil)
	}

	if uc.rateLimiter != nil {
		if allowed, wait := uc.rateLimiter.Allow(senderID, ratelimit.ActionSendMessage); !allowed {
			logger.Warn("Send: rate limited %s for %v", senderID, wait)
			return nil, nil, errors.TooManyRequests("Too many messages. Please slow down", wait)
		}
	}

	sender, err := uc.profileRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, nil, err
	}
	if sender.IsBanned {
		return nil, nil, errors.Forbidden("Your account is suspended", nil)
	}

	if _, err := uc.profileRepo.GetByID(ctx, receiverID); err != nil {
		return nil, nil, err
	}

	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, nil, err
	}
	if product.UserID != senderID && product.UserID != receiverID {
		return nil, nil, errors.BadRequest("Conversations must involve the seller of the listing", nil)
	}

	return sender, product, nil
}

func (uc *MessageUseCase) create(ctx context.Context, sender *entity.Profile, product *entity.Product, receiverID, content, kind string) (*entity.Message, error) {
	message := &entity.Message{
		Content:    content,
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		ProductID:  product.ID,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MessagesSent.WithLabelValues(kind).Inc()
	}
	if uc.notifier != nil {
		uc.notifier.MessageCreated(ctx, message, sender, product)
	}
	return message, nil
}

func (uc *MessageUseCase) aggregate(ctx context.Context, userID string, messages []*entity.Message) ([]*entity.Conversation, error) {
	profileIDs := make([]string, 0, len(messages))
	productIDs := make([]string, 0, len(messages))
	for _, m := range messages {
		profileIDs = append(profileIDs, m.CounterpartOf(userID))
		productIDs = append(productIDs, m.ProductID)
	}

	profiles, err := uc.profileRepo.GetByIDs(ctx, profileIDs)
	if err != nil {
		return nil, err
	}
	products, err := uc.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, err
	}

	return service.AggregateConversations(userID, messages, profiles, products), nil
}

// recentTextsFrom returns the contents of the last text messages of sender
// in the thread, oldest first.
func recentTextsFrom(thread []*entity.Message, senderID string) []string {
	texts := make([]string, 0, service.ContactGuardWindow)
	for i := len(thread) - 1; i >= 0 && len(texts) < service.ContactGuardWindow; i-- {
		m := thread[i]
		if m.SenderID != senderID || m.IsImage() {
			continue
		}
		texts = append(texts, m.Content)
	}
	for i, j := 0, len(texts)-1; i < j; i, j = i+1, j-1 {
		texts[i], texts[j] = texts[j], texts[i]
	}
	return texts
}
