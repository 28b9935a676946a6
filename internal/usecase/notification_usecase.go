package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/domain/service"
	"comoresmarket/pkg/logger"
)

const (
	// MessagesRoutePrefix is the front-end route where toasts are muted.
	MessagesRoutePrefix = "/messages"

	ChangeReasonNewMessage = "new_message"
	ChangeReasonRead       = "read"
	ChangeReasonDeleted    = "deleted"

	mailTimeout = 15 * time.Second
)

// NotificationUseCase keeps badges, toasts and conversation lists of
// connected clients in sync with the message store, and emails receivers.
type NotificationUseCase struct {
	messageRepo repository.MessageRepository
	profileRepo repository.ProfileRepository
	publisher   RealtimePublisher
	mailer      service.MailService
	baseURL     string

	unread singleflight.Group
	mails  sync.WaitGroup
}

func NewNotificationUseCase(
	messageRepo repository.MessageRepository,
	profileRepo repository.ProfileRepository,
	publisher RealtimePublisher,
	mailer service.MailService,
	baseURL string,
) *NotificationUseCase {
	return &NotificationUseCase{
		messageRepo: messageRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
		mailer:      mailer,
		baseURL:     baseURL,
	}
}

// UnreadCount returns the number of unread messages addressed to userID.
// Concurrent reads for the same user share one store query.
func (uc *NotificationUseCase) UnreadCount(ctx context.Context, userID string) (int64, error) {
	v, err, _ := uc.unread.Do(userID, func() (interface{}, error) {
		return uc.messageRepo.CountUnread(ctx, userID)
	})
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

// PushUnreadCount refetches the badge of userID and publishes it. It runs
// after writes, so it never joins a read that may predate them.
func (uc *NotificationUseCase) PushUnreadCount(ctx context.Context, userID string) error {
	uc.unread.Forget(userID)
	count, err := uc.messageRepo.CountUnread(ctx, userID)
	if err != nil {
		return err
	}
	uc.publish(userID, entity.NewRealtimeEvent(entity.EventUnreadCount, entity.UnreadCountPayload{Count: count}))
	return nil
}

// OnSubscribe pushes the current badge to a freshly connected client.
func (uc *NotificationUseCase) OnSubscribe(ctx context.Context, userID string) {
	if err := uc.PushUnreadCount(ctx, userID); err != nil {
		logger.Warn("OnSubscribe: failed to push unread count to %s: %v", userID, err)
	}
}

// MessageCreated notifies the receiver of a new message: badge, toast,
// conversation list invalidation and email. The sender's other sessions
// get the invalidation too.
func (uc *NotificationUseCase) MessageCreated(ctx context.Context, message *entity.Message, sender *entity.Profile, product *entity.Product) {
	if err := uc.PushUnreadCount(ctx, message.ReceiverID); err != nil {
		logger.Warn("MessageCreated: failed to refresh unread count of %s: %v", message.ReceiverID, err)
	}

	toast := entity.NewRealtimeEvent(entity.EventMessageNew, entity.MessageToastPayload{
		MessageID: message.ID,
		ProductID: message.ProductID,
		SenderID:  message.SenderID,
		Sender:    sender.Summary(),
		Body:      message.Preview(),
		CreatedAt: message.CreatedAt,
	})
	toast.SkipRoutePrefix = MessagesRoutePrefix
	uc.publish(message.ReceiverID, toast)

	uc.conversationChanged(message.ReceiverID, message.ProductID, message.SenderID, ChangeReasonNewMessage)
	uc.conversationChanged(message.SenderID, message.ProductID, message.ReceiverID, ChangeReasonNewMessage)

	uc.sendMessageMail(ctx, message, sender, product)
}

// MessagesRead refreshes the reader's badge and tells the counterpart its
// messages were read.
func (uc *NotificationUseCase) MessagesRead(ctx context.Context, readerID, productID, counterpartID string) {
	if err := uc.PushUnreadCount(ctx, readerID); err != nil {
		logger.Warn("MessagesRead: failed to refresh unread count of %s: %v", readerID, err)
	}
	uc.conversationChanged(counterpartID, productID, readerID, ChangeReasonRead)
	uc.conversationChanged(readerID, productID, counterpartID, ChangeReasonRead)
}

// ConversationDeleted invalidates the thread for both participants.
func (uc *NotificationUseCase) ConversationDeleted(ctx context.Context, userID, productID, counterpartID string) {
	for _, id := range []string{userID, counterpartID} {
		if err := uc.PushUnreadCount(ctx, id); err != nil {
			logger.Warn("ConversationDeleted: failed to refresh unread count of %s: %v", id, err)
		}
	}
	uc.conversationChanged(userID, productID, counterpartID, ChangeReasonDeleted)
	uc.conversationChanged(counterpartID, productID, userID, ChangeReasonDeleted)
}

// Wait blocks until pending emails are sent.
func (uc *NotificationUseCase) Wait() {
	uc.mails.Wait()
}

func (uc *NotificationUseCase) conversationChanged(userID, productID, counterpartID, reason string) {
	uc.publish(userID, entity.NewRealtimeEvent(entity.EventConversationChanged, entity.ConversationChangedPayload{
		ProductID:     productID,
		CounterpartID: counterpartID,
		Reason:        reason,
	}))
}

func (uc *NotificationUseCase) publish(userID string, event entity.RealtimeEvent) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.Publish(entity.UserTopic(userID), event)
}

func (uc *NotificationUseCase) sendMessageMail(ctx context.Context, message *entity.Message, sender *entity.Profile, product *entity.Product) {
	if uc.mailer == nil {
		return
	}

	// The request context ends with the HTTP response, the email must not.
	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
	uc.mails.Add(1)
	go func() {
		defer uc.mails.Done()
		defer cancel()

		receiver, err := uc.profileRepo.GetByID(mailCtx, message.ReceiverID)
		if err != nil {
			logger.Warn("MessageCreated: receiver %s lookup failed, email skipped: %v", message.ReceiverID, err)
			return
		}
		if receiver.Email == "" {
			return
		}

		mail := service.NewMessageMail{
			To:              receiver.Email,
			RecipientName:   receiver.FullName,
			Preview:         message.Preview(),
			ConversationURL: uc.conversationURL(message.ProductID, message.SenderID),
		}
		if sender != nil {
			mail.SenderName = sender.FullName
		}
		if product != nil {
			mail.ProductTitle = product.Title
		}

		if err := uc.mailer.SendNewMessage(mailCtx, mail); err != nil {
			logger.Error("MessageCreated: failed to email %s about message %s: %v", receiver.ID, message.ID, err)
		}
	}()
}

func (uc *NotificationUseCase) conversationURL(productID, counterpartID string) string {
	query := url.Values{}
	query.Set("product", productID)
	query.Set("user", counterpartID)
	return fmt.Sprintf("%s%s?%s", uc.baseURL, MessagesRoutePrefix, query.Encode())
}
