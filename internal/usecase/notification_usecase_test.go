package usecase

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
)

func TestNotificationUseCase_OnSubscribePushesBadge(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "alice", "Alice", false)
	env.seedProfile(t, "bob", "Bob", false)
	product := env.seedProduct(t, "bob", "Lit")

	_, err := env.messages.Send(ctx, "alice", SendMessageInput{ProductID: product.ID, ReceiverID: "bob", Content: "Bonjour"})
	require.NoError(t, err)
	env.publisher.reset()

	env.notifier.OnSubscribe(ctx, "bob")
	badge, ok := env.publisher.lastUnread("bob")
	require.True(t, ok)
	assert.Equal(t, int64(1), badge)
}

func TestNotificationUseCase_ReadReceipt(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "alice", "Alice", false)
	env.seedProfile(t, "bob", "Bob", false)
	product := env.seedProduct(t, "bob", "Chaise")

	_, err := env.messages.Send(ctx, "alice", SendMessageInput{ProductID: product.ID, ReceiverID: "bob", Content: "Bonjour"})
	require.NoError(t, err)
	env.publisher.reset()

	updated, err := env.messages.MarkConversationRead(ctx, "bob", product.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	changes := env.publisher.of("alice", entity.EventConversationChanged)
	require.Len(t, changes, 1)
	payload := changes[0].Data.(entity.ConversationChangedPayload)
	assert.Equal(t, ChangeReasonRead, payload.Reason)
	assert.Equal(t, "bob", payload.CounterpartID)

	// Nothing left to mark: no event.
	env.publisher.reset()
	_, err = env.messages.MarkConversationRead(ctx, "bob", product.ID, "alice")
	require.NoError(t, err)
	assert.Empty(t, env.publisher.of("alice", entity.EventConversationChanged))
}

func TestNotificationUseCase_MailFailureDoesNotFailSend(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.mailer.ExpectedCalls = nil
	env.mailer.On("SendNewMessage", mock.Anything, mock.Anything).Return(assert.AnError).Once()

	env.seedProfile(t, "alice", "Alice", false)
	env.seedProfile(t, "bob", "Bob", false)
	product := env.seedProduct(t, "bob", "Tapis")

	message, err := env.messages.Send(ctx, "alice", SendMessageInput{ProductID: product.ID, ReceiverID: "bob", Content: "Bonjour"})
	require.NoError(t, err)
	env.notifier.Wait()
	assert.NotEmpty(t, message.ID)
	env.mailer.AssertExpectations(t)
}

func TestNotificationUseCase_ConversationURL(t *testing.T) {
	uc := NewNotificationUseCase(nil, nil, nil, nil, "https://comoresmarket.km")
	got := uc.conversationURL("p 1", "u&2")
	assert.True(t, strings.HasPrefix(got, "https://comoresmarket.km/messages?"))
	assert.Contains(t, got, "product=p+1")
	assert.Contains(t, got, "user=u%262")
}

// gatedMessageRepo holds the first CountUnread call open, after it has read
// the store, until release is closed.
type gatedMessageRepo struct {
	repository.MessageRepository
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (r *gatedMessageRepo) CountUnread(ctx context.Context, receiverID string) (int64, error) {
	count, err := r.MessageRepository.CountUnread(ctx, receiverID)
	first := false
	r.once.Do(func() { first = true })
	if first {
		close(r.entered)
		<-r.release
	}
	return count, err
}

func TestNotificationUseCase_BadgeAfterInsertIgnoresInflightRead(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "alice", "Alice", false)
	env.seedProfile(t, "bob", "Bob", false)
	product := env.seedProduct(t, "bob", "Table basse")

	r := env.repos
	gated := &gatedMessageRepo{MessageRepository: r.Messages, entered: make(chan struct{}), release: make(chan struct{})}
	notifier := NewNotificationUseCase(gated, r.Profiles, env.publisher, env.mailer, env.cfg.PublicBaseURL)
	t.Cleanup(notifier.Wait)
	messages := NewMessageUseCase(r.Messages, r.Profiles, r.Products, env.storage, notifier, nil, env.metrics)

	stale := make(chan int64, 1)
	go func() {
		count, _ := notifier.UnreadCount(ctx, "bob")
		stale <- count
	}()
	<-gated.entered

	sent := make(chan error, 1)
	go func() {
		_, err := messages.Send(ctx, "alice", SendMessageInput{ProductID: product.ID, ReceiverID: "bob", Content: "Bonjour"})
		sent <- err
	}()

	var err error
	select {
	case err = <-sent:
		close(gated.release)
	case <-time.After(2 * time.Second):
		close(gated.release)
		err = <-sent
	}
	require.NoError(t, err)
	assert.Equal(t, int64(0), <-stale)

	badge, ok := env.publisher.lastUnread("bob")
	require.True(t, ok)
	assert.Equal(t, int64(1), badge)
}
