package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	adapterrepo "comoresmarket/internal/adapter/repository"
	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/service"
	"comoresmarket/internal/infrastructure/metrics"
	"comoresmarket/internal/infrastructure/security"
	"comoresmarket/pkg/config"
)

// fakeStorage keeps uploaded objects in memory.
type fakeStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	seq       int
	deleteErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

// storedURL is where fakeStorage keeps name for owner in bucket.
func storedURL(bucket, owner, name string) string {
	return "https://storage.test/" + bucket + "/" + owner + "/" + name
}

// photo is a product photo URL inside the owner's folder.
func photo(owner, name string) string {
	return storedURL("products", owner, name+".jpg")
}

func (s *fakeStorage) UploadFile(_ context.Context, file io.Reader, contentType, bucket, ownerID string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	url := storedURL(bucket, ownerID, fmt.Sprintf("%d.jpg", s.seq))
	s.objects[url] = data
	return url, nil
}

func (s *fakeStorage) put(url string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[url] = []byte("img")
	return url
}

func (s *fakeStorage) OwnsFile(url, bucket, ownerID string) bool {
	return ownerID != "" && strings.HasPrefix(url, storedURL(bucket, ownerID, ""))
}

func (s *fakeStorage) DeleteFile(ctx context.Context, url string) error {
	return s.DeleteFiles(ctx, []string{url})
}

func (s *fakeStorage) DeleteFiles(_ context.Context, urls []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for _, u := range urls {
		delete(s.objects, u)
	}
	return nil
}

func (s *fakeStorage) Close() error { return nil }

func (s *fakeStorage) exists(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[url]
	return ok
}

func (s *fakeStorage) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendNewMessage(ctx context.Context, mail service.NewMessageMail) error {
	return m.Called(ctx, mail).Error(0)
}

func (m *mockMailer) SendVerificationCode(ctx context.Context, to, name, code string) error {
	return m.Called(ctx, to, name, code).Error(0)
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, to, name, resetURL string) error {
	return m.Called(ctx, to, name, resetURL).Error(0)
}

type mockAuthClient struct {
	mock.Mock
}

func (m *mockAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	args := m.Called(ctx, email, password, displayName)
	return args.String(0), args.Error(1)
}

func (m *mockAuthClient) VerifyToken(ctx context.Context, token string) (*entity.TokenInfo, error) {
	args := m.Called(ctx, token)
	info, _ := args.Get(0).(*entity.TokenInfo)
	return info, args.Error(1)
}

func (m *mockAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.AuthTokens, error) {
	args := m.Called(ctx, email, password)
	tokens, _ := args.Get(0).(*entity.AuthTokens)
	return tokens, args.Error(1)
}

func (m *mockAuthClient) RefreshIdToken(ctx context.Context, refreshToken string) (*entity.AuthTokens, error) {
	args := m.Called(ctx, refreshToken)
	tokens, _ := args.Get(0).(*entity.AuthTokens)
	return tokens, args.Error(1)
}

func (m *mockAuthClient) UpdateUserPassword(ctx context.Context, uid, newPassword string) error {
	return m.Called(ctx, uid, newPassword).Error(0)
}

func (m *mockAuthClient) MarkEmailVerified(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockAuthClient) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	return m.Called(ctx, uid, disabled).Error(0)
}

func (m *mockAuthClient) DeleteUser(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

// recordingPublisher stores every published event per topic.
type recordingPublisher struct {
	mu     sync.Mutex
	events map[string][]entity.RealtimeEvent
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{events: make(map[string][]entity.RealtimeEvent)}
}

func (p *recordingPublisher) Publish(topic string, event entity.RealtimeEvent) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events[topic] = append(p.events[topic], event)
	return 1
}

func (p *recordingPublisher) of(userID, eventType string) []entity.RealtimeEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []entity.RealtimeEvent
	for _, e := range p.events[entity.UserTopic(userID)] {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// lastUnread returns the last badge value pushed to the user.
func (p *recordingPublisher) lastUnread(userID string) (int64, bool) {
	events := p.of(userID, entity.EventUnreadCount)
	if len(events) == 0 {
		return 0, false
	}
	return events[len(events)-1].Data.(entity.UnreadCountPayload).Count, true
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = make(map[string][]entity.RealtimeEvent)
}

type testEnv struct {
	repos     *adapterrepo.Repositories
	storage   *fakeStorage
	mailer    *mockMailer
	auth      *mockAuthClient
	publisher *recordingPublisher
	metrics   *metrics.Metrics
	cfg       *config.Config

	notifier  *NotificationUseCase
	messages  *MessageUseCase
	listings  *ListingUseCase
	favorites *FavoriteUseCase
	profiles  *ProfileUseCase
	admin     *AdminUseCase
	auths     *AuthUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := adapterrepo.OpenDatabase("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	env := &testEnv{
		repos:     adapterrepo.NewGormRepositories(db),
		storage:   newFakeStorage(),
		mailer:    &mockMailer{},
		auth:      &mockAuthClient{},
		publisher: newRecordingPublisher(),
		metrics:   metrics.New(),
		cfg: &config.Config{
			PublicBaseURL: "https://comoresmarket.test",
			AdminEmails:   []string{"admin@comoresmarket.test", "contact@comoresmarket.test"},
			Quotas: config.Quotas{
				FreeMaxListings: 2,
				FreeMaxPhotos:   3,
				ProMaxListings:  5,
				ProMaxPhotos:    6,
			},
			ProPriceKMF:       5000,
			ProWhatsappNumber: "+2693000000",
		},
	}
	env.mailer.On("SendNewMessage", mock.Anything, mock.Anything).Return(nil).Maybe()

	r := env.repos
	env.notifier = NewNotificationUseCase(r.Messages, r.Profiles, env.publisher, env.mailer, env.cfg.PublicBaseURL)
	t.Cleanup(env.notifier.Wait)

	env.messages = NewMessageUseCase(r.Messages, r.Profiles, r.Products, env.storage, env.notifier, nil, env.metrics)
	env.listings = NewListingUseCase(r.Products, r.Profiles, r.Favorites, r.Views, r.Reports, r.Messages, env.storage, nil, env.cfg.Quotas)
	env.favorites = NewFavoriteUseCase(r.Favorites, r.Products)
	env.profiles = NewProfileUseCase(r.Profiles, r.Products, r.Messages, r.Favorites, r.Views, r.Reports, env.listings, env.storage, env.auth, env.cfg)
	env.admin = NewAdminUseCase(r.Profiles, r.Products, r.Reports, env.listings, env.auth)
	env.auths = NewAuthUseCase(r.Profiles, env.auth, env.mailer,
		security.NewCodeIssuer("test-secret", 10*time.Minute),
		security.NewResetTokenIssuer("test-secret", 30*time.Minute, "comoresmarket"),
		nil, env.cfg)
	return env
}

func (env *testEnv) seedProfile(t *testing.T, id, name string, isPro bool) *entity.Profile {
	t.Helper()
	profile := &entity.Profile{
		ID:       id,
		Email:    id + "@example.km",
		FullName: name,
		IsPro:    isPro,
		Island:   entity.IslandNgazidja,
	}
	require.NoError(t, env.repos.Profiles.Create(context.Background(), profile))
	return profile
}

func (env *testEnv) seedProduct(t *testing.T, ownerID, title string) *entity.Product {
	t.Helper()
	product := &entity.Product{
		Title:          title,
		Price:          150000,
		Images:         entity.ImageList{env.storage.put(photo(ownerID, strings.ReplaceAll(title, " ", "-")))},
		CategoryID:     "electronique",
		LocationIsland: entity.IslandNgazidja,
		UserID:         ownerID,
		WhatsappNumber: "+2693320000",
	}
	require.NoError(t, env.repos.Products.Create(context.Background(), product))
	return product
}
