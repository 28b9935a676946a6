package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"comoresmarket/internal/adapter/api"
	"comoresmarket/internal/adapter/api/handler"
	apimiddleware "comoresmarket/internal/adapter/api/middleware"
	"comoresmarket/internal/adapter/api/router"
	"comoresmarket/internal/adapter/repository"
	"comoresmarket/internal/infrastructure/firebase"
	"comoresmarket/internal/infrastructure/mail"
	"comoresmarket/internal/infrastructure/metrics"
	"comoresmarket/internal/infrastructure/ratelimit"
	"comoresmarket/internal/infrastructure/security"
	"comoresmarket/internal/infrastructure/storage"
	"comoresmarket/internal/infrastructure/websocket"
	"comoresmarket/internal/usecase"
	"comoresmarket/pkg/config"
	"comoresmarket/pkg/logger"
)

const (
	verificationCodePeriod = 10 * time.Minute
	resetTokenTTL          = 30 * time.Minute
	shutdownTimeout        = 15 * time.Second
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Setup(cfg.Environment)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opt, err := credentials(cfg)
	if err != nil {
		log.Fatalf("Failed to load Firebase credentials: %v", err)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase: %v", err)
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize Firebase Auth: %v", err)
	}
	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient, firebase.NewIdentityToolkit(cfg.FirebaseApiKey))

	repos, healthCheck, closeStore, err := openRepositories(ctx, cfg, opt)
	if err != nil {
		log.Fatalf("Failed to open %s backend: %v", cfg.DataBackend, err)
	}
	defer closeStore()

	storageClient, err := storage.NewCloudStorageClient(
		ctx,
		cfg.StorageBucket,
		[]string{config.BucketAvatars, config.BucketProducts, config.BucketChatImages},
		opt,
	)
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer storageClient.Close()

	m := metrics.New()

	var sender mail.Sender
	if cfg.ResendApiKey != "" {
		sender = mail.NewResendSender(cfg.ResendApiKey)
	} else {
		logger.Warn("RESEND_API_KEY not set, emails will only be logged")
		sender = mail.NewLogSender()
	}
	mailer, err := mail.NewMailer(sender, cfg.MailFrom, cfg.PublicBaseURL, m)
	if err != nil {
		log.Fatalf("Failed to initialize mailer: %v", err)
	}

	rateLimiter := ratelimit.NewRateLimiter(nil)
	rateLimiter.StartCleanupRoutine(ctx)

	wsManager := websocket.NewManager(m)

	notificationUseCase := usecase.NewNotificationUseCase(repos.Messages, repos.Profiles, wsManager, mailer, cfg.PublicBaseURL)
	messageUseCase := usecase.NewMessageUseCase(repos.Messages, repos.Profiles, repos.Products, storageClient, notificationUseCase, rateLimiter, m)
	wsManager.SetHandlers(messageUseCase, notificationUseCase)

	listingUseCase := usecase.NewListingUseCase(
		repos.Products,
		repos.Profiles,
		repos.Favorites,
		repos.Views,
		repos.Reports,
		repos.Messages,
		storageClient,
		rateLimiter,
		cfg.Quotas,
	)
	profileUseCase := usecase.NewProfileUseCase(
		repos.Profiles,
		repos.Products,
		repos.Messages,
		repos.Favorites,
		repos.Views,
		repos.Reports,
		listingUseCase,
		storageClient,
		firebaseAuthClient,
		cfg,
	)
	authUseCase := usecase.NewAuthUseCase(
		repos.Profiles,
		firebaseAuthClient,
		mailer,
		security.NewCodeIssuer(cfg.AuthSecret, verificationCodePeriod),
		security.NewResetTokenIssuer(cfg.AuthSecret, resetTokenTTL, "comoresmarket"),
		rateLimiter,
		cfg,
	)

	handler.Setup(handler.Dependencies{
		BaseContext:    ctx,
		Auth:           authUseCase,
		Listings:       listingUseCase,
		Profiles:       profileUseCase,
		Favorites:      usecase.NewFavoriteUseCase(repos.Favorites, repos.Products),
		Messages:       messageUseCase,
		Admin:          usecase.NewAdminUseCase(repos.Profiles, repos.Products, repos.Reports, listingUseCase, firebaseAuthClient),
		Seo:            usecase.NewSeoUseCase(repos.Products, cfg.PublicBaseURL),
		Storage:        storageClient,
		Realtime:       wsManager,
		Admins:         cfg,
		AllowedOrigins: cfg.CORSAllowOrigins,
		HealthChecks: map[string]handler.HealthCheck{
			cfg.DataBackend: healthCheck,
		},
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
	}))
	e.Use(m.Middleware())

	e.Validator = api.NewValidator()

	router.Setup(e, router.Middlewares{
		Auth:      apimiddleware.NewAuthMiddleware(firebaseAuthClient),
		Admin:     apimiddleware.NewAdminMiddleware(repos.Profiles, cfg),
		RateLimit: apimiddleware.NewRateLimitMiddleware(rateLimiter),
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
	notificationUseCase.Wait()
}

// credentials prefers the inline service account JSON (production) over the
// key file path (local development).
func credentials(cfg *config.Config) (option.ClientOption, error) {
	if cfg.FirebaseServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		return option.WithCredentialsJSON([]byte(cfg.FirebaseServiceAccountJSON)), nil
	}

	path := cfg.FirebaseServiceAccountPath
	if path == "" {
		path = "./firebase-service-account.json"
	}
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	logger.Info("Using Firebase service account from file: %s", path)
	return option.WithCredentialsFile(path), nil
}

// openRepositories connects the configured data backend and returns its
// stores, a liveness probe and a closer.
func openRepositories(ctx context.Context, cfg *config.Config, opt option.ClientOption) (*repository.Repositories, handler.HealthCheck, func(), error) {
	switch cfg.DataBackend {
	case "mysql", "sqlite":
		db, err := repository.OpenDatabase(cfg.DataBackend, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, err
		}
		closer := func() {
			if err := sqlDB.Close(); err != nil {
				logger.Warn("Failed to close database: %v", err)
			}
		}
		return repository.NewGormRepositories(db), sqlDB.PingContext, closer, nil

	default:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			return nil, nil, nil, err
		}
		check := func(ctx context.Context) error {
			_, err := client.Collection("profiles").Limit(1).Documents(ctx).Next()
			if err != nil && !errors.Is(err, iterator.Done) {
				return err
			}
			return nil
		}
		closer := func() {
			if err := client.Close(); err != nil {
				logger.Warn("Failed to close Firestore client: %v", err)
			}
		}
		return repository.NewFirestoreRepositories(client), check, closer, nil
	}
}
