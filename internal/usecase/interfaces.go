package usecase

import (
	"context"
	"time"

	"comoresmarket/internal/domain/entity"
)

type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (*entity.TokenInfo, error)
	SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.AuthTokens, error)
	RefreshIdToken(ctx context.Context, refreshToken string) (*entity.AuthTokens, error)
	UpdateUserPassword(ctx context.Context, uid, newPassword string) error
	MarkEmailVerified(ctx context.Context, uid string) error
	SetDisabled(ctx context.Context, uid string, disabled bool) error
	DeleteUser(ctx context.Context, uid string) error
}

// RealtimePublisher fans events out to websocket subscribers of a topic.
type RealtimePublisher interface {
	Publish(topic string, event entity.RealtimeEvent) int
}

type RateLimiter interface {
	Allow(subject, action string) (bool, time.Duration)
}
