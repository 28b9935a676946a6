package firebase

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/pkg/errors"
)

type FirebaseAuthClient struct {
	client   *auth.Client
	identity *IdentityToolkit
}

func NewFirebaseAuthClient(client *auth.Client, identity *IdentityToolkit) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client:   client,
		identity: identity,
	}
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName).
		EmailVerified(false)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", errors.Conflict("Email already in use")
		}
		return "", errors.Internal("Failed to create user in authentication provider", err)
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*entity.TokenInfo, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, errors.Unauthorized("Invalid or expired token", err)
	}

	info := &entity.TokenInfo{UID: result.UID}
	if email, ok := result.Claims["email"].(string); ok {
		info.Email = strings.ToLower(email)
	}
	if verified, ok := result.Claims["email_verified"].(bool); ok {
		info.EmailVerified = verified
	}
	return info, nil
}

func (f *FirebaseAuthClient) SignInWithEmailPassword(ctx context.Context, email, password string) (*entity.AuthTokens, error) {
	return f.identity.SignInWithPassword(ctx, email, password)
}

func (f *FirebaseAuthClient) RefreshIdToken(ctx context.Context, refreshToken string) (*entity.AuthTokens, error) {
	return f.identity.Refresh(ctx, refreshToken)
}

func (f *FirebaseAuthClient) UpdateUserPassword(ctx context.Context, uid, newPassword string) error {
	params := (&auth.UserToUpdate{}).
		Password(newPassword)

	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		return errors.Internal("Failed to update password", err)
	}
	return nil
}

func (f *FirebaseAuthClient) MarkEmailVerified(ctx context.Context, uid string) error {
	params := (&auth.UserToUpdate{}).
		EmailVerified(true)

	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		return errors.Internal("Failed to mark email as verified", err)
	}
	return nil
}

// SetDisabled blocks or restores sign-in and revokes live sessions of a
// disabled user.
func (f *FirebaseAuthClient) SetDisabled(ctx context.Context, uid string, disabled bool) error {
	params := (&auth.UserToUpdate{}).
		Disabled(disabled)

	if _, err := f.client.UpdateUser(ctx, uid, params); err != nil {
		return errors.Internal("Failed to update user status", err)
	}
	if disabled {
		if err := f.client.RevokeRefreshTokens(ctx, uid); err != nil {
			return errors.Internal("Failed to revoke user sessions", err)
		}
	}
	return nil
}

func (f *FirebaseAuthClient) DeleteUser(ctx context.Context, uid string) error {
	if err := f.client.DeleteUser(ctx, uid); err != nil && !auth.IsUserNotFound(err) {
		return errors.Internal("Failed to delete user", err)
	}
	return nil
}
