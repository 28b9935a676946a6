package usecase

import (
	"context"
	"net/url"
	"strings"
	"unicode/utf8"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/internal/domain/repository"
	"comoresmarket/internal/domain/service"
	"comoresmarket/internal/infrastructure/ratelimit"
	"comoresmarket/internal/infrastructure/security"
	"comoresmarket/pkg/config"
	"comoresmarket/pkg/errors"
	"comoresmarket/pkg/logger"
)

const (
	purposeVerifyEmail = "verify_email"
	minPasswordLength  = 6
)

type AuthUseCase struct {
	profileRepo  repository.ProfileRepository
	firebaseAuth FirebaseAuthClient
	mailer       service.MailService
	codes        *security.CodeIssuer
	resetTokens  *security.ResetTokenIssuer
	rateLimiter  RateLimiter
	config       *config.Config
}

func NewAuthUseCase(
	profileRepo repository.ProfileRepository,
	firebaseAuth FirebaseAuthClient,
	mailer service.MailService,
	codes *security.CodeIssuer,
	resetTokens *security.ResetTokenIssuer,
	rateLimiter RateLimiter,
	cfg *config.Config,
) *AuthUseCase {
	return &AuthUseCase{
		profileRepo:  profileRepo,
		firebaseAuth: firebaseAuth,
		mailer:       mailer,
		codes:        codes,
		resetTokens:  resetTokens,
		rateLimiter:  rateLimiter,
		config:       cfg,
	}
}

type SignUpInput struct {
	Email    string
	Password string
	FullName string
	Island   string
	City     string
}

type AuthResult struct {
	Profile *entity.Profile    `json:"profile"`
	Tokens  *entity.AuthTokens `json:"tokens"`
}

type Session struct {
	Profile *entity.Profile `json:"profile"`
	IsAdmin bool            `json:"is_admin"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (uc *AuthUseCase) limit(subject, action string) error {
	if uc.rateLimiter == nil {
		return nil
	}
	if allowed, wait := uc.rateLimiter.Allow(subject, action); !allowed {
		return errors.TooManyRequests("Too many attempts. Please try again later", wait)
	}
	return nil
}

// SignUp creates the authentication account and the profile, emails a
// verification code and opens a session.
func (uc *AuthUseCase) SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	if err := uc.limit(email, ratelimit.ActionAuth); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		return nil, errors.BadRequest("Password must be at least 6 characters", nil)
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, errors.BadRequest("Full name is required", nil)
	}
	if input.Island != "" && !entity.IsIsland(input.Island) {
		return nil, errors.BadRequest("Unknown island", nil)
	}

	if _, err := uc.profileRepo.GetByEmail(ctx, email); err == nil {
		return nil, errors.Conflict("Email already in use")
	} else if !errors.IsNotFound(err) {
		return nil, err
	}

	uid, err := uc.firebaseAuth.CreateUser(ctx, email, input.Password, fullName)
	if err != nil {
		return nil, err
	}

	profile := &entity.Profile{
		ID:       uid,
		Email:    email,
		FullName: fullName,
		Island:   input.Island,
		City:     strings.TrimSpace(input.City),
	}
	if err := uc.profileRepo.Create(ctx, profile); err != nil {
		if delErr := uc.firebaseAuth.DeleteUser(ctx, uid); delErr != nil {
			logger.Error("SignUp: failed to roll back auth user %s: %v", uid, delErr)
		}
		return nil, err
	}

	uc.sendVerificationCode(ctx, profile)

	tokens, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, input.Password)
	if err != nil {
		return nil, err
	}

	logger.Info("SignUp: account %s created", uid)
	return &AuthResult{Profile: profile, Tokens: tokens}, nil
}

func (uc *AuthUseCase) sendVerificationCode(ctx context.Context, profile *entity.Profile) {
	code := uc.codes.Generate(profile.ID, purposeVerifyEmail)
	if err := uc.mailer.SendVerificationCode(ctx, profile.Email, profile.FullName, code); err != nil {
		logger.Error("Failed to send verification code to %s: %v", profile.ID, err)
	}
}

// VerifyEmail checks the emailed code and flags the address as verified.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, email, code string) (*entity.Profile, error) {
	email = normalizeEmail(email)
	if err := uc.limit(email, ratelimit.ActionAuth); err != nil {
		return nil, err
	}

	profile, err := uc.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.BadRequest("Invalid or expired code", nil)
		}
		return nil, err
	}
	if profile.EmailVerified {
		return profile, nil
	}

	if !uc.codes.Verify(profile.ID, purposeVerifyEmail, strings.TrimSpace(code)) {
		return nil, errors.BadRequest("Invalid or expired code", nil)
	}

	if err := uc.firebaseAuth.MarkEmailVerified(ctx, profile.ID); err != nil {
		return nil, err
	}
	profile.EmailVerified = true
	if err := uc.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ResendVerification emails a fresh code. Unknown or verified addresses
// are answered the same way.
func (uc *AuthUseCase) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := uc.limit(email, ratelimit.ActionVerifyResend); err != nil {
		return err
	}

	profile, err := uc.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !profile.EmailVerified {
		uc.sendVerificationCode(ctx, profile)
	}
	return nil
}

func (uc *AuthUseCase) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if err := uc.limit(email, ratelimit.ActionAuth); err != nil {
		return nil, err
	}

	tokens, err := uc.firebaseAuth.SignInWithEmailPassword(ctx, email, password)
	if err != nil {
		logger.Info("SignIn failed for %s: %v", email, err)
		return nil, err
	}

	profile, err := uc.profileRepo.GetByID(ctx, tokens.UserID)
	if err != nil {
		return nil, err
	}
	if profile.IsBanned {
		return nil, errors.Forbidden("Your account is suspended", nil)
	}

	return &AuthResult{Profile: profile, Tokens: tokens}, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*entity.AuthTokens, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, errors.BadRequest("Refresh token is required", nil)
	}
	return uc.firebaseAuth.RefreshIdToken(ctx, refreshToken)
}

// ForgotPassword emails a reset link. Unknown addresses get the same answer
// as known ones.
func (uc *AuthUseCase) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := uc.limit(email, ratelimit.ActionVerifyResend); err != nil {
		return err
	}

	profile, err := uc.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			logger.Debug("ForgotPassword: unknown email")
			return nil
		}
		return err
	}

	token, err := uc.resetTokens.Issue(profile.ID, profile.Email)
	if err != nil {
		return errors.Internal("Failed to issue reset link", err)
	}
	resetURL := uc.config.PublicBaseURL + "/auth/reset?token=" + url.QueryEscape(token)

	if err := uc.mailer.SendPasswordReset(ctx, profile.Email, profile.FullName, resetURL); err != nil {
		return errors.Internal("Failed to send reset email", err)
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		return errors.BadRequest("Password must be at least 6 characters", nil)
	}

	claims, err := uc.resetTokens.Parse(token)
	if err != nil {
		return errors.BadRequest("Invalid or expired reset link", err)
	}

	if err := uc.firebaseAuth.UpdateUserPassword(ctx, claims.Subject, newPassword); err != nil {
		return err
	}
	logger.Info("ResetPassword: password changed for %s", claims.Subject)
	return nil
}

// Session describes the signed-in user.
func (uc *AuthUseCase) Session(ctx context.Context, userID string) (*Session, error) {
	profile, err := uc.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &Session{
		Profile: profile,
		IsAdmin: profile.EmailVerified && uc.config.IsAdminEmail(profile.Email),
	}, nil
}
