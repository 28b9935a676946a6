package usecase

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/pkg/errors"
)

func TestAuthUseCase_SignUpAndVerify(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var code string
	env.auth.On("CreateUser", mock.Anything, "nadia@example.km", "secret123", "Nadia").Return("uid-nadia", nil).Once()
	env.auth.On("SignInWithEmailPassword", mock.Anything, "nadia@example.km", "secret123").
		Return(&entity.AuthTokens{IDToken: "id", RefreshToken: "refresh", ExpiresIn: 3600, UserID: "uid-nadia"}, nil).Once()
	env.mailer.On("SendVerificationCode", mock.Anything, "nadia@example.km", "Nadia", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { code = args.String(3) }).
		Return(nil).Once()

	result, err := env.auths.SignUp(ctx, SignUpInput{
		Email:    " Nadia@Example.km ",
		Password: "secret123",
		FullName: "Nadia",
		Island:   entity.IslandNgazidja,
	})
	require.NoError(t, err)
	assert.Equal(t, "uid-nadia", result.Profile.ID)
	assert.Equal(t, "refresh", result.Tokens.RefreshToken)
	assert.False(t, result.Profile.EmailVerified)
	require.Len(t, code, 6)

	_, err = env.auths.SignUp(ctx, SignUpInput{Email: "nadia@example.km", Password: "secret123", FullName: "Nadia"})
	assert.True(t, errors.Is(err, "CONFLICT"))

	_, err = env.auths.VerifyEmail(ctx, "nadia@example.km", "000000")
	if code != "000000" {
		assert.True(t, errors.Is(err, "BAD_REQUEST"))
	}

	env.auth.On("MarkEmailVerified", mock.Anything, "uid-nadia").Return(nil).Once()
	profile, err := env.auths.VerifyEmail(ctx, "nadia@example.km", code)
	require.NoError(t, err)
	assert.True(t, profile.EmailVerified)

	stored, err := env.repos.Profiles.GetByID(ctx, "uid-nadia")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)

	env.auth.AssertExpectations(t)
	env.mailer.AssertExpectations(t)
}

func TestAuthUseCase_SignUpRollsBackAuthUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "taken", "Taken", false)

	// The profile id already exists, so the profile insert fails.
	env.auth.On("CreateUser", mock.Anything, "new@example.km", "secret123", "New").Return("taken", nil).Once()
	env.auth.On("DeleteUser", mock.Anything, "taken").Return(nil).Once()

	_, err := env.auths.SignUp(ctx, SignUpInput{Email: "new@example.km", Password: "secret123", FullName: "New"})
	require.Error(t, err)
	env.auth.AssertExpectations(t)
}

func TestAuthUseCase_SignIn(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "said", "Said", false)
	banned := env.seedProfile(t, "mallory", "Mallory", false)
	banned.IsBanned = true
	require.NoError(t, env.repos.Profiles.Update(ctx, banned))

	env.auth.On("SignInWithEmailPassword", mock.Anything, "said@example.km", "pw123456").
		Return(&entity.AuthTokens{IDToken: "id", UserID: "said"}, nil)
	env.auth.On("SignInWithEmailPassword", mock.Anything, "mallory@example.km", "pw123456").
		Return(&entity.AuthTokens{IDToken: "id", UserID: "mallory"}, nil)
	env.auth.On("SignInWithEmailPassword", mock.Anything, "said@example.km", "wrong").
		Return(nil, errors.Unauthorized("Invalid email or password", nil))

	result, err := env.auths.SignIn(ctx, "SAID@example.km", "pw123456")
	require.NoError(t, err)
	assert.Equal(t, "Said", result.Profile.FullName)

	_, err = env.auths.SignIn(ctx, "mallory@example.km", "pw123456")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = env.auths.SignIn(ctx, "said@example.km", "wrong")
	assert.True(t, errors.Is(err, "UNAUTHORIZED"))
}

func TestAuthUseCase_PasswordReset(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedProfile(t, "said", "Said", false)

	require.NoError(t, env.auths.ForgotPassword(ctx, "unknown@example.km"))
	env.mailer.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	var resetURL string
	env.mailer.On("SendPasswordReset", mock.Anything, "said@example.km", "Said", mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { resetURL = args.String(3) }).
		Return(nil).Once()
	require.NoError(t, env.auths.ForgotPassword(ctx, "said@example.km"))
	require.True(t, strings.HasPrefix(resetURL, "https://comoresmarket.test/auth/reset?token="))

	parsed, err := url.Parse(resetURL)
	require.NoError(t, err)
	token := parsed.Query().Get("token")

	err = env.auths.ResetPassword(ctx, token, "123")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	err = env.auths.ResetPassword(ctx, "not-a-token", "newsecret")
	assert.True(t, errors.Is(err, "BAD_REQUEST"))

	env.auth.On("UpdateUserPassword", mock.Anything, "said", "newsecret").Return(nil).Once()
	require.NoError(t, env.auths.ResetPassword(ctx, token, "newsecret"))
	env.auth.AssertExpectations(t)
}

func TestAuthUseCase_Session(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	admin := &entity.Profile{ID: "boss", Email: "admin@comoresmarket.test", FullName: "Boss", EmailVerified: true}
	require.NoError(t, env.repos.Profiles.Create(ctx, admin))
	pending := &entity.Profile{ID: "pending", Email: "contact@comoresmarket.test", FullName: "Pending"}
	require.NoError(t, env.repos.Profiles.Create(ctx, pending))
	env.seedProfile(t, "said", "Said", false)

	session, err := env.auths.Session(ctx, "boss")
	require.NoError(t, err)
	assert.True(t, session.IsAdmin)

	session, err = env.auths.Session(ctx, "pending")
	require.NoError(t, err)
	assert.False(t, session.IsAdmin, "allow-listed email not verified yet")

	session, err = env.auths.Session(ctx, "said")
	require.NoError(t, err)
	assert.False(t, session.IsAdmin)
}
