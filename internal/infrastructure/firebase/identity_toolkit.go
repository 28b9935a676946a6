package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"comoresmarket/internal/domain/entity"
	"comoresmarket/pkg/errors"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// IdentityToolkit calls the Firebase Auth REST API for the password grant
// and token refresh, which the Admin SDK does not expose.
type IdentityToolkit struct {
	apiKey         string
	httpClient     *http.Client
	identityURL    string
	secureTokenURL string
}

func NewIdentityToolkit(apiKey string) *IdentityToolkit {
	return &IdentityToolkit{
		apiKey:         apiKey,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		identityURL:    identityToolkitURL,
		secureTokenURL: secureTokenURL,
	}
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (t *IdentityToolkit) SignInWithPassword(ctx context.Context, email, password string) (*entity.AuthTokens, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.identityURL+"/accounts:signInWithPassword?key="+url.QueryEscape(t.apiKey), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Internal("Failed to build sign-in request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var result struct {
		IDToken      string `json:"idToken"`
		RefreshToken string `json:"refreshToken"`
		ExpiresIn    string `json:"expiresIn"`
		LocalID      string `json:"localId"`
	}
	if err := t.do(req, &result); err != nil {
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(result.ExpiresIn)
	return &entity.AuthTokens{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    expiresIn,
		UserID:       result.LocalID,
	}, nil
}

func (t *IdentityToolkit) Refresh(ctx context.Context, refreshToken string) (*entity.AuthTokens, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.secureTokenURL+"/token?key="+url.QueryEscape(t.apiKey), strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Internal("Failed to build refresh request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
		UserID       string `json:"user_id"`
	}
	if err := t.do(req, &result); err != nil {
		return nil, err
	}

	expiresIn, _ := strconv.Atoi(result.ExpiresIn)
	return &entity.AuthTokens{
		IDToken:      result.IDToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    expiresIn,
		UserID:       result.UserID,
	}, nil
}

func (t *IdentityToolkit) do(req *http.Request, out interface{}) error {
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return errors.Internal("Authentication provider unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr restError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return mapRestError(apiErr.Error.Message, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Internal("Failed to decode authentication response", err)
	}
	return nil
}

// mapRestError turns provider error codes such as "INVALID_PASSWORD" or
// "TOO_MANY_ATTEMPTS_TRY_LATER : ..." into application errors.
func mapRestError(message string, status int) error {
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL":
		return errors.Unauthorized("Invalid email or password", nil)
	case "USER_DISABLED":
		return errors.Forbidden("This account has been suspended", nil)
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND", "INVALID_GRANT_TYPE", "MISSING_REFRESH_TOKEN":
		return errors.Unauthorized("Invalid refresh token", nil)
	case "TOO_MANY_ATTEMPTS_TRY_LATER":
		return errors.TooManyRequests("Too many attempts, try again later", 0)
	default:
		return errors.Internal("Authentication provider error", fmt.Errorf("status %d: %s", status, message))
	}
}
