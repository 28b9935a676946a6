package entity

// AuthTokens is the session handed to clients after sign-in or refresh.
type AuthTokens struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	UserID       string `json:"user_id"`
}

// TokenInfo is what a verified ID token tells about its bearer.
type TokenInfo struct {
	UID           string
	Email         string
	EmailVerified bool
}
