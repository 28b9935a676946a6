package security

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const passwordResetAudience = "password-reset"

type ResetClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// ResetTokenIssuer signs short-lived password reset tokens.
type ResetTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewResetTokenIssuer(secret string, ttl time.Duration, issuer string) *ResetTokenIssuer {
	return &ResetTokenIssuer{secret: []byte(secret), ttl: ttl, issuer: issuer}
}

func (t *ResetTokenIssuer) Issue(userID, email string) (string, error) {
	now := time.Now()
	claims := ResetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{passwordResetAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, nil
}

func (t *ResetTokenIssuer) Parse(token string) (*ResetClaims, error) {
	claims := &ResetClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid reset token")
	}
	if !claims.VerifyAudience(passwordResetAudience, true) {
		return nil, fmt.Errorf("reset token has the wrong audience")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("reset token has no subject")
	}
	return claims, nil
}
