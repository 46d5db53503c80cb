// Package auth issues and verifies the session tokens handed to families
// at login on the portal.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// FamilyClaims is the token payload for a logged-in family member.
type FamilyClaims struct {
	FamilleID  int64  `json:"famille_id"`
	ResidentID int64  `json:"resident_id"`
	Email      string `json:"email"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies family session tokens with an HMAC secret.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer. ttl bounds the token lifetime.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed session token for the family.
func (t *TokenIssuer) Issue(familleID, residentID int64, email string) (string, error) {
	now := time.Now()
	claims := FamilyClaims{
		FamilleID:  familleID,
		ResidentID: residentID,
		Email:      email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("famille:%d", familleID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token.
func (t *TokenIssuer) Verify(tokenString string) (*FamilyClaims, error) {
	claims := &FamilyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

// RequireFamily is an echo middleware validating the Authorization bearer
// token and storing the claims under "famille_claims".
func RequireFamily(issuer *TokenIssuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}
			claims, err := issuer.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid session token")
			}
			c.Set("famille_claims", claims)
			return next(c)
		}
	}
}

// ClaimsFromContext retrieves family claims stored by RequireFamily.
func ClaimsFromContext(c echo.Context) *FamilyClaims {
	claims, _ := c.Get("famille_claims").(*FamilyClaims)
	return claims
}
