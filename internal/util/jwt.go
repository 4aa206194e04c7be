package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ProfileClaims is the payload of a profile token. The subject is the profile id.
type ProfileClaims struct {
	jwt.RegisteredClaims
}

// GenerateProfileToken signs a token that binds a browser to its profile.
func GenerateProfileToken(secret, issuer, profileID string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("profile token secret is empty")
	}
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	now := time.Now()
	claims := &ProfileClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   profileID,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseProfileToken verifies signature, expiry and issuer and returns the profile id.
func ParseProfileToken(secret, issuer, tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenStr, &ProfileClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("parse profile token: %w", err)
	}

	claims, ok := token.Claims.(*ProfileClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", jwt.ErrTokenInvalidClaims
	}
	return claims.Subject, nil
}
