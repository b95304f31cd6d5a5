package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the identity claims embedded in an access token.
type Claims struct {
	UserID   int    `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

var (
	ErrMissingSecretKey = errors.New("jwt: secret key must not be empty")
	ErrMissingIssuer    = errors.New("jwt: issuer must not be empty")
	ErrMissingAudience  = errors.New("jwt: audience must not be empty")
	ErrInvalidToken     = errors.New("jwt: invalid token")
)

// GenerateToken creates an HS256-signed token carrying the user's identity.
// Expiration is chosen by the caller: standard sessions use 8 hours,
// "keep me logged in" sessions 168 hours.
func GenerateToken(userID int, username, email, role string, expirationHours int, secretKey, issuer, audience string) (string, error) {
	if secretKey == "" {
		return "", ErrMissingSecretKey
	}
	if issuer == "" {
		return "", ErrMissingIssuer
	}
	if audience == "" {
		return "", ErrMissingAudience
	}

	now := time.Now()

	claims := Claims{
		UserID:   userID,
		Username: username,
		Email:    email,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(expirationHours) * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

// ValidateToken verifies signature, issuer, audience and expiry, and
// returns the embedded claims. There is no revocation list: a token is
// valid until it expires.
func ValidateToken(tokenString, secretKey, issuer, audience string) (*Claims, error) {
	if secretKey == "" {
		return nil, ErrMissingSecretKey
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
