package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/openvote/voting-system/internal/core/domain"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 30 * 24 * time.Hour
)

// tokenClaims is the wire shape of both token kinds. The jti (RegisteredClaims.ID)
// is a fresh UUID per token so two tokens issued in the same instant are
// never bit-identical.
type tokenClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 tokens. Access and refresh tokens use
// distinct secrets: compromise of one does not compromise the other.
type TokenCodec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

func NewTokenCodec(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenCodec {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenCodec{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

func (c *TokenCodec) secret(kind domain.TokenKind) []byte {
	if kind == domain.TokenRefresh {
		return c.refreshSecret
	}
	return c.accessSecret
}

func (c *TokenCodec) ttl(kind domain.TokenKind) time.Duration {
	if kind == domain.TokenRefresh {
		return c.refreshTTL
	}
	return c.accessTTL
}

// Sign issues a token of the given kind embedding the identity claims.
func (c *TokenCodec) Sign(claims domain.TokenClaims, kind domain.TokenKind) (string, error) {
	now := time.Now().UTC()
	tc := tokenClaims{
		UserID: claims.UserID,
		Email:  claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl(kind))),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(c.secret(kind))
}

// Verify parses and validates a token of the given kind, returning its
// identity claims. Failures map onto the three token sentinels.
func (c *TokenCodec) Verify(token string, kind domain.TokenKind) (domain.TokenClaims, error) {
	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return c.secret(kind), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return domain.TokenClaims{}, domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return domain.TokenClaims{}, domain.ErrTokenSignatureInvalid
		default:
			return domain.TokenClaims{}, domain.ErrTokenMalformed
		}
	}
	if !parsed.Valid || tc.UserID == "" {
		return domain.TokenClaims{}, domain.ErrTokenMalformed
	}
	return domain.TokenClaims{UserID: tc.UserID, Email: tc.Email}, nil
}
