package domain

import "time"

// TokenKind selects which signing secret and TTL a token uses. Access and
// refresh tokens are signed with distinct secrets, so an access token can
// never be replayed as a refresh token.
type TokenKind string

const (
	TokenAccess  TokenKind = "access"
	TokenRefresh TokenKind = "refresh"
)

// TokenClaims are the identity claims embedded in both token kinds.
type TokenClaims struct {
	UserID string
	Email  string
}

// TokenPair is the result of a successful login, registration, or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokenRecord is the persisted server-side half of a refresh token.
// A token that verifies cryptographically but has no matching record has
// already been consumed or revoked.
type RefreshTokenRecord struct {
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
