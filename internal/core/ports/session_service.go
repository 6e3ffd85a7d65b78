package ports

import (
	"context"

	"github.com/openvote/voting-system/internal/core/domain"
)

// AuthResult is the outcome of any operation that establishes a session.
// User never carries the password hash into responses (json:"-" on the hash).
type AuthResult struct {
	User   *domain.User
	Tokens domain.TokenPair
}

// SessionService owns the session/token lifecycle, including the
// rotation protocol for refresh tokens.
type SessionService interface {
	// Register creates a LOCAL user and issues a session. Fails with
	// domain.ErrUserExists when the email is taken.
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	// Login verifies credentials, revokes all prior sessions of the user,
	// and issues a new one. Fails with domain.ErrInvalidCredentials on
	// unknown email, wrong password, or a password-less GOOGLE account.
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	// Refresh exchanges a refresh token for a new pair. The old token is
	// single-use: a second exchange fails with domain.ErrUnauthenticated.
	Refresh(ctx context.Context, refreshToken string) (*AuthResult, error)
	// Logout revokes the session; absence of a matching record is success.
	Logout(ctx context.Context, refreshToken string) error
	// LoginWithGoogle links or creates a user for an externally verified
	// email, then issues a session exactly like Login.
	LoginWithGoogle(ctx context.Context, verifiedEmail string) (*AuthResult, error)
}
