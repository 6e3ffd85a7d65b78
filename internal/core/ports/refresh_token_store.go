package ports

import (
	"context"

	"github.com/openvote/voting-system/internal/core/domain"
)

// RefreshTokenStore persists active refresh tokens. Each call is atomic with
// respect to concurrent calls for the same token value: a token is either
// fully present or fully absent, never partial.
type RefreshTokenStore interface {
	Save(ctx context.Context, record *domain.RefreshTokenRecord) error
	// FindByToken returns domain.ErrUnauthenticated when no record exists —
	// the token has been consumed or revoked.
	FindByToken(ctx context.Context, token string) (*domain.RefreshTokenRecord, error)
	// DeleteByToken is idempotent: deleting an absent token is not an error.
	DeleteByToken(ctx context.Context, token string) error
	// DeleteAllByUser revokes every live session of the user.
	DeleteAllByUser(ctx context.Context, userID string) error
}
