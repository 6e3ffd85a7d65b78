package ports

import (
	"context"

	"github.com/openvote/voting-system/internal/core/domain"
)

// UserRepository defines the persistence contract for user identities.
type UserRepository interface {
	// Create inserts a new user and returns the stored record with its
	// generated id. Returns domain.ErrUserExists when the email is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// SetProvider updates the provider tag in place (LOCAL → GOOGLE upgrade).
	SetProvider(ctx context.Context, id, provider string) error
}
