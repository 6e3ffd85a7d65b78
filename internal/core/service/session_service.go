package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/openvote/voting-system/internal/api/metrics"
	"github.com/openvote/voting-system/internal/core/domain"
	"github.com/openvote/voting-system/internal/core/ports"
)

// SessionManager implements registration, login, refresh rotation, logout,
// and Google identity linking.
type SessionManager struct {
	users    ports.UserRepository
	sessions ports.RefreshTokenStore
	codec    ports.TokenCodec
	log      zerolog.Logger
}

func NewSessionManager(users ports.UserRepository, sessions ports.RefreshTokenStore, codec ports.TokenCodec, log zerolog.Logger) *SessionManager {
	return &SessionManager{users: users, sessions: sessions, codec: codec, log: log}
}

func (s *SessionManager) Register(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user, err := s.users.Create(ctx, &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Provider:     domain.ProviderLocal,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	// The user is new: issuance without prior revocation.
	return s.issueSession(ctx, user, false)
}

func (s *SessionManager) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	// An account created through Google sign-in has no hash until one is set.
	if !user.CanPasswordLogin() {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issueSession(ctx, user, true)
}

// LoginWithGoogle links or creates the account for an email already verified
// by the identity edge. A LOCAL account is upgraded to GOOGLE in place,
// retaining its password hash so both login paths work afterward.
func (s *SessionManager) LoginWithGoogle(ctx context.Context, verifiedEmail string) (*ports.AuthResult, error) {
	if verifiedEmail == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, verifiedEmail)
	switch {
	case err == nil:
		if user.Provider != domain.ProviderGoogle {
			if err := s.users.SetProvider(ctx, user.ID, domain.ProviderGoogle); err != nil {
				return nil, err
			}
			user.Provider = domain.ProviderGoogle
			s.log.Info().Str("user_id", user.ID).Msg("account linked to google identity")
		}
	case errors.Is(err, domain.ErrUserNotFound):
		now := time.Now().UTC()
		user, err = s.users.Create(ctx, &domain.User{
			Email:     verifiedEmail,
			Provider:  domain.ProviderGoogle,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			return nil, err
		}
		s.log.Info().Str("user_id", user.ID).Msg("user created via google sign-in")
	default:
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return s.issueSession(ctx, user, true)
}

// Refresh rotates the session: the presented token is consumed and a new
// pair is issued. A token that verifies cryptographically but has no stored
// record has already been used or revoked; the exchange fails.
func (s *SessionManager) Refresh(ctx context.Context, refreshToken string) (*ports.AuthResult, error) {
	if _, err := s.codec.Verify(refreshToken, domain.TokenRefresh); err != nil {
		metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		return nil, domain.ErrUnauthenticated
	}

	record, err := s.sessions.FindByToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			metrics.TokenRefreshTotal.WithLabelValues("rejected").Inc()
		}
		return nil, err
	}

	user, err := s.users.FindByID(ctx, record.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.DeleteByToken(ctx, refreshToken); err != nil {
		return nil, err
	}

	metrics.TokenRefreshTotal.WithLabelValues("rotated").Inc()
	return s.issueSession(ctx, user, false)
}

// Logout deletes the matching record if present. Absence is success: a
// client retrying logout must not see an error.
func (s *SessionManager) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.DeleteByToken(ctx, refreshToken)
}

// issueSession optionally revokes all prior sessions, then signs and
// persists a fresh pair. Revocation completes before the save, so a failed
// issuance leaves the user merely logged out — never with stale tokens valid.
func (s *SessionManager) issueSession(ctx context.Context, user *domain.User, revokePrior bool) (*ports.AuthResult, error) {
	if revokePrior {
		if err := s.sessions.DeleteAllByUser(ctx, user.ID); err != nil {
			return nil, err
		}
		metrics.SessionsRevokedTotal.Inc()
	}

	claims := domain.TokenClaims{UserID: user.ID, Email: user.Email}
	access, err := s.codec.Sign(claims, domain.TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.Sign(claims, domain.TokenRefresh)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, &domain.RefreshTokenRecord{
		UserID:    user.ID,
		Token:     refresh,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &ports.AuthResult{
		User:   user,
		Tokens: domain.TokenPair{AccessToken: access, RefreshToken: refresh},
	}, nil
}
