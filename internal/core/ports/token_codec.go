package ports

import "github.com/openvote/voting-system/internal/core/domain"

// TokenCodec signs and verifies bearer tokens. Stateless: verification is
// pure computation and never touches storage.
type TokenCodec interface {
	Sign(claims domain.TokenClaims, kind domain.TokenKind) (string, error)
	// Verify fails with domain.ErrTokenExpired, domain.ErrTokenMalformed, or
	// domain.ErrTokenSignatureInvalid; the middleware reports them differently.
	Verify(token string, kind domain.TokenKind) (domain.TokenClaims, error)
}
