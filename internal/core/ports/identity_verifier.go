package ports

import "context"

// IdentityVerifier validates an external identity assertion (a Google ID
// token) and returns the verified email. The session core consumes only the
// email; token validation details stay at the edge.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, rawToken string) (email string, err error)
}
