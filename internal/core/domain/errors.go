package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by the core services. The HTTP layer maps each of
// these to a deterministic status code; everything else is a 500.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")

	ErrTokenExpired          = errors.New("token expired")
	ErrTokenMalformed        = errors.New("token malformed")
	ErrTokenSignatureInvalid = errors.New("token signature invalid")
	ErrUnauthenticated       = errors.New("unauthenticated")

	ErrPollNotFound           = errors.New("poll not found")
	ErrOptionNotFound         = errors.New("poll option not found")
	ErrPollExpired            = errors.New("poll has expired")
	ErrChangeVoteForbidden    = errors.New("changing vote is not allowed")
	ErrVoteIntervalNotElapsed = errors.New("vote interval has not elapsed")
	ErrResultsNotYetAvailable = errors.New("results not yet available")

	ErrStorageUnavailable = errors.New("storage unavailable")
)

// VoteIntervalError is returned when a voter re-votes before the poll's
// re-vote interval has elapsed. It carries the remaining wait so the client
// can surface a countdown.
type VoteIntervalError struct {
	RetryAfter time.Duration
}

func (e *VoteIntervalError) Error() string {
	return fmt.Sprintf("vote interval has not elapsed, retry in %dms", e.RetryAfter.Milliseconds())
}

// Unwrap lets errors.Is match the sentinel while callers that need the
// remaining wait use errors.As.
func (e *VoteIntervalError) Unwrap() error {
	return ErrVoteIntervalNotElapsed
}
