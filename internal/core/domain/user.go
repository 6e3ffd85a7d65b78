package domain

import "time"

// Identity providers. A LOCAL account may be upgraded to GOOGLE in place
// (retaining its password hash); the reverse never happens.
const (
	ProviderLocal  = "LOCAL"
	ProviderGoogle = "GOOGLE"
)

// User models a registered voter.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Provider     string    `json:"provider"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CanPasswordLogin reports whether the password path is available. Accounts
// created through Google sign-in carry no hash until (if ever) one is set.
func (u *User) CanPasswordLogin() bool {
	return u.PasswordHash != ""
}
