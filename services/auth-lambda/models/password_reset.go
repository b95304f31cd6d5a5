package models

import "time"

// PasswordResetToken is a single-use credential for the recovery flow.
// A token authorizes exactly one password change: consuming it flips
// IsUsed and the same token can never be redeemed again.
type PasswordResetToken struct {
	ID        int       `json:"id" db:"Id"`
	UserID    int       `json:"userId" db:"UserId"`
	Token     string    `json:"-" db:"Token"`
	ExpiresAt time.Time `json:"expiresAt" db:"ExpiresAt"`
	IsUsed    bool      `json:"isUsed" db:"IsUsed"`
	CreatedAt time.Time `json:"createdAt" db:"CreatedAt"`
	IPAddress string    `json:"-" db:"IpAddress"`
}

// IsExpired reports whether the token lifetime has elapsed
func (t *PasswordResetToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive reports whether the token can still be redeemed
func (t *PasswordResetToken) IsActive(now time.Time) bool {
	return !t.IsUsed && !t.IsExpired(now)
}
