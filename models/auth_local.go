package models

import "time"

// AuthLocal is the password credential for a user, 1:1 by user_id. It
// carries the consecutive-failure counter and the lock window used by the
// login lockout guard. The counter and the lock are mutually exclusive:
// whenever locked_until is set the counter is reset to zero, and a
// successful login clears both.
type AuthLocal struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	PasswordHash   string     `gorm:"not null" json:"-"`
	FailedAttempts int        `gorm:"not null;default:0" json:"failed_attempts"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsLocked reports whether the lock window is still active. An expired
// lock needs no explicit clearing; it simply stops matching here.
func (a *AuthLocal) IsLocked(now time.Time) bool {
	return a.LockedUntil != nil && a.LockedUntil.After(now)
}
