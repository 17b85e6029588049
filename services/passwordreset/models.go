package passwordreset

import (
	"time"

	"gorm.io/gorm"
)

// PasswordResetToken is single-use: once UsedAt is set every later verify,
// consume or reset with the same token fails closed. Lifecycle is
// ISSUED -> CONSUMED or ISSUED -> EXPIRED, with no way back out.
type PasswordResetToken struct {
	gorm.Model
	Email     string     `json:"email" gorm:"index;not null"`
	Token     string     `json:"-" gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time  `json:"expires_at" gorm:"not null"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

func (t *PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// PasswordResetAttempt is the audit row written whenever a reset is actually
// attempted against a token.
type PasswordResetAttempt struct {
	gorm.Model
	Email     string `json:"email" gorm:"index;not null"`
	Succeeded bool   `json:"succeeded"`
	Reason    string `json:"reason,omitempty"`
}

func (PasswordResetAttempt) TableName() string {
	return "password_reset_attempts"
}

// RequestResult is intentionally identical for known and unknown accounts so
// the response cannot be used to enumerate users. RateLimited carries the
// countdown the UI shows when the per-email cap is hit.
type RequestResult struct {
	RateLimited        bool       `json:"rateLimited,omitempty"`
	NextAllowedAttempt *time.Time `json:"nextAllowedAttempt,omitempty"`
}
