package verification

import (
	"time"
)

// EmailVerification is one outstanding or historical OTP challenge. A new
// send creates a new row; older rows for the same email go stale and are
// ignored, never deleted.
type EmailVerification struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	UserID     *uint      `json:"user_id,omitempty" gorm:"index"`
	Email      string     `json:"email" gorm:"index;not null"`
	Code       string     `json:"-" gorm:"not null"`
	MagicToken string     `json:"-" gorm:"uniqueIndex;not null"`
	Verified   bool       `json:"verified" gorm:"default:false"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
}

func (EmailVerification) TableName() string {
	return "email_verifications"
}

func (v *EmailVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// SendResult is returned from SendOTP.
type SendResult struct {
	VerificationID    string `json:"verificationId"`
	RemainingAttempts int    `json:"remainingAttempts"`
}

// Status describes the verification state of an email without mutating
// anything. The UI uses it to decide whether to show a (re)send prompt.
type Status struct {
	Verified               bool `json:"verified"`
	Exists                 bool `json:"exists"`
	RequiresVerification   bool `json:"requiresVerification"`
	HasPendingVerification bool `json:"hasPendingVerification"`
	// VerificationAge is seconds since the newest challenge was created, -1
	// when there is none.
	VerificationAge int64 `json:"verificationAge"`
}
