package refreshtoken

import (
	"time"
)

// RefreshToken stores only the SHA-256 hash of the opaque token handed to the
// client, so a database dump cannot be replayed.
type RefreshToken struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Role       string    `json:"role" gorm:"size:32;not null"`
	TokenHash  string    `json:"-" gorm:"uniqueIndex;size:255;not null"`
	ExpiresAt  time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsed   time.Time `json:"last_used"`
	DeviceInfo string    `json:"device_info" gorm:"size:500"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

type TokenData struct {
	Token     string
	TokenID   uint
	ExpiresAt time.Time
}

type RotationResult struct {
	AccessToken  string
	RefreshToken string
	TokenID      uint
	OldTokenID   uint
	ExpiresAt    time.Time
}
