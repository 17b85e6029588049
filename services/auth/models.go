package auth

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email         string `json:"email" gorm:"uniqueIndex;not null"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	PasswordHash  string `json:"-" gorm:"not null"`
	EmailVerified bool   `json:"email_verified" gorm:"default:false"`
	Role          string `json:"role" gorm:"default:customer"`
}

func (User) TableName() string {
	return "users"
}

// InviteCode grants a specific role at sign-up. Codes are pre-provisioned,
// single-use and optionally expiring.
type InviteCode struct {
	gorm.Model
	Code         string     `json:"code" gorm:"uniqueIndex;not null"`
	Role         string     `json:"role" gorm:"not null"`
	Active       bool       `json:"active" gorm:"default:true"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	UsedAt       *time.Time `json:"used_at,omitempty"`
	UsedByUserID *uint      `json:"used_by_user_id,omitempty"`
}

func (InviteCode) TableName() string {
	return "invite_codes"
}

// Profile is the dashboard view of a user. The privileged lookup fills every
// field; the constrained fallback omits phone and role.
type Profile struct {
	UserID        uint   `json:"user_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	Role          string `json:"role,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Privileged    bool   `json:"-"`
}
