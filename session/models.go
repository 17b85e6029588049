package session

import (
	"time"
)

type SessionType string

const (
	SessionTypeWeb SessionType = "web"
	SessionTypeJWT SessionType = "jwt"
)

// UserSession is the per-device record shown on the dashboard "active
// sessions" page. Web rows mirror an scs cookie session, jwt rows mirror a
// refresh token held by the booking app.
type UserSession struct {
	ID           uint        `json:"id" gorm:"primaryKey"`
	UserID       uint        `json:"user_id" gorm:"not null;index"`
	Token        string      `json:"-" gorm:"uniqueIndex;size:255;not null"`
	Type         SessionType `json:"type" gorm:"size:10;not null;default:'web'"`
	RefreshToken string      `json:"-" gorm:"size:1000"`
	IPAddress    string      `json:"ip_address" gorm:"size:45"`
	UserAgent    string      `json:"user_agent" gorm:"size:500"`
	Device       string      `json:"device" gorm:"size:120"`
	Current      bool        `json:"current" gorm:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	LastUsed     time.Time   `json:"last_used"`
	ExpiresAt    time.Time   `json:"expires_at"`
}

func (UserSession) TableName() string {
	return "user_sessions"
}

type Service interface {
	Track(userID uint, token string, sessionType SessionType, ipAddress, userAgent string, expiresAt time.Time) error

	TrackJWT(userID uint, refreshToken, ipAddress, userAgent string, expiresAt time.Time) error

	RotateJWT(oldRefreshToken, newRefreshToken string, expiresAt time.Time) error

	UpdateLastUsed(token string) error

	ListForUser(userID uint, currentToken string) ([]UserSession, error)

	Revoke(userID uint, sessionID uint) error

	RevokeAllOther(userID uint, currentToken string) error

	RemoveByToken(token string) error

	RemoveByRefreshToken(refreshToken string) error

	Exists(token string) (bool, error)

	CleanupExpired() error
}
