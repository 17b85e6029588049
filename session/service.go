package session

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/mileusna/useragent"
	"gorm.io/gorm"
)

// TokenRevoker invalidates the access and refresh credentials backing a jwt
// session when that session is revoked from the dashboard.
type TokenRevoker interface {
	RevokeToken(tokenString string) error
}

type RefreshTokenRevoker interface {
	Revoke(tokenString string) error
}

type service struct {
	db             *gorm.DB
	manager        *Manager
	tokenRevoker   TokenRevoker
	refreshRevoker RefreshTokenRevoker
}

func NewService(db *gorm.DB, manager *Manager) Service {
	return &service{
		db:      db,
		manager: manager,
	}
}

func (s *service) SetTokenRevoker(revoker TokenRevoker) {
	s.tokenRevoker = revoker
}

func (s *service) SetRefreshTokenRevoker(revoker RefreshTokenRevoker) {
	s.refreshRevoker = revoker
}

func (s *service) Track(userID uint, token string, sessionType SessionType, ipAddress, userAgent string, expiresAt time.Time) error {
	now := time.Now()
	return s.db.Create(&UserSession{
		UserID:    userID,
		Token:     token,
		Type:      sessionType,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		Device:    DeviceSummary(userAgent),
		CreatedAt: now,
		LastUsed:  now,
		ExpiresAt: expiresAt,
	}).Error
}

func (s *service) TrackJWT(userID uint, refreshToken, ipAddress, userAgent string, expiresAt time.Time) error {
	now := time.Now()
	return s.db.Create(&UserSession{
		UserID:       userID,
		Token:        hashToken(refreshToken),
		Type:         SessionTypeJWT,
		RefreshToken: refreshToken,
		IPAddress:    ipAddress,
		UserAgent:    userAgent,
		Device:       DeviceSummary(userAgent),
		CreatedAt:    now,
		LastUsed:     now,
		ExpiresAt:    expiresAt,
	}).Error
}

func (s *service) RotateJWT(oldRefreshToken, newRefreshToken string, expiresAt time.Time) error {
	return s.db.Model(&UserSession{}).
		Where("token = ? AND type = ?", hashToken(oldRefreshToken), SessionTypeJWT).
		Updates(map[string]any{
			"token":         hashToken(newRefreshToken),
			"refresh_token": newRefreshToken,
			"expires_at":    expiresAt,
			"last_used":     time.Now(),
		}).Error
}

func (s *service) UpdateLastUsed(token string) error {
	return s.db.Model(&UserSession{}).
		Where("token = ?", token).
		Update("last_used", time.Now()).Error
}

func (s *service) ListForUser(userID uint, currentToken string) ([]UserSession, error) {
	var sessions []UserSession
	err := s.db.Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Order("last_used DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	for i := range sessions {
		if sessions[i].Token == currentToken {
			sessions[i].Current = true
		}
	}

	return sessions, nil
}

func (s *service) Revoke(userID uint, sessionID uint) error {
	var sess UserSession
	if err := s.db.Where("id = ? AND user_id = ?", sessionID, userID).First(&sess).Error; err != nil {
		return err
	}

	s.revokeCredentials(sess)

	return s.db.Delete(&sess).Error
}

func (s *service) RevokeAllOther(userID uint, currentToken string) error {
	var sessions []UserSession
	if err := s.db.Where("user_id = ? AND token != ?", userID, currentToken).Find(&sessions).Error; err != nil {
		return err
	}

	for _, sess := range sessions {
		s.revokeCredentials(sess)
	}

	return s.db.Where("user_id = ? AND token != ?", userID, currentToken).Delete(&UserSession{}).Error
}

func (s *service) revokeCredentials(sess UserSession) {
	if sess.Type == SessionTypeJWT {
		if sess.RefreshToken != "" && s.refreshRevoker != nil {
			_ = s.refreshRevoker.Revoke(sess.RefreshToken)
		}
		return
	}

	if s.manager != nil && s.manager.SessionManager != nil && s.manager.SessionManager.Store != nil {
		_ = s.manager.SessionManager.Store.Delete(sess.Token)
	}
}

func (s *service) RemoveByToken(token string) error {
	return s.db.Where("token = ?", token).Delete(&UserSession{}).Error
}

func (s *service) RemoveByRefreshToken(refreshToken string) error {
	return s.db.Where("token = ? AND type = ?", hashToken(refreshToken), SessionTypeJWT).Delete(&UserSession{}).Error
}

func (s *service) Exists(token string) (bool, error) {
	var count int64
	err := s.db.Model(&UserSession{}).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	if count > 0 {
		_ = s.UpdateLastUsed(token)
		return true, nil
	}

	return false, nil
}

func (s *service) CleanupExpired() error {
	return s.db.Where("expires_at < ?", time.Now()).Delete(&UserSession{}).Error
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// DeviceSummary condenses a raw User-Agent header into the short label shown
// on the sessions page.
func DeviceSummary(userAgentString string) string {
	if userAgentString == "" {
		return "Unknown device"
	}

	ua := useragent.Parse(userAgentString)

	browser := ua.Name
	if browser == "" {
		browser = "Unknown browser"
	}

	os := ua.OS
	if os == "" {
		return browser
	}

	return browser + " on " + os
}
