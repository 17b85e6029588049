package refreshtoken

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTokenNotFound         = errors.New("refresh token not found")
	ErrTokenExpired          = errors.New("refresh token expired")
	ErrTokenGenerationFailed = errors.New("failed to generate secure token")
)

// AccessTokenIssuer mints the short-lived access token handed out alongside
// a rotated refresh token.
type AccessTokenIssuer interface {
	GenerateAccessToken(userID uint, role string) (string, error)
}

type Service struct {
	db     *gorm.DB
	config *config.Config
	logger *logging.Service
}

func NewService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

func (s *Service) Generate(userID uint, role, deviceInfo string) (*TokenData, error) {
	token, err := s.generateSecureToken()
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to generate refresh token", zap.Error(err))
		}
		return nil, ErrTokenGenerationFailed
	}

	now := time.Now()
	record := RefreshToken{
		UserID:     userID,
		Role:       role,
		TokenHash:  s.hashToken(token),
		ExpiresAt:  now.Add(s.config.RefreshToken.Expiry),
		CreatedAt:  now,
		LastUsed:   now,
		DeviceInfo: deviceInfo,
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	if s.logger != nil {
		s.logger.Debug("refresh token issued",
			zap.Uint("user_id", userID),
			zap.Uint("token_id", record.ID),
			zap.Time("expires_at", record.ExpiresAt))
	}

	return &TokenData{
		Token:     token,
		TokenID:   record.ID,
		ExpiresAt: record.ExpiresAt,
	}, nil
}

func (s *Service) Validate(tokenString string) (*RefreshToken, error) {
	var record RefreshToken
	err := s.db.Where("token_hash = ?", s.hashToken(tokenString)).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if time.Now().After(record.ExpiresAt) {
		s.db.Delete(&record)
		return nil, ErrTokenExpired
	}

	return &record, nil
}

// Rotate exchanges a valid refresh token for a fresh access and refresh pair.
// The presented token is deleted so it cannot be replayed.
func (s *Service) Rotate(tokenString string, issuer AccessTokenIssuer) (*RotationResult, error) {
	old, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	accessToken, err := issuer.GenerateAccessToken(old.UserID, old.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	fresh, err := s.Generate(old.UserID, old.Role, old.DeviceInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to generate replacement refresh token: %w", err)
	}

	if err := s.db.Delete(old).Error; err != nil {
		if s.logger != nil {
			s.logger.Warn("failed to delete rotated refresh token",
				zap.Uint("token_id", old.ID), zap.Error(err))
		}
	}

	if s.logger != nil {
		s.logger.Info("refresh token rotated",
			zap.Uint("user_id", old.UserID),
			zap.Uint("old_token_id", old.ID),
			zap.Uint("new_token_id", fresh.TokenID))
	}

	return &RotationResult{
		AccessToken:  accessToken,
		RefreshToken: fresh.Token,
		TokenID:      fresh.TokenID,
		OldTokenID:   old.ID,
		ExpiresAt:    fresh.ExpiresAt,
	}, nil
}

func (s *Service) Revoke(tokenString string) error {
	result := s.db.Where("token_hash = ?", s.hashToken(tokenString)).Delete(&RefreshToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", result.Error)
	}
	return nil
}

func (s *Service) RevokeAllForUser(userID uint) error {
	result := s.db.Where("user_id = ?", userID).Delete(&RefreshToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke user refresh tokens: %w", result.Error)
	}

	if s.logger != nil {
		s.logger.Info("revoked all refresh tokens for user",
			zap.Uint("user_id", userID),
			zap.Int64("count", result.RowsAffected))
	}

	return nil
}

func (s *Service) UpdateLastUsed(tokenID uint) error {
	return s.db.Model(&RefreshToken{}).
		Where("id = ?", tokenID).
		Update("last_used", time.Now()).Error
}

func (s *Service) CleanupExpired() error {
	result := s.db.Where("expires_at < ?", time.Now()).Delete(&RefreshToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired refresh tokens: %w", result.Error)
	}

	if s.logger != nil && result.RowsAffected > 0 {
		s.logger.Info("cleaned up expired refresh tokens",
			zap.Int64("count", result.RowsAffected))
	}

	return nil
}

func (s *Service) StartCleanupWorker() {
	go func() {
		ticker := time.NewTicker(s.config.RefreshToken.CleanupInterval)
		defer ticker.Stop()

		for range ticker.C {
			if err := s.CleanupExpired(); err != nil && s.logger != nil {
				s.logger.Error("refresh token cleanup worker failed", zap.Error(err))
			}
		}
	}()
}

func (s *Service) generateSecureToken() (string, error) {
	tokenBytes := make([]byte, s.config.RefreshToken.TokenLength)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(tokenBytes), nil
}

func (s *Service) hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
