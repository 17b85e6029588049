package passwordreset

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/logging"
	"github.com/rideway/rideway/services/mail"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTokenInvalid = errors.New("invalid password reset token")
	ErrTokenExpired = errors.New("password reset token has expired")
	ErrTokenUsed    = errors.New("password reset token has already been used")
)

type Service struct {
	config  *config.Config
	db      *gorm.DB
	authSvc *auth.Service
	mailer  mail.Mailer
	logger  *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, authSvc *auth.Service, mailer mail.Mailer, logger *logging.Service) *Service {
	return &Service{
		config:  cfg,
		db:      db,
		authSvc: authSvc,
		mailer:  mailer,
		logger:  logger,
	}
}

func (s *Service) generateToken() (string, error) {
	bytes := make([]byte, s.config.PasswordReset.TokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// Request issues a reset token and emails the link. The result is
// success-shaped whether or not the account exists; nothing observable
// distinguishes the two, and no token row is created for unknown emails.
func (s *Service) Request(email, name string) (*RequestResult, error) {
	email = auth.NormalizeEmail(email)
	now := time.Now()

	if s.logger != nil {
		s.logger.Info("password reset requested", zap.String("email", email))
	}

	windowStart := now.Add(-time.Hour)
	var recent []PasswordResetToken
	if err := s.db.Where("email = ? AND created_at > ?", email, windowStart).
		Order("created_at ASC").Find(&recent).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent reset requests: %w", err)
	}

	if len(recent) >= s.config.PasswordReset.MaxRequestsPerHour {
		next := recent[0].CreatedAt.Add(time.Hour)
		if s.logger != nil {
			s.logger.Warn("password reset rate limit hit",
				zap.String("email", email),
				zap.Time("next_allowed", next))
		}
		return &RequestResult{RateLimited: true, NextAllowedAttempt: &next}, nil
	}

	user, err := s.authSvc.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Same response as the real thing, but no row and no email.
			return &RequestResult{}, nil
		}
		return nil, err
	}

	token, err := s.generateToken()
	if err != nil {
		return nil, err
	}

	resetToken := &PasswordResetToken{
		Email:     email,
		Token:     token,
		ExpiresAt: now.Add(s.config.PasswordReset.Expiry),
	}
	if err := s.db.Create(resetToken).Error; err != nil {
		return nil, fmt.Errorf("failed to create password reset token: %w", err)
	}

	if name == "" {
		name = user.Name
	}
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.config.App.FrontendURL, token)
	data := map[string]any{
		"AppName":        s.config.App.Name,
		"Name":           name,
		"Email":          email,
		"ResetLink":      resetLink,
		"ExpiryDuration": s.config.PasswordReset.Expiry.String(),
	}

	if err := s.mailer.SendTemplate("password_reset", []string{email}, "Password Reset Request", data); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send password reset email", zap.Error(err), zap.String("email", email))
		}
		return nil, fmt.Errorf("failed to send password reset email: %w", err)
	}

	return &RequestResult{}, nil
}

// Verify validates a token without mutating it, so the reset form can be
// shown (or not) before the user types anything.
func (s *Service) Verify(token string) (string, error) {
	resetToken, err := s.lookup(token)
	if err != nil {
		return "", err
	}
	return resetToken.Email, nil
}

// Consume atomically marks the token used. The conditional update means two
// near-simultaneous consumers race on a single row write and only one wins.
// The loser gets ErrTokenUsed.
func (s *Service) Consume(token string) (string, error) {
	resetToken, err := s.lookup(token)
	if err != nil {
		return "", err
	}

	if err := s.markUsed(resetToken.Token); err != nil {
		return "", err
	}
	return resetToken.Email, nil
}

func (s *Service) lookup(token string) (*PasswordResetToken, error) {
	var resetToken PasswordResetToken
	if err := s.db.Where("token = ?", token).First(&resetToken).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to look up password reset token: %w", err)
	}

	if resetToken.UsedAt != nil {
		return nil, ErrTokenUsed
	}
	if resetToken.Expired(time.Now()) {
		return nil, ErrTokenExpired
	}

	return &resetToken, nil
}

func (s *Service) markUsed(token string) error {
	res := s.db.Model(&PasswordResetToken{}).
		Where("token = ? AND used_at IS NULL", token).
		Update("used_at", time.Now())
	if res.Error != nil {
		return fmt.Errorf("failed to mark password reset token as used: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrTokenUsed
	}
	return nil
}

// ResetPassword re-validates ownership and consumes the token before the
// password is touched, closing the replay window: even if the update below
// fails the token is spent.
func (s *Service) ResetPassword(email, password, token string) error {
	email = auth.NormalizeEmail(email)

	resetToken, err := s.lookup(token)
	if err != nil {
		s.recordAttempt(email, false, err.Error())
		return err
	}

	if resetToken.Email != email {
		s.recordAttempt(email, false, "token does not belong to this email")
		return ErrTokenInvalid
	}

	hash, err := s.authSvc.HashPassword(password)
	if err != nil {
		s.recordAttempt(email, false, "password rejected by policy")
		return err
	}

	if err := s.markUsed(resetToken.Token); err != nil {
		s.recordAttempt(email, false, "token already consumed")
		return err
	}

	res := s.db.Table("users").Where("email = ?", email).Update("password_hash", hash)
	if res.Error != nil {
		s.recordAttempt(email, false, "password update failed")
		return fmt.Errorf("failed to update password: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Token without a user (account removed since issuance); the token is
		// already spent, which is the safe side of this race.
		s.recordAttempt(email, false, "no matching user")
		return ErrTokenInvalid
	}

	s.recordAttempt(email, true, "")

	data := map[string]any{
		"AppName": s.config.App.Name,
		"Email":   email,
	}
	if err := s.mailer.SendTemplate("password_reset_success", []string{email}, "Password Reset Successful", data); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send reset confirmation email", zap.Error(err), zap.String("email", email))
		}
	}

	if s.logger != nil {
		s.logger.Info("password reset completed", zap.String("email", email))
	}
	return nil
}

func (s *Service) recordAttempt(email string, succeeded bool, reason string) {
	attempt := PasswordResetAttempt{Email: email, Succeeded: succeeded, Reason: reason}
	if err := s.db.Create(&attempt).Error; err != nil && s.logger != nil {
		s.logger.Warn("failed to record password reset attempt", zap.Error(err))
	}
}

// CleanupExpiredTokens removes tokens past their expiry. Expiry is otherwise
// checked on read; this only keeps the table from growing without bound.
func (s *Service) CleanupExpiredTokens() error {
	result := s.db.Unscoped().Where("expires_at < ?", time.Now()).Delete(&PasswordResetToken{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired password reset tokens: %w", result.Error)
	}
	return nil
}
