package verification

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/logging"
	"github.com/rideway/rideway/services/mail"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrResendTooSoon = errors.New("a code was sent moments ago, wait before resending")
	ErrRateLimited   = errors.New("too many verification emails, try again later")
	ErrCodeExpired   = errors.New("verification code has expired")
	ErrCodeInvalid   = errors.New("verification code is invalid")
)

// DevBypassPrefix marks verification IDs that skip all checks. Only honored
// when the bypass is enabled by configuration outside production; it exists
// for local testing against a frontend with no mail delivery.
const DevBypassPrefix = "dev-"

type Service struct {
	config *config.Config
	db     *gorm.DB
	mailer mail.Mailer
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, mailer mail.Mailer, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		mailer: mailer,
		logger: logger,
	}
}

func (s *Service) generateMagicToken() (string, error) {
	bytes := make([]byte, s.config.Verification.MagicTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate secure token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// SendOTP creates a fresh challenge and emails the code plus a magic link.
// Two limits apply per email: a minimum interval between sends, and a cap on
// sends within the rolling window. Neither creates a new row when tripped.
func (s *Service) SendOTP(email, name string, userID *uint) (*SendResult, error) {
	email = auth.NormalizeEmail(email)
	now := time.Now()

	if s.logger != nil {
		s.logger.Info("sending verification code", zap.String("email", email))
	}

	var newest EmailVerification
	err := s.db.Where("email = ?", email).Order("created_at DESC").First(&newest).Error
	if err == nil && now.Sub(newest.CreatedAt) < s.config.Verification.ResendInterval {
		if s.logger != nil {
			s.logger.Warn("resend attempted too soon",
				zap.String("email", email),
				zap.Duration("since_last", now.Sub(newest.CreatedAt)))
		}
		return nil, ErrResendTooSoon
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check previous sends: %w", err)
	}

	windowStart := now.Add(-s.config.Verification.SendWindow)
	var sendsInWindow int64
	if err := s.db.Model(&EmailVerification{}).
		Where("email = ? AND created_at > ?", email, windowStart).
		Count(&sendsInWindow).Error; err != nil {
		return nil, fmt.Errorf("failed to count recent sends: %w", err)
	}

	if sendsInWindow >= int64(s.config.Verification.MaxSendsPerWindow) {
		if s.logger != nil {
			s.logger.Warn("verification send rate limit hit",
				zap.String("email", email),
				zap.Int64("sends_in_window", sendsInWindow))
		}
		return nil, ErrRateLimited
	}

	code, err := generateCode()
	if err != nil {
		return nil, err
	}

	magicToken, err := s.generateMagicToken()
	if err != nil {
		return nil, err
	}

	challenge := &EmailVerification{
		ID:         uuid.New().String(),
		UserID:     userID,
		Email:      email,
		Code:       code,
		MagicToken: magicToken,
		Verified:   false,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.config.Verification.Expiry),
	}

	if err := s.db.Create(challenge).Error; err != nil {
		return nil, fmt.Errorf("failed to create verification record: %w", err)
	}

	magicLink := fmt.Sprintf("%s/verify-email?token=%s", s.config.App.FrontendURL, magicToken)
	data := map[string]any{
		"AppName":        s.config.App.Name,
		"Name":           name,
		"Code":           code,
		"MagicLink":      magicLink,
		"ExpiryDuration": s.config.Verification.Expiry.String(),
	}

	if err := s.mailer.SendTemplate("verification_code", []string{email}, "Verify your email address", data); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to send verification email", zap.Error(err), zap.String("email", email))
		}
		return nil, fmt.Errorf("failed to send verification email: %w", err)
	}

	return &SendResult{
		VerificationID:    challenge.ID,
		RemainingAttempts: s.config.Verification.MaxSendsPerWindow - int(sendsInWindow) - 1,
	}, nil
}

func (s *Service) devBypassAllowed(verificationID string) bool {
	return s.config.Verification.AllowDevBypass &&
		!s.config.App.IsProduction() &&
		strings.HasPrefix(verificationID, DevBypassPrefix)
}

// VerifyOTP checks the submitted code against the identified challenge.
// Expiry wins over a wrong code; an already-verified challenge fails closed
// so a stale ID from a racing resend can never silently succeed. The success
// mutation is a conditional update, making double submission lose cleanly.
func (s *Service) VerifyOTP(submittedCode, verificationID string) error {
	if s.devBypassAllowed(verificationID) {
		if s.logger != nil {
			s.logger.Warn("verification dev bypass used", zap.String("verification_id", verificationID))
		}
		return nil
	}

	var challenge EmailVerification
	if err := s.db.Where("id = ?", verificationID).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return fmt.Errorf("failed to look up verification: %w", err)
	}

	if challenge.Expired(time.Now()) {
		return ErrCodeExpired
	}

	if challenge.Verified {
		return ErrCodeInvalid
	}

	if !strings.EqualFold(challenge.Code, submittedCode) {
		if s.logger != nil {
			s.logger.Warn("wrong verification code submitted", zap.String("verification_id", verificationID))
		}
		return ErrCodeInvalid
	}

	return s.complete(&challenge)
}

// VerifyMagicToken is the link-based alternative to the short code.
func (s *Service) VerifyMagicToken(token string) error {
	var challenge EmailVerification
	if err := s.db.Where("magic_token = ?", token).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCodeInvalid
		}
		return fmt.Errorf("failed to look up verification: %w", err)
	}

	if challenge.Expired(time.Now()) {
		return ErrCodeExpired
	}
	if challenge.Verified {
		return ErrCodeInvalid
	}

	return s.complete(&challenge)
}

func (s *Service) complete(challenge *EmailVerification) error {
	now := time.Now()

	res := s.db.Model(&EmailVerification{}).
		Where("id = ? AND verified = ?", challenge.ID, false).
		Updates(map[string]any{"verified": true, "verified_at": now})
	if res.Error != nil {
		return fmt.Errorf("failed to mark verification complete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCodeInvalid
	}

	if challenge.UserID != nil {
		if err := s.db.Table("users").
			Where("id = ?", *challenge.UserID).
			Update("email_verified", true).Error; err != nil {
			return fmt.Errorf("failed to mark user verified: %w", err)
		}
	} else {
		// Challenge predates the account; link by email if one exists now.
		if err := s.db.Table("users").
			Where("email = ?", challenge.Email).
			Update("email_verified", true).Error; err != nil {
			return fmt.Errorf("failed to mark user verified: %w", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("email verified",
			zap.String("verification_id", challenge.ID),
			zap.String("email", challenge.Email))
	}
	return nil
}

// CheckStatus reports verification state without mutating anything.
func (s *Service) CheckStatus(email string) (*Status, error) {
	email = auth.NormalizeEmail(email)
	now := time.Now()

	status := &Status{VerificationAge: -1}

	var user auth.User
	err := s.db.Where("email = ?", email).First(&user).Error
	switch {
	case err == nil:
		status.Exists = true
		status.Verified = user.EmailVerified
		status.RequiresVerification = !user.EmailVerified
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Unknown email: nothing to verify yet.
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	var newest EmailVerification
	err = s.db.Where("email = ?", email).Order("created_at DESC").First(&newest).Error
	switch {
	case err == nil:
		status.VerificationAge = int64(now.Sub(newest.CreatedAt).Seconds())
		status.HasPendingVerification = !newest.Verified && !newest.Expired(now)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, fmt.Errorf("failed to look up verifications: %w", err)
	}

	return status, nil
}
