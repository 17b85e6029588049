package totp

import (
	"errors"
	"fmt"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTOTPDisabled    = errors.New("TOTP is disabled")
	ErrInvalidCode     = errors.New("invalid TOTP code")
	ErrSecretExists    = errors.New("TOTP secret already exists for user")
	ErrSecretNotFound  = errors.New("TOTP secret not found for user")
	ErrCodeAlreadyUsed = errors.New("TOTP code has already been used")
)

// Service manages second-factor enrolment for operator accounts. Customer
// sign-in never touches it.
type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

// GenerateSecret creates a pending secret for the user. The secret stays
// disabled until Enable confirms the user can produce a valid code.
func (s *Service) GenerateSecret(userID uint, accountName string) (*TOTPSecret, error) {
	if !s.config.TOTP.Enabled {
		return nil, ErrTOTPDisabled
	}

	var existing TOTPSecret
	if err := s.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return nil, ErrSecretExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing TOTP secret: %w", err)
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.config.TOTP.Issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	secret := &TOTPSecret{
		UserID:  userID,
		Secret:  key.Secret(),
		Enabled: false,
	}

	if err := s.db.Create(secret).Error; err != nil {
		return nil, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("TOTP secret generated", zap.Uint("user_id", userID))
	}

	return secret, nil
}

func (s *Service) GetSecret(userID uint) (*TOTPSecret, error) {
	if !s.config.TOTP.Enabled {
		return nil, ErrTOTPDisabled
	}

	var secret TOTPSecret
	if err := s.db.Where("user_id = ?", userID).First(&secret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSecretNotFound
		}
		return nil, fmt.Errorf("failed to retrieve TOTP secret: %w", err)
	}

	return &secret, nil
}

// Enable turns the pending secret on once the user proves possession of it.
func (s *Service) Enable(userID uint, code string) error {
	secret, err := s.GetSecret(userID)
	if err != nil {
		return err
	}

	if !totp.Validate(code, secret.Secret) {
		return ErrInvalidCode
	}

	if err := s.db.Model(secret).Update("enabled", true).Error; err != nil {
		return fmt.Errorf("failed to enable TOTP: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("TOTP enabled", zap.Uint("user_id", userID))
	}

	return nil
}

func (s *Service) Disable(userID uint) error {
	secret, err := s.GetSecret(userID)
	if err != nil {
		return err
	}

	if err := s.db.Unscoped().Delete(secret).Error; err != nil {
		return fmt.Errorf("failed to disable TOTP: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("TOTP disabled", zap.Uint("user_id", userID))
	}

	return nil
}

func (s *Service) ProvisioningURI(secret *TOTPSecret, accountName string) string {
	issuer := s.config.TOTP.Issuer
	return fmt.Sprintf("otpauth://totp/%s:%s?secret=%s&issuer=%s", issuer, accountName, secret.Secret, issuer)
}

func (s *Service) IsEnabled(userID uint) bool {
	secret, err := s.GetSecret(userID)
	if err != nil {
		return false
	}
	return secret.Enabled
}

// VerifyCode checks a code against the user's enabled secret. A code that
// verified once is refused for the rest of its window.
func (s *Service) VerifyCode(userID uint, code string) error {
	secret, err := s.GetSecret(userID)
	if err != nil {
		return err
	}

	if !secret.Enabled {
		return ErrSecretNotFound
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		cutoff := time.Now().Unix() - 90
		var used UsedCode
		if err := tx.Where("user_id = ? AND code = ? AND used_at > ?", userID, code, cutoff).First(&used).Error; err == nil {
			return ErrCodeAlreadyUsed
		}

		if !totp.Validate(code, secret.Secret) {
			return ErrInvalidCode
		}

		return tx.Create(&UsedCode{
			UserID: userID,
			Code:   code,
			UsedAt: time.Now().Unix(),
		}).Error
	})
}

func (s *Service) CleanupUsedCodes() error {
	cutoff := time.Now().Unix() - 300
	result := s.db.Unscoped().Where("used_at < ?", cutoff).Delete(&UsedCode{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup used TOTP codes: %w", result.Error)
	}
	return nil
}
