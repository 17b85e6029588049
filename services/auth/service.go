package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/internal/retry"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountExists         = errors.New("an account with this email already exists")
	ErrUserNotFound          = errors.New("user not found")
	ErrInviteCodeInvalid     = errors.New("invite code is invalid or inactive")
	ErrInviteCodeExpired     = errors.New("invite code has expired")
	ErrInviteCodeUsed        = errors.New("invite code has already been used")
)

type Service struct {
	config *config.Config
	db     *gorm.DB
	logger *logging.Service
}

func NewService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		cfg.Auth.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		db:     db,
		logger: logger,
	}
}

// NormalizeEmail makes submitted emails comparable: trims whitespace, decodes
// the %40 that some redirect flows leave in place of @, and lowercases.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	email = strings.ReplaceAll(email, "%40", "@")
	return strings.ToLower(email)
}

func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.Auth.MinLength {
		return fmt.Errorf("password must be at least %d characters", s.config.Auth.MinLength)
	}
	return nil
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.Auth.BcryptCost)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("password hashing failed", zap.Error(err))
		}
		return "", ErrPasswordHashingFailed
	}
	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

type SignUpInput struct {
	Email      string
	Password   string
	Name       string
	Phone      string
	InviteCode string
}

// SignUp creates the identity record with email_verified=false. When an
// invite code is supplied it must be active and unexpired; the code is marked
// used afterwards, and a failure to mark it is logged but never surfaced.
//
// Sign-up deliberately discloses an existing account (ErrAccountExists) while
// password reset does not; the asymmetry matches the product's observed
// behavior and is kept as-is.
func (s *Service) SignUp(input SignUpInput) (*User, error) {
	email := NormalizeEmail(input.Email)

	if s.logger != nil {
		s.logger.Info("sign-up requested", zap.String("email", email))
	}

	hash, err := s.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var existing User
	if err := s.db.Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrAccountExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}

	role := "customer"
	var invite *InviteCode
	if input.InviteCode != "" {
		invite, err = s.validateInviteCode(input.InviteCode)
		if err != nil {
			return nil, err
		}
		role = invite.Role
	}

	user := &User{
		Email:         email,
		Name:          strings.TrimSpace(input.Name),
		Phone:         strings.TrimSpace(input.Phone),
		PasswordHash:  hash,
		EmailVerified: false,
		Role:          role,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if invite != nil {
		now := time.Now()
		updates := map[string]any{
			"used_at":         &now,
			"used_by_user_id": user.ID,
			"active":          false,
		}
		if err := s.db.Model(invite).Updates(updates).Error; err != nil {
			if s.logger != nil {
				s.logger.Warn("failed to mark invite code used",
					zap.Error(err),
					zap.String("code", invite.Code),
					zap.Uint("user_id", user.ID))
			}
		}
	}

	if s.logger != nil {
		s.logger.Info("user created",
			zap.Uint("user_id", user.ID),
			zap.String("role", user.Role))
	}
	return user, nil
}

func (s *Service) validateInviteCode(code string) (*InviteCode, error) {
	var invite InviteCode
	if err := s.db.Where("code = ?", strings.TrimSpace(code)).First(&invite).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInviteCodeInvalid
		}
		return nil, fmt.Errorf("failed to look up invite code: %w", err)
	}

	if invite.UsedAt != nil {
		return nil, ErrInviteCodeUsed
	}
	if !invite.Active {
		return nil, ErrInviteCodeInvalid
	}
	if invite.ExpiresAt != nil && time.Now().After(*invite.ExpiresAt) {
		return nil, ErrInviteCodeExpired
	}

	return &invite, nil
}

func (s *Service) SignIn(email, password string) (*User, error) {
	email = NormalizeEmail(email)

	var user User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if s.logger != nil {
				s.logger.Warn("sign-in for unknown email", zap.String("email", email))
			}
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.VerifyPassword(user.PasswordHash, password); err != nil {
		if s.logger != nil {
			s.logger.Warn("sign-in with wrong password", zap.Uint("user_id", user.ID))
		}
		return nil, err
	}

	return &user, nil
}

func (s *Service) GetUserByID(userID uint) (*User, error) {
	var user User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*User, error) {
	var user User
	if err := s.db.Where("email = ?", NormalizeEmail(email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

func (s *Service) UpdateProfile(userID uint, name, phone string) (*User, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"name":  strings.TrimSpace(name),
		"phone": strings.TrimSpace(phone),
	}
	if err := s.db.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	return user, nil
}

// ClassifyError buckets a lookup failure for the retry policy. Not-found and
// credential failures must never be retried; timeouts and driver errors may.
func ClassifyError(err error) retry.Class {
	switch {
	case err == nil:
		return retry.ClassUnknown
	case errors.Is(err, ErrInvalidCredentials):
		return retry.ClassAuth
	case errors.Is(err, ErrUserNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return retry.ClassPermission
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return retry.ClassNetwork
	default:
		var netErr net.Error
		if errors.As(err, &netErr) {
			return retry.ClassNetwork
		}
		if strings.Contains(err.Error(), "database is locked") ||
			strings.Contains(err.Error(), "connection") {
			return retry.ClassServer
		}
		return retry.ClassUnknown
	}
}

// GetProfile is the dashboard profile fetch. It tries the privileged lookup
// first and falls back to the constrained one, retrying transient failures
// per the configured policy. A missing profile is not an error: callers get
// (nil, nil) and treat it as "no profile yet" instead of blocking access.
func (s *Service) GetProfile(ctx context.Context, userID uint) (*Profile, error) {
	policy := retry.Policy{
		MaxAttempts:    s.config.Retry.MaxAttempts,
		InitialDelay:   s.config.Retry.InitialDelay,
		AttemptTimeout: s.config.Retry.AttemptTimeout,
	}

	var profile *Profile
	err := retry.Do(ctx, policy, ClassifyError, func(ctx context.Context) error {
		p, err := s.privilegedProfile(ctx, userID)
		if err == nil {
			profile = p
			return nil
		}
		if ClassifyError(err) == retry.ClassPermission {
			return err
		}

		if s.logger != nil {
			s.logger.Warn("privileged profile lookup failed, falling back",
				zap.Error(err),
				zap.Uint("user_id", userID))
		}
		p, fbErr := s.constrainedProfile(ctx, userID)
		if fbErr != nil {
			return fbErr
		}
		profile = p
		return nil
	})
	if err != nil {
		if ClassifyError(err) == retry.ClassPermission {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

func (s *Service) privilegedProfile(ctx context.Context, userID uint) (*Profile, error) {
	var user User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &Profile{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.Name,
		Phone:         user.Phone,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		Privileged:    true,
	}, nil
}

func (s *Service) constrainedProfile(ctx context.Context, userID uint) (*Profile, error) {
	var user User
	err := s.db.WithContext(ctx).
		Select("id", "email", "name", "email_verified").
		First(&user, userID).Error
	if err != nil {
		return nil, err
	}
	return &Profile{
		UserID:        user.ID,
		Email:         user.Email,
		Name:          user.Name,
		EmailVerified: user.EmailVerified,
	}, nil
}
