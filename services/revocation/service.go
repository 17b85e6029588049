package revocation

import (
	"errors"
	"fmt"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/zap"
)

var ErrStoreNotConfigured = errors.New("revocation store not configured")

type Service struct {
	config *config.Config
	store  Store
	logger *logging.Service
}

func NewService(cfg *config.Config, store Store, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		store:  store,
		logger: logger,
	}
}

func (s *Service) RevokeJTI(jti string, expiresAt time.Time) error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	if err := s.store.Revoke(jti, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Error("failed to revoke token", zap.String("jti", jti), zap.Error(err))
		}
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("token revoked", zap.String("jti", jti), zap.Time("expires_at", expiresAt))
	}

	return nil
}

func (s *Service) IsTokenRevoked(jti string) (bool, error) {
	if s.store == nil {
		return false, ErrStoreNotConfigured
	}

	revoked, err := s.store.IsRevoked(jti)
	if err != nil {
		return false, fmt.Errorf("failed to check revocation status: %w", err)
	}

	return revoked, nil
}

func (s *Service) CleanupExpired() error {
	if s.store == nil {
		return ErrStoreNotConfigured
	}

	if err := s.store.CleanupExpired(); err != nil {
		return fmt.Errorf("failed to cleanup expired revocations: %w", err)
	}

	return nil
}

// StartCleanupWorker prunes expired entries in the background. The worker
// runs until the process exits.
func (s *Service) StartCleanupWorker(interval time.Duration) {
	if s.store == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := s.CleanupExpired(); err != nil && s.logger != nil {
				s.logger.Error("revocation cleanup failed", zap.Error(err))
			}
		}
	}()

	if s.logger != nil {
		s.logger.Debug("started revocation cleanup worker", zap.Duration("interval", interval))
	}
}
