package revocation

import (
	"context"
	"fmt"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/jwt"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type OptionalDB struct {
	fx.In
	DB *gorm.DB `optional:"true"`
}

func ProvideStore(cfg *config.Config, logger *logging.Service, optDB OptionalDB) (Store, error) {
	if !cfg.Revocation.Enabled {
		return nil, nil
	}

	switch cfg.Revocation.Store {
	case "memory":
		if optDB.DB != nil {
			if err := optDB.DB.AutoMigrate(&RevokedToken{}); err != nil {
				if logger != nil {
					logger.Error("failed to migrate revoked tokens table, continuing memory-only", zap.Error(err))
				}
				return NewMemoryStore(nil), nil
			}
			return NewMemoryStore(optDB.DB), nil
		}
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("unsupported revocation store type: %s", cfg.Revocation.Store)
	}
}

func ProvideRevocationService(cfg *config.Config, logger *logging.Service, store Store) *Service {
	if !cfg.Revocation.Enabled || store == nil {
		return nil
	}
	return NewService(cfg, store, logger)
}

func ProvideRevocationAsJWTInterface(svc *Service) jwt.RevocationService {
	if svc == nil {
		return nil
	}
	return svc
}

type OptionalService struct {
	fx.In
	Service *Service `optional:"true"`
}

func StartCleanupWorkerIfEnabled(cfg *config.Config, opt OptionalService) {
	if opt.Service != nil {
		opt.Service.StartCleanupWorker(cfg.Revocation.CleanupPeriod)
	}
}

type OptionalStore struct {
	fx.In
	Store Store `optional:"true"`
}

func SetupRevocationPersistence(lc fx.Lifecycle, cfg *config.Config, logger *logging.Service, optStore OptionalStore) {
	if !cfg.Revocation.Enabled || optStore.Store == nil {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := optStore.Store.Load(); err != nil {
				if logger != nil {
					logger.Error("failed to load revoked tokens on startup", zap.Error(err))
				}
				return err
			}
			return nil
		},
	})
}

var Module = fx.Options(
	fx.Provide(ProvideStore),
	fx.Provide(ProvideRevocationService),
	fx.Provide(ProvideRevocationAsJWTInterface),
	fx.Invoke(StartCleanupWorkerIfEnabled),
	fx.Invoke(SetupRevocationPersistence),
)
