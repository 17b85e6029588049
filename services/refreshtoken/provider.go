package refreshtoken

import (
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(db, cfg, logger)
}

func StartCleanupWorker(svc *Service) {
	svc.StartCleanupWorker()
}

var Module = fx.Options(
	fx.Provide(ProvideService),
	fx.Invoke(StartCleanupWorker),
)
