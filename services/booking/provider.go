package booking

import (
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideBookingService(cfg *config.Config, db *gorm.DB, logger *logging.Service) *Service {
	return NewService(cfg, db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideBookingService),
)
