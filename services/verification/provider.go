package verification

import (
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"github.com/rideway/rideway/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvideVerificationService(cfg *config.Config, db *gorm.DB, mailer mail.Mailer, logger *logging.Service) *Service {
	return NewService(cfg, db, mailer, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideVerificationService),
)
