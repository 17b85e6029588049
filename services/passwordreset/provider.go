package passwordreset

import (
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/logging"
	"github.com/rideway/rideway/services/mail"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func ProvidePasswordResetService(cfg *config.Config, db *gorm.DB, authSvc *auth.Service, mailer mail.Mailer, logger *logging.Service) *Service {
	return NewService(cfg, db, authSvc, mailer, logger)
}

var Module = fx.Options(
	fx.Provide(ProvidePasswordResetService),
)
