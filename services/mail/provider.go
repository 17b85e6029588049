package mail

import (
	"fmt"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/services/logging"
	"go.uber.org/fx"
)

func ProvideMailer(cfg *config.Config, logger *logging.Service) (Mailer, error) {
	switch cfg.Mail.Transport {
	case "memory":
		return NewMemoryMailer(), nil
	case "smtp":
		return NewSMTPMailer(&cfg.Mail, logger)
	default:
		return nil, fmt.Errorf("unsupported mail transport: %s (supported: smtp, memory)", cfg.Mail.Transport)
	}
}

var Module = fx.Options(
	fx.Provide(ProvideMailer),
)
