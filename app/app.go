package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/database"
	"github.com/rideway/rideway/handlers"
	"github.com/rideway/rideway/server"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/booking"
	"github.com/rideway/rideway/services/consent"
	"github.com/rideway/rideway/services/jwt"
	"github.com/rideway/rideway/services/logging"
	"github.com/rideway/rideway/services/mail"
	"github.com/rideway/rideway/services/passwordreset"
	"github.com/rideway/rideway/services/refreshtoken"
	"github.com/rideway/rideway/services/revocation"
	"github.com/rideway/rideway/services/totp"
	"github.com/rideway/rideway/services/verification"
	"github.com/rideway/rideway/session"
	"go.uber.org/fx"
)

// Models lists every persisted type so the database module can migrate them
// at startup. Revocation and session rows manage their own migration.
func Models() []any {
	return []any{
		&auth.User{},
		&auth.InviteCode{},
		&verification.EmailVerification{},
		&passwordreset.PasswordResetToken{},
		&passwordreset.PasswordResetAttempt{},
		&booking.Booking{},
		&refreshtoken.RefreshToken{},
		&totp.TOTPSecret{},
		&totp.UsedCode{},
		&session.UserSession{},
	}
}

// Options assembles the full dependency graph. A nil cfg reads the
// environment; tests pass a fixture instead.
func Options(cfg *config.Config) []fx.Option {
	return []fx.Option{
		config.NewProvider(cfg),
		logging.Module,
		fx.Provide(func() *database.ModelsOption {
			return database.WithModels(Models()...)
		}),
		database.Module,
		mail.Module,
		auth.Module,
		verification.Module,
		passwordreset.Module,
		booking.Module,
		jwt.Module,
		revocation.Module,
		refreshtoken.Module,
		totp.Module,
		consent.Module,
		session.Module,
		fx.Provide(
			func(svc *jwt.Service) session.TokenRevoker { return svc },
			func(svc *refreshtoken.Service) session.RefreshTokenRevoker { return svc },
		),
		server.Module,
		fx.Invoke(func(srv *server.Server, manager *session.Manager, sessionSvc session.Service) {
			if manager == nil {
				return
			}
			srv.Use(session.Middleware(manager))
			if sessionSvc != nil {
				srv.Use(session.ServiceMiddleware(sessionSvc))
			}
		}),
		handlers.Module,
	}
}

type App struct {
	fx     *fx.App
	logger *logging.Service
}

func New(cfg *config.Config) *App {
	a := &App{}

	opts := append(Options(cfg),
		fx.Populate(&a.logger),
	)
	a.fx = fx.New(opts...)
	return a
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop(ctx context.Context) error {
	return a.fx.Stop(ctx)
}

// Run starts the application and blocks until SIGINT or SIGTERM, then shuts
// down with a bounded grace period.
func (a *App) Run() {
	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Start(startCtx); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	if a.logger != nil {
		a.logger.Info("shutdown signal received, stopping")
	} else {
		log.Printf("received %v, shutting down", sig)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.Stop(stopCtx); err != nil {
		if a.logger != nil {
			a.logger.Error("failed to stop application gracefully")
		} else {
			log.Printf("failed to stop application gracefully: %v", err)
		}
	}

	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
