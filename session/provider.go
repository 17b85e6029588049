package session

import (
	"fmt"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/rideway/rideway/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Manager struct {
	*scs.SessionManager
	config config.SessionConfig
}

func ProvideManager(cfg *config.Config, db *gorm.DB) (*Manager, error) {
	if !cfg.Session.Enabled {
		return nil, nil
	}

	manager := scs.New()

	var store scs.Store
	var err error

	switch cfg.Session.Store {
	case "memory":
		store = NewMemoryStore()
	case "database":
		if db == nil {
			return nil, fmt.Errorf("database session store requires a database")
		}
		store, err = NewDatabaseStore(db)
		if err != nil {
			return nil, fmt.Errorf("failed to create database session store: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported session store: %s", cfg.Session.Store)
	}

	manager.Store = store
	manager.Lifetime = cfg.Session.MaxAge
	manager.IdleTimeout = cfg.Session.MaxAge
	manager.Cookie.Name = cfg.Session.Name
	manager.Cookie.Path = cfg.Session.Path
	manager.Cookie.Domain = cfg.Session.Domain
	manager.Cookie.Secure = cfg.Session.Secure
	manager.Cookie.HttpOnly = cfg.Session.HttpOnly

	switch cfg.Session.SameSite {
	case "strict":
		manager.Cookie.SameSite = http.SameSiteStrictMode
	case "none":
		manager.Cookie.SameSite = http.SameSiteNoneMode
	default:
		manager.Cookie.SameSite = http.SameSiteLaxMode
	}

	return &Manager{
		SessionManager: manager,
		config:         cfg.Session,
	}, nil
}

func ProvideService(db *gorm.DB, manager *Manager) Service {
	if db == nil || manager == nil {
		return nil
	}
	return NewService(db, manager)
}

type OptionalTokenRevoker struct {
	fx.In
	TokenRevoker TokenRevoker `optional:"true"`
}

type OptionalRefreshTokenRevoker struct {
	fx.In
	RefreshTokenRevoker RefreshTokenRevoker `optional:"true"`
}

func WireTokenRevoker(sessionSvc Service, opt OptionalTokenRevoker) {
	if sessionSvc != nil && opt.TokenRevoker != nil {
		if svc, ok := sessionSvc.(*service); ok {
			svc.SetTokenRevoker(opt.TokenRevoker)
		}
	}
}

func WireRefreshTokenRevoker(sessionSvc Service, opt OptionalRefreshTokenRevoker) {
	if sessionSvc != nil && opt.RefreshTokenRevoker != nil {
		if svc, ok := sessionSvc.(*service); ok {
			svc.SetRefreshTokenRevoker(opt.RefreshTokenRevoker)
		}
	}
}

var Module = fx.Module("session",
	fx.Provide(ProvideManager),
	fx.Provide(ProvideService),
	fx.Invoke(WireTokenRevoker),
	fx.Invoke(WireRefreshTokenRevoker),
)
