package handlers

import (
	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/server"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/booking"
	"github.com/rideway/rideway/services/consent"
	"github.com/rideway/rideway/services/jwt"
	"github.com/rideway/rideway/services/logging"
	"github.com/rideway/rideway/services/passwordreset"
	"github.com/rideway/rideway/services/refreshtoken"
	"github.com/rideway/rideway/services/totp"
	"github.com/rideway/rideway/services/verification"
	"github.com/rideway/rideway/session"
	"go.uber.org/fx"
)

type HandlerParams struct {
	fx.In

	Config          *config.Config
	Logger          *logging.Service
	AuthService     *auth.Service
	Verification    *verification.Service
	PasswordReset   *passwordreset.Service
	BookingService  *booking.Service
	ConsentService  *consent.Service
	JWTService      *jwt.Service
	RefreshTokens   *refreshtoken.Service
	TOTPService     *totp.Service
	SessionsService session.Service `optional:"true"`
}

func ProvideHandler(p HandlerParams) *Handler {
	return New(Params{
		Config:          p.Config,
		Logger:          p.Logger,
		AuthService:     p.AuthService,
		Verification:    p.Verification,
		PasswordReset:   p.PasswordReset,
		BookingService:  p.BookingService,
		ConsentService:  p.ConsentService,
		JWTService:      p.JWTService,
		RefreshTokens:   p.RefreshTokens,
		TOTPService:     p.TOTPService,
		SessionsService: p.SessionsService,
	})
}

func RegisterRoutes(h *Handler, srv *server.Server) {
	h.Register(srv)
}

var Module = fx.Options(
	fx.Provide(ProvideHandler),
	fx.Invoke(RegisterRoutes),
)
