package handlers

import (
	"github.com/rideway/rideway/config"
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
)

type Handler struct {
	cfg             *config.Config
	logger          *logging.Service
	authSvc         *auth.Service
	verificationSvc *verification.Service
	resetSvc        *passwordreset.Service
	bookingSvc      *booking.Service
	consentSvc      *consent.Service
	jwtSvc          *jwt.Service
	refreshSvc      *refreshtoken.Service
	totpSvc         *totp.Service
	sessionSvc      session.Service
}

type Params struct {
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
	SessionsService session.Service
}

func New(p Params) *Handler {
	return &Handler{
		cfg:             p.Config,
		logger:          p.Logger,
		authSvc:         p.AuthService,
		verificationSvc: p.Verification,
		resetSvc:        p.PasswordReset,
		bookingSvc:      p.BookingService,
		consentSvc:      p.ConsentService,
		jwtSvc:          p.JWTService,
		refreshSvc:      p.RefreshTokens,
		totpSvc:         p.TOTPService,
		sessionSvc:      p.SessionsService,
	}
}
