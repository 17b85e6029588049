package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/middleware/bearer"
	"github.com/rideway/rideway/middleware/ratelimit"
	"github.com/rideway/rideway/middleware/sharedsecret"
	"github.com/rideway/rideway/openapi"
	"github.com/rideway/rideway/server"
)

// Register wires every route. The function routes carry the shared secret
// check first, then the anon-key check, then rate limiting; user routes
// require an access token instead.
func (h *Handler) Register(srv *server.Server) {
	srv.Get("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	openapi.Register(srv.Echo(), openapi.Document(h.cfg))

	limiter := func() echo.MiddlewareFunc {
		return ratelimit.Middleware(&ratelimit.Config{
			Store:        ratelimit.NewStore(&h.cfg.RateLimit),
			Rate:         h.cfg.RateLimit.Rate,
			Period:       h.cfg.RateLimit.Period,
			CountMode:    h.cfg.RateLimit.CountMode,
			KeyGenerator: ratelimit.EndpointKeyGenerator,
		})
	}

	functions := srv.Group("",
		sharedsecret.Require(h.cfg.Server.SharedSecret),
		bearer.RequireAnonKey(h.jwtSvc),
	)
	functions.POST("/email-verification", h.EmailVerification, limiter())
	functions.POST("/email-webhook", h.EmailWebhook, limiter())
	functions.POST("/verify-reset-token", h.VerifyResetToken, limiter())
	functions.POST("/reset-password", h.ResetPassword, limiter())

	authGroup := srv.Group("/auth", bearer.RequireAnonKey(h.jwtSvc))
	authGroup.POST("/signup", h.SignUp, limiter())
	authGroup.POST("/signin", h.SignIn, limiter())
	authGroup.POST("/refresh", h.Refresh)

	authed := srv.Group("/auth", bearer.RequireAccessToken(h.jwtSvc))
	authed.POST("/signout", h.SignOut)
	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.GET("/totp", h.TOTPStatus)
	authed.POST("/totp/setup", h.SetupTOTP)
	authed.POST("/totp/enable", h.EnableTOTP)
	authed.POST("/totp/disable", h.DisableTOTP)

	bookings := srv.Group("/bookings", bearer.RequireAccessToken(h.jwtSvc))
	bookings.GET("", h.ListBookings)
	bookings.POST("", h.CreateBooking)
	bookings.GET("/:reference", h.GetBooking)
	bookings.DELETE("/:reference", h.CancelBooking)

	srv.Get("/consent", h.GetConsent)
	srv.Post("/consent", h.SetConsent)
}
