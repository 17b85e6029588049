package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/config"
)

// CORS reflects allow-listed origins back to the caller. Requests from any
// other origin get the configured default origin instead of being refused,
// so browsers surface a CORS failure rather than a network error.
func CORS(cfg *config.Config) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
	for _, origin := range cfg.CORS.AllowedOrigins {
		allowed[origin] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)

			responseOrigin := cfg.CORS.DefaultOrigin
			if _, ok := allowed[origin]; ok {
				responseOrigin = origin
			}

			h := c.Response().Header()
			h.Set(echo.HeaderAccessControlAllowOrigin, responseOrigin)
			h.Set(echo.HeaderAccessControlAllowHeaders, "Authorization, X-Auth, Content-Type")
			h.Set(echo.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
			h.Set(echo.HeaderVary, echo.HeaderOrigin)

			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
