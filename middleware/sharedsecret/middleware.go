package sharedsecret

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const HeaderName = "X-Auth"

// Require rejects any request whose X-Auth header does not match the shared
// secret. The check runs before any body parsing or database access, and uses
// a constant-time comparison.
func Require(secret string) echo.MiddlewareFunc {
	secretBytes := []byte(secret)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if secret == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			presented := []byte(c.Request().Header.Get(HeaderName))
			if subtle.ConstantTimeCompare(presented, secretBytes) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			return next(c)
		}
	}
}
