package session

import (
	"time"

	"github.com/labstack/echo/v4"
)

const (
	UserIDKey        = "_user_id"
	AuthenticatedKey = "_authenticated"
)

// Login binds the dashboard user to the current cookie session and records a
// tracking row for the sessions page.
func Login(c echo.Context, userID uint) {
	manager := GetManager(c)
	if manager == nil {
		return
	}

	ctx := c.Request().Context()
	manager.Put(ctx, UserIDKey, userID)
	manager.Put(ctx, AuthenticatedKey, true)

	if svc := GetService(c); svc != nil {
		if token := manager.Token(ctx); token != "" {
			expiresAt := time.Now().Add(manager.config.MaxAge)
			_ = svc.Track(userID, token, SessionTypeWeb, c.RealIP(), c.Request().UserAgent(), expiresAt)
		}
	}
}

// Logout destroys the cookie session and removes its tracking row.
func Logout(c echo.Context) {
	manager := GetManager(c)
	if manager == nil {
		return
	}

	ctx := c.Request().Context()

	if svc := GetService(c); svc != nil {
		if token := manager.Token(ctx); token != "" {
			_ = svc.RemoveByToken(token)
		}
	}

	manager.Remove(ctx, UserIDKey)
	manager.Remove(ctx, AuthenticatedKey)
	_ = manager.Destroy(ctx)
}

func GetUserID(c echo.Context) uint {
	manager := GetManager(c)
	if manager == nil {
		return 0
	}

	switch v := manager.Get(c.Request().Context(), UserIDKey).(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case int64:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return 0
	}
}

func IsAuthenticated(c echo.Context) bool {
	manager := GetManager(c)
	if manager == nil {
		return false
	}
	return manager.GetBool(c.Request().Context(), AuthenticatedKey)
}

func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return echo.NewHTTPError(401, "Authentication required")
			}
			return next(c)
		}
	}
}
