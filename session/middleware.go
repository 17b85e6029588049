package session

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	managerKey = "session_manager"
	serviceKey = "session_service"
)

// Middleware bridges scs's net/http LoadAndSave into the echo chain.
func Middleware(manager *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if manager == nil {
				return next(c)
			}

			c.Set(managerKey, manager)

			var handlerErr error

			rw := &responseWriterWrapper{
				ResponseWriter: c.Response().Writer,
				echo:           c.Response(),
			}

			handler := manager.SessionManager.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := context.WithValue(r.Context(), contextKey{}, manager)
				c.SetRequest(r.WithContext(ctx))
				c.Response().Writer = w
				handlerErr = next(c)
			}))

			handler.ServeHTTP(rw, c.Request())
			return handlerErr
		}
	}
}

type contextKey struct{}

// responseWriterWrapper keeps echo's status bookkeeping accurate when scs
// writes headers directly.
type responseWriterWrapper struct {
	http.ResponseWriter
	echo *echo.Response
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	if w.echo.Status == 0 {
		w.echo.Status = statusCode
	}
	w.ResponseWriter.WriteHeader(statusCode)
}

func GetManager(c echo.Context) *Manager {
	if manager, ok := c.Get(managerKey).(*Manager); ok {
		return manager
	}
	return nil
}

// ServiceMiddleware injects the session service and backfills a tracking row
// for authenticated requests whose session predates tracking.
func ServiceMiddleware(svc Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if svc != nil {
				c.Set(serviceKey, svc)
			}

			err := next(c)

			if svc != nil && IsAuthenticated(c) {
				manager := GetManager(c)
				if manager == nil {
					return err
				}

				token := manager.Token(c.Request().Context())
				if token == "" {
					return err
				}

				exists, checkErr := svc.Exists(token)
				if checkErr == nil && !exists {
					if userID := GetUserID(c); userID > 0 {
						expiresAt := time.Now().Add(manager.config.MaxAge)
						_ = svc.Track(userID, token, SessionTypeWeb, c.RealIP(), c.Request().UserAgent(), expiresAt)
					}
				}
			}

			return err
		}
	}
}

func GetService(c echo.Context) Service {
	if svc, ok := c.Get(serviceKey).(Service); ok {
		return svc
	}
	return nil
}
