package bearer

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/services/jwt"
)

const (
	UserIDKey = "_bearer_user_id"
	ClaimsKey = "_bearer_claims"
)

func extractToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Authorization header required")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Bearer token required")
	}

	return token, nil
}

func validationError(err error) *echo.HTTPError {
	switch err {
	case jwt.ErrExpiredToken:
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	case jwt.ErrTokenRevoked:
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has been revoked")
	case jwt.ErrWrongTokenType:
		return echo.NewHTTPError(http.StatusUnauthorized, "Wrong token type")
	default:
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
}

// RequireAnonKey gates the function routes: any caller must present the
// frontend's anon key or a user access token. It authenticates the caller,
// not a user.
func RequireAnonKey(jwtService *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				return err
			}

			claims, verr := jwtService.ValidateToken(token)
			if verr != nil {
				return validationError(verr)
			}

			if claims.TokenType != jwt.TypeAnon && claims.TokenType != jwt.TypeAccess {
				return validationError(jwt.ErrWrongTokenType)
			}

			c.Set(ClaimsKey, claims)
			if claims.TokenType == jwt.TypeAccess {
				c.Set(UserIDKey, claims.UserID)
			}

			return next(c)
		}
	}
}

// RequireAccessToken gates user-scoped routes on a valid access token.
func RequireAccessToken(jwtService *jwt.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := extractToken(c)
			if err != nil {
				return err
			}

			claims, verr := jwtService.ValidateTokenOfType(token, jwt.TypeAccess)
			if verr != nil {
				return validationError(verr)
			}

			c.Set(UserIDKey, claims.UserID)
			c.Set(ClaimsKey, claims)

			return next(c)
		}
	}
}

func GetUserID(c echo.Context) uint {
	if userID, ok := c.Get(UserIDKey).(uint); ok {
		return userID
	}
	return 0
}

func GetClaims(c echo.Context) *jwt.Claims {
	if claims, ok := c.Get(ClaimsKey).(*jwt.Claims); ok {
		return claims
	}
	return nil
}
