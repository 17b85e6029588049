package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/middleware/bearer"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/refreshtoken"
)

type signUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	InviteCode string `json:"invite_code"`
}

func (h *Handler) SignUp(c echo.Context) error {
	var req signUpRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	user, err := h.authSvc.SignUp(auth.SignUpInput{
		Email:      req.Email,
		Password:   req.Password,
		Name:       req.Name,
		Phone:      req.Phone,
		InviteCode: req.InviteCode,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrAccountExists):
			return c.JSON(http.StatusConflict, map[string]any{"error": err.Error()})
		case errors.Is(err, auth.ErrInviteCodeInvalid),
			errors.Is(err, auth.ErrInviteCodeExpired),
			errors.Is(err, auth.ErrInviteCodeUsed):
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		case errors.Is(err, auth.ErrPasswordHashingFailed):
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to create account"})
		default:
			return c.JSON(http.StatusBadRequest, map[string]any{"error": err.Error()})
		}
	}

	return c.JSON(http.StatusCreated, map[string]any{"user": user})
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code"`
}

func (h *Handler) SignIn(c echo.Context) error {
	var req signInRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	user, err := h.authSvc.SignIn(req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]any{"error": "invalid credentials"})
	}

	if h.cfg.TOTP.Enabled && h.totpSvc != nil && h.totpSvc.IsEnabled(user.ID) {
		if req.TOTPCode == "" {
			return c.JSON(http.StatusUnauthorized, map[string]any{
				"error":         "two-factor code required",
				"totp_required": true,
			})
		}
		if err := h.totpSvc.VerifyCode(user.ID, req.TOTPCode); err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "invalid two-factor code"})
		}
	}

	accessToken, err := h.jwtSvc.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to issue tokens"})
	}

	refreshData, err := h.refreshSvc.Generate(user.ID, user.Role, c.Request().UserAgent())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to issue tokens"})
	}

	if h.sessionSvc != nil {
		_ = h.sessionSvc.TrackJWT(user.ID, refreshData.Token, c.RealIP(), c.Request().UserAgent(), refreshData.ExpiresAt)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token":  accessToken,
		"refresh_token": refreshData.Token,
		"expires_in":    h.jwtSvc.GetAccessExpirySeconds(),
		"user":          user,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *Handler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "refresh_token is required"})
	}

	result, err := h.refreshSvc.Rotate(req.RefreshToken, h.jwtSvc)
	if err != nil {
		switch {
		case errors.Is(err, refreshtoken.ErrTokenNotFound),
			errors.Is(err, refreshtoken.ErrTokenExpired):
			return c.JSON(http.StatusUnauthorized, map[string]any{"error": "invalid refresh token"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to refresh session"})
		}
	}

	if h.sessionSvc != nil {
		_ = h.sessionSvc.RotateJWT(req.RefreshToken, result.RefreshToken, result.ExpiresAt)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"access_token":  result.AccessToken,
		"refresh_token": result.RefreshToken,
		"expires_in":    h.jwtSvc.GetAccessExpirySeconds(),
	})
}

type signOutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// SignOut revokes the presented access token and, when supplied, deletes the
// refresh token and its session row.
func (h *Handler) SignOut(c echo.Context) error {
	var req signOutRequest
	_ = c.Bind(&req)

	authHeader := c.Request().Header.Get("Authorization")
	if len(authHeader) > len("Bearer ") {
		_ = h.jwtSvc.RevokeToken(authHeader[len("Bearer "):])
	}

	if req.RefreshToken != "" {
		_ = h.refreshSvc.Revoke(req.RefreshToken)
		if h.sessionSvc != nil {
			_ = h.sessionSvc.RemoveByRefreshToken(req.RefreshToken)
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) GetProfile(c echo.Context) error {
	userID := bearer.GetUserID(c)

	profile, err := h.authSvc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to load profile"})
	}

	return c.JSON(http.StatusOK, map[string]any{"profile": profile})
}

type updateProfileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	user, err := h.authSvc.UpdateProfile(bearer.GetUserID(c), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, map[string]any{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to update profile"})
	}

	return c.JSON(http.StatusOK, map[string]any{"user": user})
}
