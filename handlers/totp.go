package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/middleware/bearer"
	"github.com/rideway/rideway/services/totp"
)

// SetupTOTP creates a pending secret for the caller. The secret only becomes
// active once Enable proves the authenticator holds it.
func (h *Handler) SetupTOTP(c echo.Context) error {
	userID := bearer.GetUserID(c)

	user, err := h.authSvc.GetUserByID(userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to load account"})
	}

	secret, err := h.totpSvc.GenerateSecret(userID, user.Email)
	if err != nil {
		if errors.Is(err, totp.ErrSecretExists) {
			return c.JSON(http.StatusConflict, map[string]any{"error": "two-factor authentication is already enabled"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to generate secret"})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"secret":           secret.Secret,
		"provisioning_uri": h.totpSvc.ProvisioningURI(secret, user.Email),
	})
}

type totpCodeRequest struct {
	Code string `json:"code"`
}

func (h *Handler) EnableTOTP(c echo.Context) error {
	var req totpCodeRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "code is required"})
	}

	if err := h.totpSvc.Enable(bearer.GetUserID(c), req.Code); err != nil {
		switch {
		case errors.Is(err, totp.ErrInvalidCode):
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid code"})
		case errors.Is(err, totp.ErrSecretNotFound):
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "no pending secret, call setup first"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to enable two-factor authentication"})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"enabled": true})
}

// DisableTOTP requires a current code so a stolen session cannot silently
// strip the second factor.
func (h *Handler) DisableTOTP(c echo.Context) error {
	var req totpCodeRequest
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "code is required"})
	}

	userID := bearer.GetUserID(c)
	if err := h.totpSvc.VerifyCode(userID, req.Code); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid code"})
	}

	if err := h.totpSvc.Disable(userID); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to disable two-factor authentication"})
	}

	return c.JSON(http.StatusOK, map[string]any{"enabled": false})
}

func (h *Handler) TOTPStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"enabled": h.totpSvc.IsEnabled(bearer.GetUserID(c)),
	})
}
