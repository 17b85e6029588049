package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/services/verification"
)

type verificationRequest struct {
	Action         string `json:"action"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	UserID         *uint  `json:"user_id"`
	Token          string `json:"token"`
	VerificationID string `json:"verificationId"`
}

// EmailVerification is the single function route behind the SPA's
// verification flow. The action field selects the operation.
func (h *Handler) EmailVerification(c echo.Context) error {
	var req verificationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	switch req.Action {
	case "send-otp":
		return h.sendOTP(c, req)
	case "verify-otp":
		return h.verifyOTP(c, req)
	case "verify-magic-link":
		return h.verifyMagicLink(c, req)
	case "check-verification":
		return h.checkVerification(c, req)
	default:
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "unknown action"})
	}
}

func (h *Handler) sendOTP(c echo.Context, req verificationRequest) error {
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "email is required"})
	}

	result, err := h.verificationSvc.SendOTP(req.Email, req.Name, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, verification.ErrResendTooSoon):
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error": "please wait before requesting another code",
			})
		case errors.Is(err, verification.ErrRateLimited):
			return c.JSON(http.StatusTooManyRequests, map[string]any{
				"error": "too many verification emails requested, try again later",
			})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to send verification code"})
		}
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) verifyOTP(c echo.Context, req verificationRequest) error {
	if req.VerificationID == "" || req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "token and verificationId are required"})
	}

	if err := h.verificationSvc.VerifyOTP(req.Token, req.VerificationID); err != nil {
		return h.verificationFailure(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) verifyMagicLink(c echo.Context, req verificationRequest) error {
	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "token is required"})
	}

	if err := h.verificationSvc.VerifyMagicToken(req.Token); err != nil {
		return h.verificationFailure(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) verificationFailure(c echo.Context, err error) error {
	switch {
	case errors.Is(err, verification.ErrCodeExpired):
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "EXPIRED"})
	case errors.Is(err, verification.ErrCodeInvalid):
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": "INVALID"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "verification failed"})
	}
}

func (h *Handler) checkVerification(c echo.Context, req verificationRequest) error {
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "email is required"})
	}

	status, err := h.verificationSvc.CheckStatus(req.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to check verification status"})
	}

	return c.JSON(http.StatusOK, status)
}
