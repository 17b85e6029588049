package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/services/passwordreset"
)

const emailTypePasswordReset = "PWReset"

type emailWebhookRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	ResetLink string `json:"reset_link"`
	EmailType string `json:"email_type"`
}

// EmailWebhook accepts the SPA's transactional email request. Only the
// password reset email type exists; anything else is refused.
//
// The response for an unknown account is identical to the success response,
// so this route cannot be used to probe which emails are registered.
func (h *Handler) EmailWebhook(c echo.Context) error {
	var req emailWebhookRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	if req.EmailType != emailTypePasswordReset {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "unsupported email type"})
	}

	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "email is required"})
	}

	result, err := h.resetSvc.Request(req.Email, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to process request"})
	}

	if result.RateLimited {
		return c.JSON(http.StatusTooManyRequests, map[string]any{
			"error":              "too many reset requests",
			"nextAllowedAttempt": result.NextAllowedAttempt,
		})
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "check your email",
	})
}

type verifyResetTokenRequest struct {
	Token  string `json:"token"`
	Action string `json:"action"`
}

func (h *Handler) VerifyResetToken(c echo.Context) error {
	var req verifyResetTokenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	if req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "token is required"})
	}

	switch req.Action {
	case "verify":
		email, err := h.resetSvc.Verify(req.Token)
		if err != nil {
			return c.JSON(http.StatusOK, map[string]any{"valid": false, "error": resetTokenFailure(err)})
		}
		return c.JSON(http.StatusOK, map[string]any{"valid": true, "email": email})
	case "consume":
		email, err := h.resetSvc.Consume(req.Token)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": resetTokenFailure(err)})
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "email": email})
	default:
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "unknown action"})
	}
}

type resetPasswordRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Token    string `json:"token"`
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	if req.Email == "" || req.Password == "" || req.Token == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "email, password and token are required"})
	}

	if err := h.authSvc.ValidatePassword(req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": err.Error()})
	}

	if err := h.resetSvc.ResetPassword(req.Email, req.Password, req.Token); err != nil {
		switch {
		case errors.Is(err, passwordreset.ErrTokenInvalid),
			errors.Is(err, passwordreset.ErrTokenExpired),
			errors.Is(err, passwordreset.ErrTokenUsed):
			return c.JSON(http.StatusBadRequest, map[string]any{"success": false, "error": resetTokenFailure(err)})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "failed to reset password"})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

func resetTokenFailure(err error) string {
	switch {
	case errors.Is(err, passwordreset.ErrTokenExpired):
		return "expired"
	case errors.Is(err, passwordreset.ErrTokenUsed):
		return "already used"
	default:
		return "invalid"
	}
}
