package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/services/consent"
)

func (h *Handler) GetConsent(c echo.Context) error {
	prefs := h.consentSvc.FromRequest(c.Request())
	return c.JSON(http.StatusOK, prefs)
}

type setConsentRequest struct {
	Analytics   bool `json:"analytics"`
	Marketing   bool `json:"marketing"`
	Preferences bool `json:"preferences"`
}

func (h *Handler) SetConsent(c echo.Context) error {
	var req setConsentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	stored := h.consentSvc.Set(c.Response(), consent.Preferences{
		Analytics:   req.Analytics,
		Marketing:   req.Marketing,
		Preferences: req.Preferences,
	})

	return c.JSON(http.StatusOK, stored)
}
