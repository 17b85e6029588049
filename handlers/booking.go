package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/middleware/bearer"
	"github.com/rideway/rideway/services/booking"
)

type createBookingRequest struct {
	PickupLocation  string    `json:"pickup_location"`
	DropoffLocation string    `json:"dropoff_location"`
	ScheduledAt     time.Time `json:"scheduled_at"`
	Passengers      int       `json:"passengers"`
	PriceCents      int64     `json:"price_cents"`
	Currency        string    `json:"currency"`
}

func (h *Handler) CreateBooking(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid request body"})
	}

	if req.PickupLocation == "" || req.DropoffLocation == "" {
		return c.JSON(http.StatusBadRequest, map[string]any{"error": "pickup and dropoff locations are required"})
	}

	result, err := h.bookingSvc.Create(booking.CreateInput{
		UserID:          bearer.GetUserID(c),
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		ScheduledAt:     req.ScheduledAt,
		Passengers:      req.Passengers,
		PriceCents:      req.PriceCents,
		Currency:        req.Currency,
	})
	if err != nil {
		if errors.Is(err, booking.ErrPastSchedule) {
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "scheduled time must be in the future"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to create booking"})
	}

	return c.JSON(http.StatusCreated, map[string]any{"booking": result})
}

func (h *Handler) ListBookings(c echo.Context) error {
	bookings, err := h.bookingSvc.ListForUser(c.Request().Context(), bearer.GetUserID(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to list bookings"})
	}

	return c.JSON(http.StatusOK, map[string]any{"bookings": bookings})
}

func (h *Handler) GetBooking(c echo.Context) error {
	result, err := h.bookingSvc.GetByReference(bearer.GetUserID(c), c.Param("reference"))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidReference):
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid booking reference"})
		case errors.Is(err, booking.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, map[string]any{"error": "booking not found"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to load booking"})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"booking": result})
}

func (h *Handler) CancelBooking(c echo.Context) error {
	result, err := h.bookingSvc.Cancel(bearer.GetUserID(c), c.Param("reference"))
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidReference):
			return c.JSON(http.StatusBadRequest, map[string]any{"error": "invalid booking reference"})
		case errors.Is(err, booking.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, map[string]any{"error": "booking not found"})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]any{"error": "failed to cancel booking"})
		}
	}

	return c.JSON(http.StatusOK, map[string]any{"booking": result})
}
