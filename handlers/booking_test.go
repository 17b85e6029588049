package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/rideway/rideway/services/booking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (h *harness) createBooking(t *testing.T, accessToken string) map[string]any {
	rec := h.do(t, http.MethodPost, "/bookings", map[string]any{
		"pickup_location":  "Airport T1",
		"dropoff_location": "Hotel Central",
		"scheduled_at":     time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"passengers":       2,
		"price_cents":      4500,
		"currency":         "EUR",
	}, requestOptions{bearer: accessToken})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody(t, rec)["booking"].(map[string]any)
}

func TestCreateBooking(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "trip@example.com", "password1")
	accessToken, _ := h.signIn(t, "trip@example.com", "password1")

	t.Run("requires an access token", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/bookings", map[string]any{}, requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("issues a well formed reference", func(t *testing.T) {
		created := h.createBooking(t, accessToken)
		assert.True(t, booking.ValidReference(created["reference"].(string)))
		assert.Equal(t, "pending", created["status"])
	})

	t.Run("past schedule is rejected", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/bookings", map[string]any{
			"pickup_location":  "A",
			"dropoff_location": "B",
			"scheduled_at":     time.Now().Add(-time.Hour).Format(time.RFC3339),
		}, requestOptions{bearer: accessToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "future")
	})

	t.Run("missing locations are rejected", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/bookings", map[string]any{
			"scheduled_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		}, requestOptions{bearer: accessToken})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestListBookings_ScopedToCaller(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "mine@example.com", "password1")
	h.createUser(t, "theirs@example.com", "password1")
	mine, _ := h.signIn(t, "mine@example.com", "password1")
	theirs, _ := h.signIn(t, "theirs@example.com", "password1")

	h.createBooking(t, mine)
	h.createBooking(t, mine)
	h.createBooking(t, theirs)

	rec := h.do(t, http.MethodGet, "/bookings", nil, requestOptions{bearer: mine})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["bookings"], 2)
}

func TestGetBooking(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "fetch@example.com", "password1")
	h.createUser(t, "peek@example.com", "password1")
	owner, _ := h.signIn(t, "fetch@example.com", "password1")
	stranger, _ := h.signIn(t, "peek@example.com", "password1")

	reference := h.createBooking(t, owner)["reference"].(string)

	t.Run("owner can fetch by reference", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/bookings/"+reference, nil, requestOptions{bearer: owner})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, reference, decodeBody(t, rec)["booking"].(map[string]any)["reference"])
	})

	t.Run("another user's fetch is not found", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/bookings/"+reference, nil, requestOptions{bearer: stranger})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed reference is a bad request", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/bookings/not-a-ref", nil, requestOptions{bearer: owner})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("well formed but unknown reference is not found", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/bookings/0000a0", nil, requestOptions{bearer: owner})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCancelBooking(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "cancel@example.com", "password1")
	accessToken, _ := h.signIn(t, "cancel@example.com", "password1")
	reference := h.createBooking(t, accessToken)["reference"].(string)

	rec := h.do(t, http.MethodDelete, "/bookings/"+reference, nil, requestOptions{bearer: accessToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decodeBody(t, rec)["booking"].(map[string]any)["status"])

	t.Run("cancelling again is a no-op", func(t *testing.T) {
		rec := h.do(t, http.MethodDelete, "/bookings/"+reference, nil, requestOptions{bearer: accessToken})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "cancelled", decodeBody(t, rec)["booking"].(map[string]any)["status"])
	})
}
