package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/rideway/rideway/services/passwordreset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailWebhook_OnlyPasswordResetType(t *testing.T) {
	h := newHarness(t)

	rec := h.functionCall(t, "/email-webhook",
		map[string]string{"email_type": "Welcome", "email": "a@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported email type")
}

func TestEmailWebhook_AntiEnumeration(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "known@example.com", "password1")

	known := h.functionCall(t, "/email-webhook",
		map[string]string{"email_type": "PWReset", "email": "known@example.com", "name": "Known"})
	unknown := h.functionCall(t, "/email-webhook",
		map[string]string{"email_type": "PWReset", "email": "nobody@example.com", "name": "Nobody"})

	// Known and unknown accounts get byte-identical responses.
	assert.Equal(t, http.StatusOK, known.Code)
	assert.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, known.Body.String(), unknown.Body.String())

	// But only the known account got an email and a token row.
	assert.Len(t, h.mailer.Messages(), 1)

	var count int64
	require.NoError(t, h.db.Model(&passwordreset.PasswordResetToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestEmailWebhook_RateLimited(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "busy@example.com", "password1")

	for i := 0; i < h.cfg.PasswordReset.MaxRequestsPerHour; i++ {
		rec := h.functionCall(t, "/email-webhook",
			map[string]string{"email_type": "PWReset", "email": "busy@example.com"})
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := h.functionCall(t, "/email-webhook",
		map[string]string{"email_type": "PWReset", "email": "busy@example.com"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["nextAllowedAttempt"])
}

// requestResetToken drives the webhook for a known user and pulls the raw
// token back out of the database, as only the email body carries it.
func (h *harness) requestResetToken(t *testing.T, email string) string {
	rec := h.functionCall(t, "/email-webhook",
		map[string]string{"email_type": "PWReset", "email": email})
	require.Equal(t, http.StatusOK, rec.Code)

	var row passwordreset.PasswordResetToken
	require.NoError(t, h.db.Where("email = ?", email).Order("created_at DESC").First(&row).Error)
	return row.Token
}

func TestVerifyResetToken(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "reset@example.com", "password1")
	token := h.requestResetToken(t, "reset@example.com")

	t.Run("verify does not consume", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			rec := h.functionCall(t, "/verify-reset-token",
				map[string]string{"action": "verify", "token": token})
			require.Equal(t, http.StatusOK, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, true, body["valid"])
			assert.Equal(t, "reset@example.com", body["email"])
		}
	})

	t.Run("unknown token reports invalid with 200", func(t *testing.T) {
		rec := h.functionCall(t, "/verify-reset-token",
			map[string]string{"action": "verify", "token": "no-such-token"})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["valid"])
		assert.Equal(t, "invalid", body["error"])
	})

	t.Run("consume is single use", func(t *testing.T) {
		rec := h.functionCall(t, "/verify-reset-token",
			map[string]string{"action": "consume", "token": token})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["success"])

		rec = h.functionCall(t, "/verify-reset-token",
			map[string]string{"action": "consume", "token": token})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "already used", decodeBody(t, rec)["error"])
	})
}

func TestVerifyResetToken_Expired(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "late@example.com", "password1")
	token := h.requestResetToken(t, "late@example.com")

	require.NoError(t, h.db.Model(&passwordreset.PasswordResetToken{}).
		Where("token = ?", token).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	rec := h.functionCall(t, "/verify-reset-token",
		map[string]string{"action": "verify", "token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", decodeBody(t, rec)["error"])
}

func TestResetPassword_EndToEnd(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "flow@example.com", "oldpassword")
	token := h.requestResetToken(t, "flow@example.com")

	rec := h.functionCall(t, "/reset-password",
		map[string]string{"email": "flow@example.com", "password": "newpassword", "token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	t.Run("new password signs in, old does not", func(t *testing.T) {
		h.signIn(t, "flow@example.com", "newpassword")

		rec := h.do(t, http.MethodPost, "/auth/signin",
			map[string]string{"email": "flow@example.com", "password": "oldpassword"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token cannot be replayed", func(t *testing.T) {
		rec := h.functionCall(t, "/reset-password",
			map[string]string{"email": "flow@example.com", "password": "anotherpass", "token": token})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "already used", decodeBody(t, rec)["error"])
	})
}

func TestResetPassword_WeakPasswordKeepsToken(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "weak@example.com", "password1")
	token := h.requestResetToken(t, "weak@example.com")

	rec := h.functionCall(t, "/reset-password",
		map[string]string{"email": "weak@example.com", "password": "abc", "token": token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected attempt must not have spent the token.
	rec = h.functionCall(t, "/verify-reset-token",
		map[string]string{"action": "verify", "token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["valid"])
}

func TestResetPassword_WrongEmailForToken(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "owner@example.com", "password1")
	h.createUser(t, "other@example.com", "password1")
	token := h.requestResetToken(t, "owner@example.com")

	rec := h.functionCall(t, "/reset-password",
		map[string]string{"email": "other@example.com", "password": "newpassword", "token": token})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", decodeBody(t, rec)["error"])
}
