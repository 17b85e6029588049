package handlers

import (
	"net/http"
	"testing"

	"github.com/rideway/rideway/services/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignUp(t *testing.T) {
	h := newHarness(t)

	t.Run("requires anon key", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "new@example.com", "password": "password1"},
			requestOptions{})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("creates the account", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "NEW@Example.com", "password": "password1", "name": "New Rider"},
			requestOptions{bearer: h.anonKey})
		require.Equal(t, http.StatusCreated, rec.Code)

		user := decodeBody(t, rec)["user"].(map[string]any)
		assert.Equal(t, "new@example.com", user["email"])
		assert.Equal(t, "customer", user["role"])
		assert.Equal(t, false, user["email_verified"])
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "new@example.com", "password": "password1"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("short password is rejected", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "short@example.com", "password": "abc"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSignUp_InviteCodes(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.db.Create(&auth.InviteCode{Code: "DRIVER-1", Role: "driver", Active: true}).Error)

	t.Run("valid invite grants its role", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "driver@example.com", "password": "password1", "invite_code": "DRIVER-1"},
			requestOptions{bearer: h.anonKey})
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "driver", decodeBody(t, rec)["user"].(map[string]any)["role"])
	})

	t.Run("used invite is refused", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "second@example.com", "password": "password1", "invite_code": "DRIVER-1"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown invite is refused", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signup",
			map[string]string{"email": "third@example.com", "password": "password1", "invite_code": "NOPE"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSignIn(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "rider@example.com", "password1")

	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signin",
			map[string]string{"email": "rider@example.com", "password": "password1"},
			requestOptions{bearer: h.anonKey})
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["access_token"])
		assert.NotEmpty(t, body["refresh_token"])
		assert.EqualValues(t, h.cfg.JWT.AccessExpiry.Seconds(), body["expires_in"])
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signin",
			map[string]string{"email": "rider@example.com", "password": "wrong"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown email gets the same unauthorized response", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/signin",
			map[string]string{"email": "ghost@example.com", "password": "password1"},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid credentials")
	})
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "rotate@example.com", "password1")
	_, refreshToken := h.signIn(t, "rotate@example.com", "password1")

	rec := h.do(t, http.MethodPost, "/auth/refresh",
		map[string]string{"refresh_token": refreshToken},
		requestOptions{bearer: h.anonKey})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	newAccess := body["access_token"].(string)
	newRefresh := body["refresh_token"].(string)
	assert.NotEmpty(t, newAccess)
	assert.NotEqual(t, refreshToken, newRefresh)

	t.Run("rotated-out token no longer works", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh",
			map[string]string{"refresh_token": refreshToken},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("new access token reaches user routes", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/profile", nil, requestOptions{bearer: newAccess})
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token is a bad request", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh",
			map[string]string{}, requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSignOut(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "leave@example.com", "password1")
	accessToken, refreshToken := h.signIn(t, "leave@example.com", "password1")

	rec := h.do(t, http.MethodPost, "/auth/signout",
		map[string]string{"refresh_token": refreshToken},
		requestOptions{bearer: accessToken})
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("access token is revoked", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/profile", nil, requestOptions{bearer: accessToken})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token is gone", func(t *testing.T) {
		rec := h.do(t, http.MethodPost, "/auth/refresh",
			map[string]string{"refresh_token": refreshToken},
			requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	h.createUser(t, "profile@example.com", "password1")
	accessToken, _ := h.signIn(t, "profile@example.com", "password1")

	t.Run("anon key is not enough", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/profile", nil, requestOptions{bearer: h.anonKey})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("returns the caller's profile", func(t *testing.T) {
		rec := h.do(t, http.MethodGet, "/auth/profile", nil, requestOptions{bearer: accessToken})
		require.Equal(t, http.StatusOK, rec.Code)

		profile := decodeBody(t, rec)["profile"].(map[string]any)
		assert.Equal(t, "profile@example.com", profile["email"])
	})

	t.Run("update changes name and phone", func(t *testing.T) {
		rec := h.do(t, http.MethodPut, "/auth/profile",
			map[string]string{"name": "Renamed", "phone": "+4470000000"},
			requestOptions{bearer: accessToken})
		require.Equal(t, http.StatusOK, rec.Code)

		user := decodeBody(t, rec)["user"].(map[string]any)
		assert.Equal(t, "Renamed", user["name"])
		assert.Equal(t, "+4470000000", user["phone"])
	})
}
