package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConsent_Defaults(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/consent", nil, requestOptions{})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["necessary"])
	assert.Equal(t, false, body["analytics"])
	assert.Equal(t, false, body["marketing"])
}

func TestSetConsent_RoundTrip(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/consent",
		map[string]bool{"analytics": true, "marketing": false, "preferences": true},
		requestOptions{})
	require.Equal(t, http.StatusOK, rec.Code)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == h.cfg.Consent.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	// Read it back the way a browser would.
	req := httptest.NewRequest(http.MethodGet, "/consent", nil)
	req.AddCookie(cookie)
	readBack := httptest.NewRecorder()
	h.srv.Echo().ServeHTTP(readBack, req)
	require.Equal(t, http.StatusOK, readBack.Code)

	body := decodeBody(t, readBack)
	assert.Equal(t, true, body["necessary"])
	assert.Equal(t, true, body["analytics"])
	assert.Equal(t, false, body["marketing"])
	assert.Equal(t, true, body["preferences"])
	assert.NotEmpty(t, body["decidedAt"])
}
