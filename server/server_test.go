package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rideway/rideway/testutils"
	"github.com/stretchr/testify/assert"
)

func newTestServer() *Server {
	cfg := testutils.GetTestConfig()
	cfg.CORS.AllowedOrigins = []string{"https://app.rideway.example"}
	cfg.CORS.DefaultOrigin = "https://rideway.example"

	srv := New(cfg, nil)
	srv.Get("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})
	return srv
}

func TestServer_Routing(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestCORS_AllowedOriginReflected(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.rideway.example")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, "https://app.rideway.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS_UnlistedOriginGetsDefault(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://evil.example")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, "https://rideway.example", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set(echo.HeaderOrigin, "https://app.rideway.example")
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowHeaders), "X-Auth")
}
