package consent

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rideway/rideway/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(testutils.GetTestConfig(), nil)
}

func TestService_CookieRoundTrip(t *testing.T) {
	svc := newTestService()

	rec := httptest.NewRecorder()
	want := svc.Set(rec, Preferences{Analytics: true})

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	got := svc.FromRequest(req)
	assert.True(t, got.Necessary)
	assert.True(t, got.Analytics)
	assert.False(t, got.Marketing)
	assert.True(t, got.Decided())
	assert.WithinDuration(t, want.DecidedAt, got.DecidedAt, time.Second)
}

func TestService_MissingCookieIsUndecided(t *testing.T) {
	svc := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	prefs := svc.FromRequest(req)

	assert.True(t, prefs.Necessary)
	assert.False(t, prefs.Decided())
	assert.False(t, prefs.Analytics)
}

func TestService_MalformedCookieFallsBack(t *testing.T) {
	svc := newTestService()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: svc.config.Consent.CookieName, Value: "%%%not-base64%%%"})

	prefs := svc.FromRequest(req)
	assert.False(t, prefs.Decided())
	assert.True(t, prefs.Necessary)
}

func TestService_NecessaryCannotBeWithdrawn(t *testing.T) {
	svc := newTestService()

	rec := httptest.NewRecorder()
	stored := svc.Set(rec, Preferences{Necessary: false, Marketing: true})
	assert.True(t, stored.Necessary)

	decoded, err := svc.Decode(svc.Encode(Preferences{Necessary: false}))
	require.NoError(t, err)
	assert.True(t, decoded.Necessary)
}

func TestService_SubscribeReceivesChanges(t *testing.T) {
	svc := newTestService()

	ch := svc.Subscribe()

	rec := httptest.NewRecorder()
	svc.Set(rec, AcceptAll(time.Now()))

	select {
	case prefs := <-ch:
		assert.True(t, prefs.Analytics)
		assert.True(t, prefs.Marketing)
	case <-time.After(time.Second):
		t.Fatal("expected a consent change notification")
	}
}

func TestPresets(t *testing.T) {
	now := time.Now()

	all := AcceptAll(now)
	assert.True(t, all.Necessary && all.Analytics && all.Marketing && all.Preferences)

	none := RejectAll(now)
	assert.True(t, none.Necessary)
	assert.False(t, none.Analytics || none.Marketing || none.Preferences)
	assert.True(t, none.Decided())
}
