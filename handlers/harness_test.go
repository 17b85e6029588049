package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rideway/rideway/config"
	"github.com/rideway/rideway/server"
	"github.com/rideway/rideway/services/auth"
	"github.com/rideway/rideway/services/booking"
	"github.com/rideway/rideway/services/consent"
	"github.com/rideway/rideway/services/jwt"
	"github.com/rideway/rideway/services/mail"
	"github.com/rideway/rideway/services/passwordreset"
	"github.com/rideway/rideway/services/refreshtoken"
	"github.com/rideway/rideway/services/revocation"
	"github.com/rideway/rideway/services/totp"
	"github.com/rideway/rideway/services/verification"
	"github.com/rideway/rideway/testutils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type harness struct {
	cfg     *config.Config
	srv     *server.Server
	db      *gorm.DB
	mailer  *mail.MemoryMailer
	authSvc *auth.Service
	jwtSvc  *jwt.Service
	anonKey string
}

func newHarness(t *testing.T) *harness {
	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t,
		&auth.User{}, &auth.InviteCode{},
		&verification.EmailVerification{},
		&passwordreset.PasswordResetToken{}, &passwordreset.PasswordResetAttempt{},
		&booking.Booking{},
		&refreshtoken.RefreshToken{},
		&totp.TOTPSecret{}, &totp.UsedCode{},
	)
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	mailer := mail.NewMemoryMailer()
	authSvc := auth.NewService(cfg, db, nil)
	jwtSvc := jwt.NewService(cfg, nil)
	jwtSvc.SetRevocationService(revocation.NewService(cfg, revocation.NewMemoryStore(nil), nil))

	h := New(Params{
		Config:         cfg,
		AuthService:    authSvc,
		Verification:   verification.NewService(cfg, db, mailer, nil),
		PasswordReset:  passwordreset.NewService(cfg, db, authSvc, mailer, nil),
		BookingService: booking.NewService(cfg, db, nil),
		ConsentService: consent.NewService(cfg, nil),
		JWTService:     jwtSvc,
		RefreshTokens:  refreshtoken.NewService(db, cfg, nil),
		TOTPService:    totp.NewService(cfg, db, nil),
	})

	srv := server.New(cfg, nil)
	h.Register(srv)

	anonKey, err := jwtSvc.GenerateAnonKey()
	require.NoError(t, err)

	return &harness{
		cfg:     cfg,
		srv:     srv,
		db:      db,
		mailer:  mailer,
		authSvc: authSvc,
		jwtSvc:  jwtSvc,
		anonKey: anonKey,
	}
}

type requestOptions struct {
	sharedSecret bool
	bearer       string
}

func (h *harness) do(t *testing.T, method, path string, body any, opts requestOptions) *httptest.ResponseRecorder {
	var payload *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		payload = bytes.NewBuffer(data)
	} else {
		payload = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, payload)
	req.Header.Set("Content-Type", "application/json")
	if opts.sharedSecret {
		req.Header.Set("X-Auth", h.cfg.Server.SharedSecret)
	}
	if opts.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+opts.bearer)
	}

	rec := httptest.NewRecorder()
	h.srv.Echo().ServeHTTP(rec, req)
	return rec
}

func (h *harness) functionCall(t *testing.T, path string, body any) *httptest.ResponseRecorder {
	return h.do(t, http.MethodPost, path, body, requestOptions{sharedSecret: true, bearer: h.anonKey})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func (h *harness) createUser(t *testing.T, email, password string) *auth.User {
	user, err := h.authSvc.SignUp(auth.SignUpInput{
		Email:    email,
		Password: password,
		Name:     "Test User",
	})
	require.NoError(t, err)
	return user
}

func (h *harness) signIn(t *testing.T, email, password string) (accessToken, refreshToken string) {
	rec := h.do(t, http.MethodPost, "/auth/signin",
		map[string]string{"email": email, "password": password},
		requestOptions{bearer: h.anonKey})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	return body["access_token"].(string), body["refresh_token"].(string)
}
