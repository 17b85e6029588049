package totp

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/rideway/rideway/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	db := testutils.SetupTestDB(t, &TOTPSecret{}, &UsedCode{})
	t.Cleanup(func() { testutils.CleanupTestDB(t, db) })

	cfg := testutils.GetTestConfig()
	cfg.TOTP.Enabled = true
	return NewService(cfg, db, nil)
}

func TestService_DisabledGlobally(t *testing.T) {
	db := testutils.SetupTestDB(t, &TOTPSecret{}, &UsedCode{})
	defer testutils.CleanupTestDB(t, db)

	cfg := testutils.GetTestConfig()
	cfg.TOTP.Enabled = false
	svc := NewService(cfg, db, nil)

	_, err := svc.GenerateSecret(1, "op@example.com")
	assert.ErrorIs(t, err, ErrTOTPDisabled)
	assert.False(t, svc.IsEnabled(1))
}

func TestService_EnrolmentFlow(t *testing.T) {
	svc := newTestService(t)

	secret, err := svc.GenerateSecret(1, "op@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret.Secret)
	assert.False(t, secret.Enabled)
	assert.False(t, svc.IsEnabled(1))

	_, err = svc.GenerateSecret(1, "op@example.com")
	assert.ErrorIs(t, err, ErrSecretExists)

	assert.ErrorIs(t, svc.Enable(1, "000000"), ErrInvalidCode)

	code, err := totp.GenerateCode(secret.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Enable(1, code))
	assert.True(t, svc.IsEnabled(1))
}

func TestService_VerifyCode(t *testing.T) {
	svc := newTestService(t)

	secret, err := svc.GenerateSecret(2, "op@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret.Secret, time.Now())
	require.NoError(t, err)

	// A pending secret does not verify.
	assert.ErrorIs(t, svc.VerifyCode(2, code), ErrSecretNotFound)

	require.NoError(t, svc.Enable(2, code))

	// Enable consumed nothing, a fresh verification succeeds once.
	require.NoError(t, svc.VerifyCode(2, code))
	assert.ErrorIs(t, svc.VerifyCode(2, code), ErrCodeAlreadyUsed)

	assert.ErrorIs(t, svc.VerifyCode(2, "123456"), ErrInvalidCode)
}

func TestService_Disable(t *testing.T) {
	svc := newTestService(t)

	secret, err := svc.GenerateSecret(3, "op@example.com")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret.Secret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Enable(3, code))

	require.NoError(t, svc.Disable(3))
	assert.False(t, svc.IsEnabled(3))

	// Re-enrolment starts a new secret.
	_, err = svc.GenerateSecret(3, "op@example.com")
	assert.NoError(t, err)
}

func TestService_ProvisioningURI(t *testing.T) {
	svc := newTestService(t)

	secret, err := svc.GenerateSecret(4, "op@example.com")
	require.NoError(t, err)

	uri := svc.ProvisioningURI(secret, "op@example.com")
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, secret.Secret)
}
