package jwt

import (
	"testing"
	"time"

	"github.com/rideway/rideway/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_GenerateAndValidate(t *testing.T) {
	svc := NewService(testutils.GetTestConfig(), nil)

	t.Run("access token round trip", func(t *testing.T) {
		token, err := svc.GenerateAccessToken(42, "customer")
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "customer", claims.Role)
		assert.Equal(t, TypeAccess, claims.TokenType)
		assert.NotEmpty(t, claims.JTI)
	})

	t.Run("anon key carries no user", func(t *testing.T) {
		token, err := svc.GenerateAnonKey()
		require.NoError(t, err)

		claims, err := svc.ValidateTokenOfType(token, TypeAnon)
		require.NoError(t, err)
		assert.Zero(t, claims.UserID)
		assert.Equal(t, "anon", claims.Role)
	})

	t.Run("type pinning rejects cross-use", func(t *testing.T) {
		anon, err := svc.GenerateAnonKey()
		require.NoError(t, err)
		_, err = svc.ValidateTokenOfType(anon, TypeAccess)
		assert.ErrorIs(t, err, ErrWrongTokenType)

		access, err := svc.GenerateAccessToken(1, "customer")
		require.NoError(t, err)
		_, err = svc.ValidateTokenOfType(access, TypeAnon)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("garbage is malformed", func(t *testing.T) {
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("wrong key is invalid signature", func(t *testing.T) {
		other := testutils.GetTestConfig()
		other.JWT.SecretKey = "a-completely-different-secret!!!"
		otherSvc := NewService(other, nil)

		token, err := otherSvc.GenerateAccessToken(1, "customer")
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidSignature)
	})

	t.Run("expired token", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.JWT.AccessExpiry = -time.Minute
		expiredSvc := NewService(cfg, nil)

		token, err := expiredSvc.GenerateAccessToken(1, "customer")
		require.NoError(t, err)
		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

type fakeRevocation struct {
	revoked map[string]bool
}

func (f *fakeRevocation) IsTokenRevoked(jti string) (bool, error) {
	return f.revoked[jti], nil
}

func (f *fakeRevocation) RevokeJTI(jti string, expiresAt time.Time) error {
	f.revoked[jti] = true
	return nil
}

func TestService_Revocation(t *testing.T) {
	svc := NewService(testutils.GetTestConfig(), nil)
	svc.SetRevocationService(&fakeRevocation{revoked: map[string]bool{}})

	token, err := svc.GenerateAccessToken(9, "customer")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeToken(token))

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	// Revoking an already revoked token is a no-op.
	assert.NoError(t, svc.RevokeToken(token))
}
