package auth

import (
	"testing"
	"time"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-that-is-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "pos-test",
	})
}

func TestJWTService_IssueAndValidate(t *testing.T) {
	s := newTestJWTService()

	issued, err := s.IssueCashierToken("c-17", "Ana", RoleCashier, RoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)

	claims, err := s.ValidateToken(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "c-17", claims.CashierID)
	assert.Equal(t, "c-17", claims.Subject)
	assert.Equal(t, "Ana", claims.Name)
	assert.True(t, claims.HasRole(RoleSupervisor))
	assert.NotEmpty(t, claims.ID)
}

func TestJWTService_IssueDefaults(t *testing.T) {
	s := newTestJWTService()

	issued, err := s.IssueCashierToken("", "Till 3")
	require.NoError(t, err)
	claims, err := s.ValidateToken(issued.AccessToken)
	require.NoError(t, err)

	assert.Len(t, claims.CashierID, 36)
	assert.Equal(t, []string{RoleCashier}, claims.Roles)
	assert.False(t, claims.HasRole(RoleSupervisor))
}

func TestJWTService_ValidateToken_Rejections(t *testing.T) {
	s := newTestJWTService()

	t.Run("expired", func(t *testing.T) {
		issued, err := s.IssueCashierToken("c-1", "Ana")
		require.NoError(t, err)

		later := newTestJWTService()
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err = later.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-with-enough-length", AccessTokenExpiration: time.Hour, Issuer: "pos-test"})
		issued, err := other.IssueCashierToken("c-1", "Ana")
		require.NoError(t, err)

		_, err = s.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-that-is-at-least-32-chars", AccessTokenExpiration: time.Hour, Issuer: "elsewhere"})
		issued, err := other.IssueCashierToken("c-1", "Ana")
		require.NoError(t, err)

		_, err = s.ValidateToken(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("missing cashier id", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "pos-test",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		signed, err := token.SignedString([]byte("test-secret-key-that-is-at-least-32-chars"))
		require.NoError(t, err)

		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrMissingCashierID)
	})

	t.Run("unexpected signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{CashierID: "c-1"})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.ValidateToken(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
