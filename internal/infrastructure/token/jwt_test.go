package token

import (
	"testing"
	"time"

	"github.com/DRSN-tech/storefront/internal/cfg"
	"github.com/DRSN-tech/storefront/pkg/e"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(secret string) *JWTManager {
	return NewJWTManager(&cfg.AuthCfg{
		JWTSecret: secret,
		TokenTTL:  time.Hour,
		Issuer:    "storefront",
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newManager("0123456789abcdef0123456789abcdef")

	issued, err := m.Issue("user-1", "a@shop.io")
	require.NoError(t, err)

	identity, err := m.Parse(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UserID)
	assert.Equal(t, "a@shop.io", identity.Email)
	assert.Equal(t, issued.Identity.TokenID, identity.TokenID)
	assert.True(t, identity.ExpiresAt.Equal(issued.Identity.ExpiresAt))
}

func TestJWTManager_Rejects(t *testing.T) {
	m := newManager("0123456789abcdef0123456789abcdef")
	issued, err := m.Issue("user-1", "a@shop.io")
	require.NoError(t, err)

	other := newManager("ffffffffffffffffffffffffffffffff")
	foreign, err := other.Issue("user-1", "a@shop.io")
	require.NoError(t, err)

	expired := newManager("0123456789abcdef0123456789abcdef")
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("user-1", "a@shop.io")
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1", "jti": "x", "iss": "storefront"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"wrong secret", foreign.Token},
		{"expired", old.Token},
		{"alg none", unsigned},
		{"tampered", issued.Token + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, e.ErrInvalidToken)
			assert.ErrorIs(t, err, e.ErrUnauthenticated)
		})
	}
}
