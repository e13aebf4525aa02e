package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse_Success(t *testing.T) {
	secret := []byte("super-secret")
	now := time.Now()

	tok, sid, err := generateToken(secret, now, time.Hour)
	require.NoError(t, err)

	claims, err := parseToken(tok, secret, func() time.Time { return now })
	require.NoError(t, err)
	assert.Equal(t, sid, claims.ID)
	assert.Equal(t, issuer, claims.Issuer)
}

func TestParseToken_Rejections(t *testing.T) {
	secret := []byte("secret")
	now := time.Now()
	clock := func() time.Time { return now }

	tok, _, err := generateToken(secret, now, time.Minute)
	require.NoError(t, err)

	_, err = parseToken(tok, []byte("other"), clock)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	_, err = parseToken(tok, secret, func() time.Time { return now.Add(2 * time.Minute) })
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}})
	s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = parseToken(s, secret, clock)
	assert.Error(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}})
	s, err = noExp.SignedString(secret)
	require.NoError(t, err)
	_, err = parseToken(s, secret, clock)
	assert.Error(t, err)
}

func TestTokenContext(t *testing.T) {
	ctx := context.Background()
	_, ok := TokenFromContext(ctx)
	assert.False(t, ok)

	_, ok = TokenFromContext(WithToken(ctx, ""))
	assert.False(t, ok)

	got, ok := TokenFromContext(WithToken(ctx, "abc"))
	assert.True(t, ok)
	assert.Equal(t, "abc", got)
}
