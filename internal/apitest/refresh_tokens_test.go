package apitest

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokensOnePerUser(t *testing.T) {
	tokens := newRefreshTokens(time.Hour)

	first, err := tokens.create("usr-1")
	require.NoError(t, err)
	require.Len(t, first, refreshTokenLength*2)

	other, err := tokens.create("usr-2")
	require.NoError(t, err)

	second, err := tokens.create("usr-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.Nil(t, tokens.get(first))
	require.Equal(t, "usr-1", tokens.get(second).UserID)
	require.Equal(t, "usr-2", tokens.get(other).UserID)
}

func TestRefreshTokensExpire(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	NowTimeFunc = func() time.Time { return now }
	t.Cleanup(func() { NowTimeFunc = time.Now })

	tokens := newRefreshTokens(time.Hour)
	tok, err := tokens.create("usr-1")
	require.NoError(t, err)

	now = now.Add(59 * time.Minute)
	require.NotNil(t, tokens.get(tok))

	now = now.Add(2 * time.Minute)
	require.Nil(t, tokens.get(tok))
	require.Empty(t, tokens.byToken)
}

func TestSignerRejectsForeignTokens(t *testing.T) {
	signer := newHMACSigner("one")
	raw, err := signer.sign(jwtlib.RegisteredClaims{Subject: "usr-1"})
	require.NoError(t, err)

	var claims jwtlib.RegisteredClaims
	require.NoError(t, signer.parse(raw, &claims))
	require.Equal(t, "usr-1", claims.Subject)

	require.Error(t, newHMACSigner("two").parse(raw, &jwtlib.RegisteredClaims{}))

	unsigned, err := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, jwtlib.RegisteredClaims{}).
		SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	require.Error(t, signer.parse(unsigned, &jwtlib.RegisteredClaims{}))
}
