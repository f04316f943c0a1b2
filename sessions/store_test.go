package sessions_test

import (
	"context"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-menu-client/sessions"
	"github.com/jrsteele09/go-menu-client/storage/memory"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func setupStore(t *testing.T) (*sessions.Store, *memory.Store) {
	t.Helper()
	kv := memory.New()
	return sessions.NewStore(kv), kv
}

func TestStoreEmpty(t *testing.T) {
	s, _ := setupStore(t)

	tok, err := s.Get(context.Background())
	require.NoError(t, err)
	require.Nil(t, tok)

	refresh, err := s.RefreshToken(context.Background())
	require.NoError(t, err)
	require.Empty(t, refresh)
}

func TestStoreSetGetClear(t *testing.T) {
	ctx := context.Background()
	s, kv := setupStore(t)

	require.NoError(t, s.Set(ctx, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}))

	tok, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "a1", tok.AccessToken)
	require.Equal(t, "r1", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())

	v, ok, err := kv.Get(ctx, sessions.AccessTokenKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a1", v)

	require.NoError(t, s.Clear(ctx))
	tok, err = s.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, tok)
	_, ok, err = kv.Get(ctx, sessions.RefreshTokenKey)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreSetKeepsRefreshWhenNotRotated(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	require.NoError(t, s.Set(ctx, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}))
	require.NoError(t, s.Set(ctx, &oauth2.Token{AccessToken: "a2"}))

	tok, err := s.Get(ctx)
	require.NoError(t, err)
	require.Equal(t, "a2", tok.AccessToken)
	require.Equal(t, "r1", tok.RefreshToken)
}

func TestStoreSetRejectsEmptyAccessToken(t *testing.T) {
	s, _ := setupStore(t)
	require.Error(t, s.Set(context.Background(), &oauth2.Token{RefreshToken: "r1"}))
	require.Error(t, s.Set(context.Background(), nil))
}

func TestStoreExpiryFromJWT(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, &oauth2.Token{AccessToken: raw, RefreshToken: "r1"}))
	tok, err := s.Get(ctx)
	require.NoError(t, err)
	require.True(t, tok.Expiry.Equal(exp))
	require.True(t, tok.Valid())
}

func TestSubscriptionNoticeReadOnce(t *testing.T) {
	ctx := context.Background()
	s, _ := setupStore(t)

	notice, err := s.TakeSubscriptionNotice(ctx)
	require.NoError(t, err)
	require.Nil(t, notice)

	require.NoError(t, s.PutSubscriptionNotice(ctx, sessions.SubscriptionNotice{
		Message:   "Your subscription expired",
		ExpiredAt: "2026-09-30T00:00:00Z",
	}))

	notice, err = s.TakeSubscriptionNotice(ctx)
	require.NoError(t, err)
	require.NotNil(t, notice)
	require.Equal(t, "Your subscription expired", notice.Message)
	at, ok := notice.ExpiredAtTime()
	require.True(t, ok)
	require.Equal(t, 2026, at.Year())

	notice, err = s.TakeSubscriptionNotice(ctx)
	require.NoError(t, err)
	require.Nil(t, notice)
}

func TestSubscriptionNoticeStoredAsJSON(t *testing.T) {
	ctx := context.Background()
	s, kv := setupStore(t)

	require.NoError(t, s.PutSubscriptionNotice(ctx, sessions.SubscriptionNotice{Message: "m", ExpiredAt: "2026-01-01T00:00:00Z"}))
	v, ok, err := kv.Get(ctx, sessions.SubscriptionExpiredKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"message":"m","expiredAt":"2026-01-01T00:00:00Z"}`, v)
}

func TestSubscriptionNoticeBadExpiry(t *testing.T) {
	_, ok := sessions.SubscriptionNotice{Message: "m", ExpiredAt: "yesterday"}.ExpiredAtTime()
	require.False(t, ok)
	_, ok = sessions.SubscriptionNotice{Message: "m"}.ExpiredAtTime()
	require.False(t, ok)
}
