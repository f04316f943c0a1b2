package redisstore_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-menu-client/storage"
	"github.com/jrsteele09/go-menu-client/storage/redisstore"
	"github.com/jrsteele09/go-menu-client/storage/storagetest"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*redisstore.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	s, err := redisstore.New(context.Background(), redisstore.Options{
		Addr:      mr.Addr(),
		KeyPrefix: "menu:",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestRedisStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Store {
		s, _ := newStore(t)
		return s
	})
}

func TestRedisStoreKeyPrefix(t *testing.T) {
	s, mr := newStore(t)
	require.NoError(t, s.Set(context.Background(), "accessToken", "a1"))

	v, err := mr.Get("menu:accessToken")
	require.NoError(t, err)
	require.Equal(t, "a1", v)
}

func TestRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := redisstore.New(context.Background(), redisstore.Options{Addr: addr})
	require.Error(t, err)
}
