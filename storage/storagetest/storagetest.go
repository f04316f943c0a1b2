// Package storagetest holds behaviour tests shared by every storage.Store backend.
package storagetest

import (
	"context"
	"sync"
	"testing"

	"github.com/jrsteele09/go-menu-client/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by newStore for each sub test.
func Run(t *testing.T, newStore func(t *testing.T) storage.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		s := newStore(t)
		v, ok, err := s.Get(ctx, "accessToken")
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, v)
	})

	t.Run("set overwrites", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "accessToken", "a1"))
		require.NoError(t, s.Set(ctx, "accessToken", "a2"))

		v, ok, err := s.Get(ctx, "accessToken")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "a2", v)
	})

	t.Run("delete many", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "accessToken", "a"))
		require.NoError(t, s.Set(ctx, "refreshToken", "r"))
		require.NoError(t, s.Set(ctx, "other", "o"))

		require.NoError(t, s.Delete(ctx, "accessToken", "refreshToken", "missing"))

		_, ok, err := s.Get(ctx, "accessToken")
		require.NoError(t, err)
		require.False(t, ok)
		_, ok, err = s.Get(ctx, "refreshToken")
		require.NoError(t, err)
		require.False(t, ok)
		v, ok, err := s.Get(ctx, "other")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "o", v)
	})

	t.Run("take once", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "subscriptionExpired", `{"message":"m"}`))

		v, ok, err := s.Take(ctx, "subscriptionExpired")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, `{"message":"m"}`, v)

		_, ok, err = s.Take(ctx, "subscriptionExpired")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("concurrent take has one winner", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.Set(ctx, "subscriptionExpired", "x"))

		const readers = 8
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			found int
		)
		for i := 0; i < readers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, ok, err := s.Take(ctx, "subscriptionExpired")
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					found++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, found)
	})
}
