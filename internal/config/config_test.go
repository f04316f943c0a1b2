package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jrsteele09/go-menu-client/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	for _, v := range []string{"MENU_API_URL", "NEXT_PUBLIC_API_URL", "MENU_REQUEST_TIMEOUT", "MENU_SESSION_BACKEND", "FOLDER", "ENV"} {
		t.Setenv(v, "")
	}

	c := config.New()
	require.Equal(t, config.DefaultAPIURL, c.GetAPIURL())
	require.Equal(t, 30*time.Second, c.GetRequestTimeout())
	require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
	require.Equal(t, config.SessionBackendFile, c.GetSessionBackend())
	require.Equal(t, filepath.Join("data", "session.json"), c.GetSessionFile())
	require.Equal(t, "DEV", c.GetEnv())
	require.Zero(t, c.GetRateLimit())
}

func TestOverrides(t *testing.T) {
	t.Setenv("MENU_API_URL", "")
	t.Setenv("NEXT_PUBLIC_API_URL", "https://legacy.example.com/api/v1")
	t.Setenv("MENU_REQUEST_TIMEOUT", "2s")
	t.Setenv("MENU_REFRESH_TIMEOUT", "not-a-duration")
	t.Setenv("MENU_RATE_LIMIT", "2.5")
	t.Setenv("REDIS_DB", "3")

	c := config.New()
	require.Equal(t, "https://legacy.example.com/api/v1", c.GetAPIURL())
	require.Equal(t, 2*time.Second, c.GetRequestTimeout())
	require.Equal(t, 10*time.Second, c.GetRefreshTimeout())
	require.Equal(t, 2.5, c.GetRateLimit())
	require.Equal(t, 3, c.GetRedisDB())

	t.Setenv("MENU_API_URL", "https://api.example.com/api/v1")
	require.Equal(t, "https://api.example.com/api/v1", c.GetAPIURL())
}
