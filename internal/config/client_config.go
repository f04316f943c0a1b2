package config

import "time"

type Client struct{}

var _ ClientConfig = Client{}

func (Client) GetRequestTimeout() time.Duration {
	return GetEnvDuration("MENU_REQUEST_TIMEOUT", 30*time.Second)
}

func (Client) GetRefreshTimeout() time.Duration {
	return GetEnvDuration("MENU_REFRESH_TIMEOUT", 10*time.Second)
}

// GetRateLimit returns the outbound requests per second, 0 disables limiting
func (Client) GetRateLimit() float64 {
	return GetEnvFloat("MENU_RATE_LIMIT", 0)
}

func (Client) GetRateBurst() int {
	return GetEnvInt("MENU_RATE_BURST", 5)
}

func (Client) GetUserAgent() string {
	return GetEnv("MENU_USER_AGENT", "menuctl/1.0")
}
