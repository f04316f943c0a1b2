package config

import (
	"os"
	"strconv"
	"time"
)

const (
	apiURLEnvVar       = "MENU_API_URL"
	legacyAPIURLEnvVar = "NEXT_PUBLIC_API_URL"
	appNameVar         = "APP_NAME"
	folderEnvVar       = "FOLDER"
	logLevelEnvVar     = "LOG_LEVEL"

	// DefaultAPIURL is used when no API URL override is configured.
	DefaultAPIURL = "http://localhost:3001/api/v1"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

// GetAPIURL returns the base URL of the menu API (e.g., "https://api.example.com/api/v1").
// The legacy front-end variable is honoured when the primary one is unset.
func (EnvVars) GetAPIURL() string {
	return GetEnv(apiURLEnvVar, GetEnv(legacyAPIURLEnvVar, DefaultAPIURL))
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Menu Client")
}

func (EnvVars) GetDataFolder() string {
	return GetEnv(folderEnvVar, "./data")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelEnvVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvInt(envVar string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(envVar))
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvFloat(envVar string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(envVar), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(envVar))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
