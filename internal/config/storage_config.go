package config

import "path/filepath"

const (
	SessionBackendFile   = "file"
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Storage struct{}

var _ StorageConfig = Storage{}

func (Storage) GetSessionBackend() string {
	return GetEnv("MENU_SESSION_BACKEND", SessionBackendFile)
}

// GetSessionFile is the JSON file used by the file backend, inside the data folder.
func (Storage) GetSessionFile() string {
	return filepath.Join(EnvVars{}.GetDataFolder(), "session.json")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "127.0.0.1:6379")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "menu:")
}
