package backend

import (
	"fmt"

	"tally/internal/config"
)

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := Type(appConfig.KVBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.KVBackend)
	}

	return Config{
		Type:          backendType,
		SQLiteDBPath:  appConfig.SQLiteDBPath,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("sqlite database path is required for sqlite backend")
		}
	case Redis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for redis backend")
		}
		if c.RedisDB < 0 || c.RedisDB > 15 {
			return fmt.Errorf("invalid redis db %d: must be between 0 and 15", c.RedisDB)
		}
	case Memory:
		// Nothing to validate.
	}

	return nil
}
