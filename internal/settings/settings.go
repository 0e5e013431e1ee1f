// Package settings replaces chartos/settings.py's pydantic BaseSettings
// with a spf13/viper-backed env loader. Settings come from CHARTOS_-prefixed
// environment variables only; no command-line flags are bound to them.
package settings

import (
	"fmt"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix every chartos environment variable carries
// (CHARTOS_PSQL_DSN, CHARTOS_REDIS_URL, ...).
const EnvPrefix = "CHARTOS"

// Settings mirrors chartos/settings.py's Settings model: config_path,
// psql_dsn, psql_user, psql_password, redis_url, plus the Go-native
// additions root_url and max_zoom spec.md §6 calls for.
type Settings struct {
	ConfigPath   string
	PsqlDSN      string
	PsqlUser     string
	PsqlPassword string
	RedisURL     string
	RootURL      string
	MaxZoom      uint
}

const defaultMaxZoom = 18

// Load reads settings from environment variables (CHARTOS_ prefix) via
// viper, applying the same defaults chartos/settings.py's Settings
// dataclass gives config_path ("examples/layer.yml"). psql_dsn and
// redis_url have no default, matching the Python model's required fields.
func Load() (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("config_path", "examples/layer.yml")
	v.SetDefault("root_url", "")
	v.SetDefault("max_zoom", defaultMaxZoom)

	dsn := v.GetString("psql_dsn")
	if dsn == "" {
		return Settings{}, fmt.Errorf("settings: %s_PSQL_DSN is required", EnvPrefix)
	}
	redisURL := v.GetString("redis_url")
	if redisURL == "" {
		return Settings{}, fmt.Errorf("settings: %s_REDIS_URL is required", EnvPrefix)
	}

	return Settings{
		ConfigPath:   v.GetString("config_path"),
		PsqlDSN:      dsn,
		PsqlUser:     v.GetString("psql_user"),
		PsqlPassword: v.GetString("psql_password"),
		RedisURL:     redisURL,
		RootURL:      v.GetString("root_url"),
		MaxZoom:      v.GetUint("max_zoom"),
	}, nil
}

// PsqlConnString builds a libpq-style connection string for pgxpool,
// injecting explicit user/password overrides on top of PsqlDSN the same
// way chartos/settings.py's psql_settings() layers user/password atop dsn.
func (s Settings) PsqlConnString() string {
	connString := s.PsqlDSN
	if s.PsqlUser != "" {
		connString += fmt.Sprintf(" user=%s", s.PsqlUser)
	}
	if s.PsqlPassword != "" {
		connString += fmt.Sprintf(" password=%s", s.PsqlPassword)
	}
	return connString
}
