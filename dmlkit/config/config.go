// Package config loads database connection settings from an optional
// .env file and environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// EnvPrefix is the prefix of recognized environment variables, e.g.
// DMLKIT_DB_HOST maps to the db.host key.
const EnvPrefix = "DMLKIT_"

// Database holds connection settings for a single backend
type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	// Path is the file path used by the sqlite backend
	Path string `mapstructure:"path"`
}

// Config is the full application configuration
type Config struct {
	// Backend selects the storage adapter: sqlite or postgres
	Backend string   `mapstructure:"backend"`
	DB      Database `mapstructure:"db"`
}

// Default returns a configuration pointing at a local sqlite file
func Default() Config {
	return Config{
		Backend: "sqlite",
		DB: Database{
			Host: "localhost",
			Port: 5432,
			Path: "dmlkit.db",
		},
	}
}

// Load reads configuration from a .env file (when present) and
// environment variables carrying the DMLKIT_ prefix, layered over the
// defaults.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return Config{}, dmlerrors.Wrap(dmlerrors.ErrConfig, "read .env", err)
			}
		}
	}

	// AutomaticEnv does not feed Unmarshal when keys are unknown, so
	// environment variables are copied in explicitly.
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]
		if !strings.HasPrefix(key, EnvPrefix) {
			continue
		}
		propKey := strings.TrimPrefix(key, EnvPrefix)
		propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
		v.Set(propKey, value)
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, dmlerrors.Wrap(dmlerrors.ErrConfig, "unmarshal config", err)
	}
	if cfg.Backend != "sqlite" && cfg.Backend != "postgres" {
		return Config{}, dmlerrors.New(dmlerrors.ErrConfig, fmt.Sprintf("unknown backend '%s'", cfg.Backend))
	}
	return cfg, nil
}

// PostgresDSN renders the database settings as a postgres URL. The
// password is escaped so special characters survive.
func (d Database) PostgresDSN() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	return u.String()
}
