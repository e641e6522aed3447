// Package config loads server configuration from yaml with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Database    DatabaseConfig    `mapstructure:"database"`
	Game        GameConfig        `mapstructure:"game"`
	Matchmaking MatchmakingConfig `mapstructure:"matchmaking"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	AllowOrigins string `mapstructure:"allow_origins"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DatabaseConfig struct {
	// URL is a Postgres connection string. Empty disables persistence.
	URL string `mapstructure:"url"`
}

type GameConfig struct {
	InitialClock time.Duration `mapstructure:"initial_clock"`
}

type MatchmakingConfig struct {
	Tick time.Duration `mapstructure:"tick"`
}

// Load reads configuration from path (optional) and the environment.
// Environment variables use the MAGICCHESS_ prefix with underscores, e.g.
// MAGICCHESS_SERVER_ADDRESS.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", ":3000")
	v.SetDefault("server.allow_origins", "http://localhost:5173")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.url", "")
	v.SetDefault("game.initial_clock", 10*time.Minute)
	v.SetDefault("matchmaking.tick", time.Second)

	v.SetEnvPrefix("MAGICCHESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			// A missing file falls back to defaults and the environment.
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
