package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds process configuration, read from the environment.
type Config struct {
	TraktClientID     string `env:"TRAKT_CLIENT_ID,required,notEmpty"`
	TraktClientSecret string `env:"TRAKT_CLIENT_SECRET"`
	TimelineAPIKey    string `env:"TIMELINE_API_KEY,required,notEmpty"`

	DatabasePath string `env:"DATABASE_PATH" envDefault:"data/showsync.db"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	LogFile  string `env:"LOG_FILE"`
	LogDebug bool   `env:"LOG_DEBUG"`

	SyncOnStart bool `env:"SYNC_ON_START" envDefault:"true"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
