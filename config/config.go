// ABOUTME: Environment configuration for reportmaster
// ABOUTME: Reads an optional .env file, then REPORTMASTER_* variables with defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

type Config struct {
	DBPath        string `env:"REPORTMASTER_DB_PATH"`
	Backend       string `env:"REPORTMASTER_BACKEND" envDefault:"sqlite"`
	LogLevel      string `env:"REPORTMASTER_LOG_LEVEL" envDefault:"warn"`
	LogFormat     string `env:"REPORTMASTER_LOG_FORMAT" envDefault:"text"`
	LogFile       string `env:"REPORTMASTER_LOG_FILE"`
	WebAddr       string `env:"REPORTMASTER_WEB_ADDR" envDefault:"127.0.0.1:8080"`
	SessionSecret string `env:"REPORTMASTER_SESSION_SECRET"`
}

// DefaultDBPath is the database location under the XDG data home.
func DefaultDBPath() string {
	return filepath.Join(xdg.DataHome, "reportmaster", "reportmaster.db")
}

// Load reads envFile when it exists and parses the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
			}
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath()
	}
	if cfg.Backend != BackendSQLite && cfg.Backend != BackendCharm {
		return nil, fmt.Errorf("invalid backend %q (must be %s or %s)", cfg.Backend, BackendSQLite, BackendCharm)
	}
	return cfg, nil
}
