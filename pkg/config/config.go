package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8000"`
	GinMode     string `env:"GIN_MODE"`
	DatabaseURL string `env:"DATABASE_URL"`
	DataPath    string `env:"DATA_PATH" envDefault:"roster.db"`
	Timezone    string `env:"TIMEZONE" envDefault:"UTC"`

	JWT struct {
		Secret          string `env:"SECRET"`
		ExpirationHours int    `env:"EXPIRATION_HOURS" envDefault:"24"`
	} `envPrefix:"JWT_"`

	Admin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD" envDefault:"admin123"`
	} `envPrefix:"ADMIN_"`

	Log struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"console"`
	} `envPrefix:"LOG_"`

	Scheduling struct {
		ShiftsPerDay  int     `env:"SHIFTS_PER_DAY" envDefault:"2"`
		ShiftType     string  `env:"SHIFT_TYPE" envDefault:"mixed"`
		MaxHourSpread float64 `env:"MAX_HOUR_SPREAD" envDefault:"20"`
		UnevenFactor  float64 `env:"UNEVEN_FACTOR" envDefault:"1.5"`
	} `envPrefix:"SCHEDULING_"`
}

// envPaths are tried in order; the first existing file is loaded
var envPaths = []string{".env", "../.env", "../../.env"}

// Load reads an optional .env file and parses the environment
func Load() (*Config, error) {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}
	return Parse()
}

// Parse reads the configuration from the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// the first error is enough to act on
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	if cfg.Scheduling.ShiftsPerDay <= 0 {
		return nil, fmt.Errorf("SCHEDULING_SHIFTS_PER_DAY must be positive, got %d", cfg.Scheduling.ShiftsPerDay)
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// TokenTTL is the lifetime of issued access tokens
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.JWT.ExpirationHours) * time.Hour
}
