package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/geohunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	SeedDemo bool       `env:"SEED_DEMO" envDefault:"true"`

	HealthTimeout time.Duration `env:"HEALTH_TIMEOUT" envDefault:"3s"`

	// Tours are kept in memory when RedisURL is empty.
	RedisURL string        `env:"REDIS_URL"`
	TourTTL  time.Duration `env:"TOUR_TTL" envDefault:"12h"`

	GeofenceRadiusMeters float64 `env:"GEOFENCE_RADIUS_METERS" envDefault:"30"`

	AuthorName      string `env:"AUTHOR_NAME" envDefault:"author"`
	AuthorTokenHash string `env:"AUTHOR_TOKEN_HASH,required,notEmpty"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.GeofenceRadiusMeters <= 0 {
		errs = append(errs, fmt.Errorf("GEOFENCE_RADIUS_METERS must be positive, got %v", c.GeofenceRadiusMeters))
	}
	if c.TourTTL <= 0 {
		errs = append(errs, fmt.Errorf("TOUR_TTL must be positive, got %s", c.TourTTL))
	}
	if c.HealthTimeout <= 0 {
		errs = append(errs, fmt.Errorf("HEALTH_TIMEOUT must be positive, got %s", c.HealthTimeout))
	}
	if c.AuthorName == "" {
		errs = append(errs, errors.New("AUTHOR_NAME must not be empty"))
	}
	return errors.Join(errs...)
}
