package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the process configuration, populated from the environment.
type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	// Sweeper timing.
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	EmptyGrace    time.Duration `env:"EMPTY_SESSION_GRACE" envDefault:"1h"`
	MaxSessionAge time.Duration `env:"MAX_SESSION_AGE" envDefault:"24h"`

	// Defaults applied to freshly created sessions.
	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"javascript"`
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
