package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// Load parses environment variables into a new configuration struct of type
// T based on `env` field tags. A local .env file, if present, is loaded into
// the process environment exactly once per process before parsing.
//
// Example:
//
//	type PostgresConfig struct {
//		URL          string `env:"DATABASE_URL,required"`
//		MaxOpenConns int32  `env:"PG_MAX_OPEN_CONNS" envDefault:"10"`
//	}
//
//	cfg, err := config.Load[PostgresConfig]()
func Load[T any]() (T, error) {
	dotenvOnce.Do(func() {
		// Missing .env is fine; real deployments set the environment directly.
		_ = godotenv.Load()
	})

	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}
	return cfg, nil
}

// MustLoad works like Load but panics when parsing fails. Intended for
// configuration the process cannot start without.
func MustLoad[T any]() T {
	cfg, err := Load[T]()
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}
