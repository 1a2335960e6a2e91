// Package config loads application configuration from environment variables
// into tagged structs.
//
// It combines github.com/joho/godotenv (optional .env files for local
// development) with github.com/caarlos0/env/v11 (struct tag parsing). Each
// subsystem declares its own config struct next to its code and loads it
// independently at startup:
//
//	cfg := config.MustLoad[pg.Config]()
//
// A missing .env file is not an error; production deployments are expected
// to provide the environment directly.
package config
