// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	defaultAddress  = "0.0.0.0"
	defaultPort     = 9000
	defaultWorkers  = 10
	defaultLogLevel = "info"
)

// Config holds everything cmd/fenrir needs to start serving.
type Config struct {
	Address  string
	Port     int
	Workers  int
	LogLevel zerolog.Level
}

// Load reads FENRIR_ADDRESS, FENRIR_PORT, FENRIR_WORKERS and
// FENRIR_LOG_LEVEL from the environment, applying defaults for any that
// are unset. If a .env file is present in the working directory its
// values are loaded first; a missing file is not an error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("config: loading .env: %w", err)
	}

	cfg := Config{
		Address: defaultAddress,
		Port:    defaultPort,
		Workers: defaultWorkers,
	}

	if v := os.Getenv("FENRIR_ADDRESS"); v != "" {
		cfg.Address = v
	}

	if v := os.Getenv("FENRIR_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: FENRIR_PORT: %w", err)
		}
		cfg.Port = port
	}

	if v := os.Getenv("FENRIR_WORKERS"); v != "" {
		workers, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: FENRIR_WORKERS: %w", err)
		}
		cfg.Workers = workers
	}

	levelStr := defaultLogLevel
	if v := os.Getenv("FENRIR_LOG_LEVEL"); v != "" {
		levelStr = v
	}
	level, err := zerolog.ParseLevel(levelStr)
	if err != nil {
		return Config{}, fmt.Errorf("config: FENRIR_LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}
