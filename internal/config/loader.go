package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load builds the Config:
//  1. Enforce UTC to prevent timezone drift in rate limiting and logs.
//  2. Load .env via godotenv, non-fatal if absent.
//  3. Populate the struct from the environment via envconfig.
//  4. Validate with go-playground/validator.
//
// Any failure is returned rather than logged; main treats it as fatal.
func Load() (*Config, error) {
	time.Local = time.UTC

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: failed to read .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to process environment: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return &cfg, nil
}
