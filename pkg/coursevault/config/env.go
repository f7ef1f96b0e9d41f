package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Load reads ServerConfig from the environment and validates it. A .env
// file in the working directory is applied first when present; real
// deployments set variables directly.
func Load() (*ServerConfig, error) {
	_ = godotenv.Load()

	var cfg ServerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
