package config

import (
	"os"
	"strconv"

	"reportauto/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Engine EngineConfig
	Upload UploadConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// EngineConfig holds recipe execution settings
type EngineConfig struct {
	// StepParallelism bounds how many analysis steps run concurrently
	// within one recipe execution.
	StepParallelism int
}

// UploadConfig holds ingestion limits
type UploadConfig struct {
	MaxUploadBytes int64
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Engine: EngineConfig{
			StepParallelism: getEnvInt("STEP_PARALLELISM", 4),
		},
		Upload: UploadConfig{
			MaxUploadBytes: int64(getEnvInt("MAX_UPLOAD_BYTES", 50<<20)),
		},
	}

	if cfg.Engine.StepParallelism < 1 {
		return nil, errors.New(errors.CodeValidationError, "STEP_PARALLELISM must be >= 1")
	}
	if cfg.Upload.MaxUploadBytes < 1 {
		return nil, errors.New(errors.CodeValidationError, "MAX_UPLOAD_BYTES must be >= 1")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
