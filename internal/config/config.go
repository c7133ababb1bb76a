package config

import (
	"os"
	"strconv"

	"nonlin/domain/series"
	"nonlin/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Test    TestConfig
	Runtime RuntimeConfig
	Logging LoggingConfig
}

// TestConfig holds the nonlinearity test defaults. CLI flags override
// every field.
type TestConfig struct {
	Method        string
	NumSurrogates int
	Period        int
	Embedding     int
	Seed          int64
}

// RuntimeConfig holds execution settings
type RuntimeConfig struct {
	Workers int
}

// LoggingConfig holds logger selection settings
type LoggingConfig struct {
	Level string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Test:    loadTestConfig(),
		Runtime: loadRuntimeConfig(),
		Logging: loadLoggingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadTestConfig() TestConfig {
	return TestConfig{
		Method:        getEnvOrDefault("NONLIN_METHOD", series.MethodEbisuzaki.String()),
		NumSurrogates: getEnvIntOrDefault("NONLIN_NUM_SURROGATES", 100),
		Period:        getEnvIntOrDefault("NONLIN_PERIOD", 0),
		Embedding:     getEnvIntOrDefault("NONLIN_EMBEDDING", 3),
		Seed:          getEnvInt64OrDefault("NONLIN_SEED", 42),
	}
}

func loadRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Workers: getEnvIntOrDefault("NONLIN_WORKERS", 0), // 0 means one per CPU
	}
}

func loadLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func validateConfig(config *Config) error {
	if _, err := series.ParseMethod(config.Test.Method); err != nil {
		return errors.ConfigInvalid("NONLIN_METHOD must be one of random_shuffle, ebisuzaki, seasonal")
	}
	if config.Test.NumSurrogates < 1 {
		return errors.ConfigInvalid("NONLIN_NUM_SURROGATES must be at least 1")
	}
	if config.Test.Embedding < 1 {
		return errors.ConfigInvalid("NONLIN_EMBEDDING must be at least 1")
	}
	if config.Test.Method == series.MethodSeasonal.String() && config.Test.Period < 2 {
		return errors.ConfigInvalid("NONLIN_PERIOD must be at least 2 for the seasonal method")
	}
	if config.Runtime.Workers < 0 {
		return errors.ConfigInvalid("NONLIN_WORKERS must not be negative")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
