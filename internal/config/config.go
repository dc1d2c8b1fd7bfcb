package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// External API configuration
	API APIConfig

	// Stub server configuration
	Stub StubConfig

	// Logging configuration
	Logging LoggingConfig
}

// APIConfig holds settings for the external GenLink API
type APIConfig struct {
	BaseURL string
}

// StubConfig holds settings for the local stub API server
type StubConfig struct {
	Address     string
	DatabaseURL string
	JWTSecret   string
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// External API base URL - set to point the CLI at a non-default
	// endpoint, e.g. the local stub server. Left empty when unset so the
	// CLI can fall back to its saved user config before the public default.
	apiURL := os.Getenv("GENLINK_API_URL")

	// Stub server listen address
	stubAddr := os.Getenv("STUB_ADDR")
	if stubAddr == "" {
		stubAddr = "localhost:8000"
	}

	// Stub server database - sqlite file, ":memory:" works for throwaway runs
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		dbURL = "genlink-stub.sqlite"
	}

	// Stub server signing secret - generated on startup when empty
	jwtSecret := os.Getenv("JWT_SECRET")

	// Logging configuration - console suits a terminal client
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	logFormat := os.Getenv("LOG_FORMAT")
	if logFormat == "" {
		logFormat = "console"
	}

	return &Config{
		API: APIConfig{
			BaseURL: apiURL,
		},
		Stub: StubConfig{
			Address:     stubAddr,
			DatabaseURL: dbURL,
			JWTSecret:   jwtSecret,
		},
		Logging: LoggingConfig{
			Level:  logLevel,
			Format: logFormat,
		},
	}, nil
}
