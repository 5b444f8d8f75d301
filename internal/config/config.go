package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// It is loaded once at startup and passed around by value.
type Config struct {
	NodeEnv  string
	LogLevel string
	API      APIConfig
	Mock     MockConfig
	Server   ServerConfig
}

// APIConfig selects the data source for the whole process
type APIConfig struct {
	UseMockData bool
	BaseURL     string
	Timeout     time.Duration
}

// MockConfig tunes the in-memory mock store
type MockConfig struct {
	SeedProfile string // optional YAML file with collection sizes
	RandomSeed  uint64 // 0 = time based
}

// ServerConfig holds the simulated backend settings
type ServerConfig struct {
	Port          string
	SessionSecret string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	useMock, err := parseBool("USE_MOCK_DATA", false)
	if err != nil {
		return nil, err
	}

	timeout, err := time.ParseDuration(getEnv("API_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}

	var seed uint64
	if raw := os.Getenv("MOCK_RANDOM_SEED"); raw != "" {
		seed, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MOCK_RANDOM_SEED: %w", err)
		}
	}

	baseURL := strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/")
	if !useMock && !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("API_BASE_URL must start with http:// or https://, got %q", baseURL)
	}

	return &Config{
		NodeEnv:  getEnv("NODE_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		API: APIConfig{
			UseMockData: useMock,
			BaseURL:     baseURL,
			Timeout:     timeout,
		},
		Mock: MockConfig{
			SeedProfile: os.Getenv("MOCK_SEED_PROFILE"),
			RandomSeed:  seed,
		},
		Server: ServerConfig{
			Port:          getEnv("PORT", "8080"),
			SessionSecret: getEnv("SESSION_SECRET", "dev-session-secret"),
		},
	}, nil
}

// IsDevelopment reports whether the process runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.NodeEnv == "development"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(key string, defaultValue bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
