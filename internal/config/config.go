package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Geo      GeoConfig
	Pricing  PricingConfig
	Matching MatchingConfig
	NewRelic NewRelicConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	// Backend is "memory" or "postgres".
	Backend string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration. When disabled, the dispatcher
// falls back to in-process booking locks and distance-sorted matching.
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	// IdempotencyTTL bounds how long replayed responses are kept.
	IdempotencyTTL time.Duration
}

// GeoConfig holds geocoding configuration. Without an API key the server
// still runs, accepting coordinate-only requests.
type GeoConfig struct {
	APIKey  string
	Timeout time.Duration
	// SearchRadiusKm bounds the geo-index driver search.
	SearchRadiusKm float64
}

// PricingConfig holds pricing configuration.
type PricingConfig struct {
	BaseRatePerKm float64
}

// MatchingConfig holds matching configuration.
type MatchingConfig struct {
	// Policy is "pool", "nearest", or "geoindex".
	Policy string
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "memory"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "taxi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:        getBoolEnv("REDIS_ENABLED", false),
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getIntEnv("REDIS_DB", 0),
			IdempotencyTTL: getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		},
		Geo: GeoConfig{
			APIKey:         getEnv("GOOGLE_MAPS_API_KEY", ""),
			Timeout:        getDurationEnv("GEOCODE_TIMEOUT", 5*time.Second),
			SearchRadiusKm: getFloatEnv("DRIVER_SEARCH_RADIUS_KM", 10),
		},
		Pricing: PricingConfig{
			BaseRatePerKm: getFloatEnv("PRICING_BASE_RATE_KM", 0.5),
		},
		Matching: MatchingConfig{
			Policy: getEnv("MATCHING_POLICY", "nearest"),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "taxi-dispatch"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
