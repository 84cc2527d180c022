package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Cache       CacheConfig
	Geolocation GeolocationConfig
	Voice       VoiceConfig
	OTEL        OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
	Env  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig holds recommendation result cache configuration
type CacheConfig struct {
	TTLSeconds    int
	MaxCandidates int
}

// GeolocationConfig holds facility lookup provider configuration
type GeolocationConfig struct {
	Provider string
	APIKey   string
}

// VoiceConfig holds voice synthesis provider configuration
type VoiceConfig struct {
	APIKey  string
	VoiceID string
	BaseURL string
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
			Env:  getEnv("APP_ENV", "development"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			TTLSeconds:    getEnvAsInt("CACHE_TTL_SECONDS", 60),
			MaxCandidates: getEnvAsInt("MAX_CANDIDATES", 20),
		},
		Geolocation: GeolocationConfig{
			Provider: getEnv("GEOLOCATION_PROVIDER", "mock"),
			APIKey:   getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Voice: VoiceConfig{
			APIKey:  getEnv("ELEVEN_API_KEY", ""),
			VoiceID: getEnv("ELEVEN_VOICE_ID", ""),
			BaseURL: getEnv("ELEVEN_BASE_URL", "https://api.elevenlabs.io"),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "care-router"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if cfg.Cache.TTLSeconds <= 0 {
		return nil, fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", cfg.Cache.TTLSeconds)
	}
	if cfg.Cache.MaxCandidates <= 0 {
		return nil, fmt.Errorf("MAX_CANDIDATES must be positive, got %d", cfg.Cache.MaxCandidates)
	}

	return cfg, nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
