package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	APIPort string

	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	// LLM configuration
	LLM LLMConfig

	// Weather configuration
	Weather WeatherConfig

	// Auth configuration
	Auth AuthConfig

	// Advice configuration
	Advice AdviceConfig
}

// LLMConfig holds LLM service configuration
type LLMConfig struct {
	Enabled  bool
	Endpoint string
	APIKey   string
	Model    string
}

// WeatherConfig holds the live conditions provider configuration
type WeatherConfig struct {
	Endpoint string
	Timeout  time.Duration
}

// AuthConfig holds token verification configuration
type AuthConfig struct {
	TokenSecret   string
	Issuer        string
	ServiceUID    string
	ServiceEmail  string
	AdminUIDs     []string
	AppCheckToken string
}

// AdviceConfig holds recommendation backend parameters
type AdviceConfig struct {
	Endpoint        string // internal advice endpoint the app requester calls
	AllowedOrigins  []string
	RateLimitSalt   string
	RateLimit       int
	RateLimitWindow time.Duration
	CacheTTL        time.Duration
	MaxBodyBytes    int64
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		APIPort: getEnvOrDefault("API_PORT", "8080"),

		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "perchfinder"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "perchfinder"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "perchfinder123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		// LLM configuration
		LLM: LLMConfig{
			Enabled:  getEnvOrDefault("LLM_ENABLED", "false") == "true",
			Endpoint: getEnvOrDefault("LLM_ENDPOINT", "https://api.openai.com/v1"),
			APIKey:   getEnvOrDefault("LLM_API_KEY", ""),
			Model:    getEnvOrDefault("LLM_MODEL", "gpt-4.1-mini"),
		},

		// Weather configuration
		Weather: WeatherConfig{
			Endpoint: getEnvOrDefault("WEATHER_ENDPOINT", "https://api.open-meteo.com"),
			Timeout:  time.Duration(getEnvInt("WEATHER_TIMEOUT_SECONDS", 10)) * time.Second,
		},

		// Auth configuration
		Auth: AuthConfig{
			TokenSecret:   getEnvOrDefault("AUTH_TOKEN_SECRET", ""),
			Issuer:        getEnvOrDefault("AUTH_ISSUER", "perchfinder"),
			ServiceUID:    getEnvOrDefault("AUTH_SERVICE_UID", "perchfinder-service"),
			ServiceEmail:  getEnvOrDefault("AUTH_SERVICE_EMAIL", "service@perchfinder.app"),
			AdminUIDs:     splitList(os.Getenv("AUTH_ADMIN_UIDS")),
			AppCheckToken: getEnvOrDefault("AUTH_APP_CHECK_TOKEN", ""),
		},

		// Advice configuration
		Advice: AdviceConfig{
			Endpoint:        getEnvOrDefault("ADVICE_ENDPOINT", "http://localhost:8080/api/recommendation"),
			AllowedOrigins:  splitList(getEnvOrDefault("ADVICE_ALLOWED_ORIGINS", "http://localhost:3000")),
			RateLimitSalt:   getEnvOrDefault("ADVICE_RATE_LIMIT_SALT", ""),
			RateLimit:       getEnvInt("ADVICE_RATE_LIMIT", 10),
			RateLimitWindow: time.Duration(getEnvInt("ADVICE_RATE_LIMIT_WINDOW_HOURS", 12)) * time.Hour,
			CacheTTL:        time.Duration(getEnvInt("ADVICE_CACHE_TTL_HOURS", 24)) * time.Hour,
			MaxBodyBytes:    int64(getEnvInt("ADVICE_MAX_BODY_BYTES", 25000)),
		},
	}
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// splitList parses a comma-separated env value into a trimmed slice.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
