package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	LogPretty   bool
	Timezone    string

	// Google OAuth / Gmail
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GmailAPIEndpoint   string

	// Inbox
	InboxPageSize         int
	InboxFetchConcurrency int
	InboxCacheTTLSec      int
	GmailTimeoutSec       int

	// LLM
	OpenAIAPIKey   string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeoutSec  int
	LLMMaxRetries  int
	LLMRetryBaseMS int
	LLMRetryMaxMS  int

	// Session store
	RedisURL string

	// HTTP
	AllowedOrigins []string
	AIRateLimit    int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "3001"),
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		LogPretty:   getEnvBool("LOG_PRETTY", false),
		Timezone:    getEnv("TIMEZONE", "Local"),

		// Google
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:3001/api/auth/google/callback"),
		GmailAPIEndpoint:   getEnv("GMAIL_API_ENDPOINT", ""),

		// Inbox
		InboxPageSize:         getEnvInt("INBOX_PAGE_SIZE", 20),
		InboxFetchConcurrency: getEnvInt("INBOX_FETCH_CONCURRENCY", 0),
		InboxCacheTTLSec:      getEnvInt("INBOX_CACHE_TTL_SEC", 300),
		GmailTimeoutSec:       getEnvInt("GMAIL_TIMEOUT_SEC", 30),

		// LLM
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		LLMBaseURL:     getEnv("LLM_BASE_URL", ""),
		LLMModel:       getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 2048),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMTimeoutSec:  getEnvInt("LLM_TIMEOUT_SEC", 60),
		LLMMaxRetries:  getEnvInt("LLM_MAX_RETRIES", 3),
		LLMRetryBaseMS: getEnvInt("LLM_RETRY_BASE_MS", 1000),
		LLMRetryMaxMS:  getEnvInt("LLM_RETRY_MAX_MS", 8000),

		RedisURL: getEnv("REDIS_URL", ""),

		// CORS
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		AIRateLimit:    getEnvInt("AI_RATE_LIMIT", 30),
	}

	if cfg.InboxFetchConcurrency <= 0 {
		cfg.InboxFetchConcurrency = cfg.InboxPageSize
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if c.InboxPageSize <= 0 {
		return fmt.Errorf("INBOX_PAGE_SIZE must be positive, got %d", c.InboxPageSize)
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative, got %d", c.LLMMaxRetries)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves Timezone. "Local" and "" map to the host zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

func (c *Config) InboxCacheTTL() time.Duration {
	return time.Duration(c.InboxCacheTTLSec) * time.Second
}

func (c *Config) LLMTimeout() time.Duration {
	return time.Duration(c.LLMTimeoutSec) * time.Second
}

func (c *Config) GmailTimeout() time.Duration {
	return time.Duration(c.GmailTimeoutSec) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
