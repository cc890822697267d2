package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Analysis AnalysisConfig
	Extract  ExtractConfig
	LLM      LLMConfig
	Store    StoreConfig
}

// AnalysisConfig holds the knobs of the analysis pipeline
type AnalysisConfig struct {
	MaxChunkSize        int           `validate:"gt=0"`
	SinglePassThreshold int           `validate:"gt=0"`
	MaxRetries          int           `validate:"gte=0,lte=10"`
	Concurrency         int           `validate:"gt=0,lte=16"`
	BackoffBase         time.Duration `validate:"gte=0"`
	BackoffMax          time.Duration `validate:"gte=0"`
}

// ExtractConfig holds text-extraction configuration
type ExtractConfig struct {
	Pdftotext    string // optional external fallback binary; empty disables it
	MinTextRunes int    `validate:"gte=0"`
	MaxPages     int    `validate:"gte=0"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Provider    string `validate:"oneof=gemini openai"`
	Model       string `validate:"required"`
	APIKey      string
	BaseURL     string
	Temperature float32       `validate:"gte=0,lte=2"`
	Timeout     time.Duration `validate:"gt=0"`
}

// StoreConfig holds the optional assessment history store configuration
type StoreConfig struct {
	DSN         string // empty disables history
	MaxConns    int
	DialTimeout time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	provider := strings.ToLower(getEnv("LLM_PROVIDER", "gemini"))
	return &Config{
		Analysis: AnalysisConfig{
			MaxChunkSize:        getEnvAsInt("FEEDBACK_MAX_CHUNK_SIZE", 8000),
			SinglePassThreshold: getEnvAsInt("FEEDBACK_SINGLE_PASS_THRESHOLD", 30000),
			MaxRetries:          getEnvAsInt("FEEDBACK_MAX_RETRIES", 3),
			Concurrency:         getEnvAsInt("FEEDBACK_CONCURRENCY", 3),
			BackoffBase:         getEnvAsDuration("FEEDBACK_BACKOFF_BASE", 500*time.Millisecond),
			BackoffMax:          getEnvAsDuration("FEEDBACK_BACKOFF_MAX", 10*time.Second),
		},
		Extract: ExtractConfig{
			Pdftotext:    getEnv("PDFTOTEXT_BIN", ""),
			MinTextRunes: getEnvAsInt("EXTRACT_MIN_TEXT_RUNES", 50),
			MaxPages:     getEnvAsInt("EXTRACT_MAX_PAGES", 0),
		},
		LLM: loadLLMConfig(provider),
		Store: StoreConfig{
			DSN:         getEnv("DB_URL", ""),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 4),
			DialTimeout: getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
	}
}

func loadLLMConfig(provider string) LLMConfig {
	cfg := LLMConfig{
		Provider:    provider,
		Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.2),
		Timeout:     getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
	}
	switch provider {
	case "openai":
		cfg.Model = getEnv("OPENAI_MODEL", "gpt-4o-mini")
		cfg.APIKey = getEnv("OPENAI_API_KEY", "")
		cfg.BaseURL = getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")
	default:
		cfg.Model = getEnv("GEMINI_MODEL", "gemini-2.0-flash")
		cfg.APIKey = getEnv("GEMINI_API_KEY", "")
		cfg.BaseURL = getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta")
	}
	return cfg
}

// Helper functions for environment variable parsing
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if err := ValidateStruct(c); err != nil {
		return NewAppError("CONFIG_ERROR", "invalid configuration", err)
	}
	if c.LLM.APIKey == "" {
		key := "GEMINI_API_KEY"
		if c.LLM.Provider == "openai" {
			key = "OPENAI_API_KEY"
		}
		return NewAppError("CONFIG_ERROR", key+" is required", ErrInvalidInput)
	}
	return nil
}
