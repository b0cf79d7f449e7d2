package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration, loaded from environment
// variables with an optional .env file for local development.
type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DatabaseURL string
	RedisURL    string

	JWTSecret string
	JWTExpiry time.Duration

	// Groq is the AI provider used for answer suggestions. An empty
	// APIKey disables the feature; requests get 503.
	Groq GroqConfig

	// KafkaBrokers is empty when event publishing is disabled.
	KafkaBrokers []string

	// StrictResolve limits resolving to the doubt author and
	// instructors instead of any authenticated user.
	StrictResolve bool
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// LoadConfig reads configuration from the environment. A .env file is
// loaded first when present; shell variables take precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   time.Duration(getEnvInt("JWT_EXPIRE_HOURS", 24)) * time.Hour,
		Groq: GroqConfig{
			APIKey:  os.Getenv("GROQ_API_KEY"),
			BaseURL: os.Getenv("GROQ_BASE_URL"),
			Model:   os.Getenv("GROQ_MODEL"),
		},
		StrictResolve: getEnvBool("STRICT_RESOLVE", false),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
