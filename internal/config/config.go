package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL      string        `yaml:"database_url"`
	ServerPort       string        `yaml:"server_port"`
	FrontendURL      string        `yaml:"frontend_url"`
	OpenAIKey        string        `yaml:"openai_api_key"`
	AIModel          string        `yaml:"ai_model"`
	AIBaseURL        string        `yaml:"ai_base_url"`
	AITimeout        time.Duration `yaml:"ai_timeout"`
	RedisURL         string        `yaml:"redis_url"`
	RabbitMQURL      string        `yaml:"rabbitmq_url"`
	RabbitMQPrefetch int           `yaml:"rabbitmq_prefetch"`
	RateLimit        string        `yaml:"rate_limit"`
	AnalysisInterval time.Duration `yaml:"analysis_interval"`
	ServerDebugMode  bool          `yaml:"server_debug_mode"`
	WorkerDebugMode  bool          `yaml:"worker_debug_mode"`
	OTELEnabled      bool          `yaml:"otel_enabled"`
	OTELEndpoint     string        `yaml:"otel_endpoint"`
}

// Load loads configuration from an optional YAML file (CARDFILE_CONFIG)
// with environment variables taking precedence.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       "8080",
		FrontendURL:      "http://localhost:3000",
		AITimeout:        30 * time.Second,
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
		RateLimit:        "10-S",
		AnalysisInterval: time.Hour,
	}

	if path := os.Getenv("CARDFILE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.AITimeout = getEnvDuration("AI_TIMEOUT", cfg.AITimeout)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.AnalysisInterval = getEnvDuration("ANALYSIS_INTERVAL", cfg.AnalysisInterval)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
