package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// app config, mostly AI provider and persistence related
type Config struct {
	Provider string
	Port     string

	MongoURI string // empty means in-memory repositories

	// FeedbackWaitBound is how long an HTTP caller waits for feedback
	// generation before getting a "pending" answer.
	FeedbackWaitBound time.Duration

	ReconcilerEnabled  bool
	ReconcilerSchedule string
	ReconcilerRetries  uint64

	AllowedOrigins []string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:           getEnvOrDefault("AI_PROVIDER", "gemini"),
		Port:               getEnvOrDefault("PORT", "8080"),
		MongoURI:           os.Getenv("MONGO_URI"),
		FeedbackWaitBound:  getEnvDuration("FEEDBACK_WAIT_BOUND", 50*time.Second),
		ReconcilerEnabled:  getEnvOrDefault("FEEDBACK_RECONCILER_ENABLED", "false") == "true",
		ReconcilerSchedule: getEnvOrDefault("FEEDBACK_RECONCILER_SCHEDULE", "*/15 * * * *"),
		ReconcilerRetries:  getEnvUint("FEEDBACK_RECONCILER_RETRIES", 3),
		AllowedOrigins:     []string{getEnvOrDefault("ALLOWED_ORIGIN", "http://localhost:3000")},
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	if config.FeedbackWaitBound <= 0 {
		return errors.New("FEEDBACK_WAIT_BOUND must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
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

func getEnvUint(key string, defaultValue uint64) uint64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseUint(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}
