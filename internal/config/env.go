package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port    string
	GinMode string

	// Rendering
	VerboseLogging    bool
	Timezone          string
	IgnoreHTTPSErrors bool
	ChromeBin         string

	// HTTP front end
	AuthToken   string
	CORSOrigins []string

	// Redis: rate limiting, render queue, job results
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	ArtifactTTLMinutes     int
	CleanupIntervalMinutes int
	WorkerConcurrency      int
	OTLPEndpoint           string
}

func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:    getEnv("PORT", "8081"),
		GinMode: getEnv("GIN_MODE", "debug"),

		VerboseLogging:    getEnvBool("VERBOSE_LOGGING", false),
		Timezone:          getEnv("BROWSER_TZ", ""),
		IgnoreHTTPSErrors: getEnvBool("IGNORE_HTTPS_ERRORS", false),
		ChromeBin:         getEnv("CHROME_BIN", ""),

		AuthToken:   getEnv("AUTH_TOKEN", "-"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000"), ","),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		ArtifactTTLMinutes:     getEnvInt("ARTIFACT_TTL_MINUTES", 60),
		CleanupIntervalMinutes: getEnvInt("CLEANUP_INTERVAL_MINUTES", 15),
		WorkerConcurrency:      getEnvInt("WORKER_CONCURRENCY", 4),
		OTLPEndpoint:           getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	return cfg, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
