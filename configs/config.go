package config

import (
	"os"
	"strconv"
	"time"

	"github.com/maheshrc27/autopost/internal/models"
)

type Config struct {
	PostgresURI     string
	RedisURI        string
	WorkerName      string
	AccountID       string
	Platform        string
	Headless        bool
	DailyLimit      int
	StatusPort      string
	ImageDir        string
	ClaimTTL        time.Duration
	StaleAfter      time.Duration
	BackoffInterval time.Duration
	PostIntervalMin time.Duration
	PostIntervalMax time.Duration
}

func LoadConfig() *Config {
	platform := getEnv("TARGET_PLATFORM", models.PlatformCafe)

	// Default cadence differs per platform; the cafe audience tolerates
	// a slower pace.
	defaultMin, defaultMax := 20*time.Minute, 50*time.Minute
	if platform == models.PlatformCafe {
		defaultMin, defaultMax = 40*time.Minute, 80*time.Minute
	}

	return &Config{
		PostgresURI:     getEnv("POSTGRES_URI", ""),
		RedisURI:        getEnv("REDIS_URI", ""),
		WorkerName:      getEnv("WORKER_NAME", ""),
		AccountID:       getEnv("ACCOUNT_ID", ""),
		Platform:        platform,
		Headless:        getEnvBool("HEADLESS", true),
		DailyLimit:      getEnvInt("DAILY_POST_LIMIT", 10),
		StatusPort:      getEnv("STATUS_PORT", "3000"),
		ImageDir:        getEnv("IMAGE_DIR", "images"),
		ClaimTTL:        getEnvDuration("CLAIM_TTL", 30*time.Minute),
		StaleAfter:      getEnvDuration("WORKER_STALE_AFTER", 10*time.Minute),
		BackoffInterval: getEnvDuration("BACKOFF_INTERVAL", 30*time.Minute),
		PostIntervalMin: getEnvDuration("POST_INTERVAL_MIN", defaultMin),
		PostIntervalMax: getEnvDuration("POST_INTERVAL_MAX", defaultMax),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
