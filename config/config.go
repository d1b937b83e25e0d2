package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Environment string

	// Store configuration
	StoreDriver string
	SeedSamples bool

	// Redis configuration
	RedisURL string

	// PubNub configuration
	PubNubPublishKey   string
	PubNubSubscribeKey string
	PubNubSecretKey    string
	PubNubChannel      string

	// Security
	RateLimitPerMinute int
	BlockBots          bool

	// Monitoring
	EnableMetrics   bool
	MetricsPort     string
	ShutdownTimeout time.Duration
}

// LoadConfig reads the configuration from the environment. Values from a .env
// file in the working directory are applied first if the file exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Could not load .env file", "error", err)
	}

	return &Config{
		// Server
		Environment: getEnv("ENVIRONMENT", "development"),

		// Store
		StoreDriver: getEnv("STORE_DRIVER", "memory"),
		SeedSamples: getEnvAsBool("SEED_SAMPLES", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// PubNub
		PubNubPublishKey:   getEnv("PUBNUB_PUBLISH_KEY", ""),
		PubNubSubscribeKey: getEnv("PUBNUB_SUBSCRIBE_KEY", ""),
		PubNubSecretKey:    getEnv("PUBNUB_SECRET_KEY", ""),
		PubNubChannel:      getEnv("PUBNUB_CHANNEL", "valetdesk-items"),

		// Security
		RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 0),
		BlockBots:          getEnvAsBool("BLOCK_BOTS", false),

		// Monitoring
		EnableMetrics:   getEnvAsBool("ENABLE_METRICS", true),
		MetricsPort:     getEnv("METRICS_PORT", "9090"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", "5s"),
	}
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case "memory", "sql":
	case "redis":
		if c.RedisURL == "" {
			return errors.New("config: STORE_DRIVER=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}

	if c.RateLimitPerMinute < 0 {
		return errors.New("config: RATE_LIMIT_PER_MINUTE must not be negative")
	}
	return nil
}

// NeedsRedis reports whether any enabled component talks to Redis.
func (c *Config) NeedsRedis() bool {
	return c.StoreDriver == "redis" || (c.RedisURL != "" && c.RateLimitPerMinute > 0)
}

func (c *Config) PubNubEnabled() bool {
	return c.PubNubPublishKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	// If parsing fails, try to parse default value
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
