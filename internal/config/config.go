package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port     int
	LogLevel string
	Env      string

	DB        DBConfig
	Shopify   ShopifyConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
}

// DBConfig holds the Postgres connection settings.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// ShopifyConfig holds the admin API settings for upstream order sync.
type ShopifyConfig struct {
	APIVersion string
	// PlatformDomain is the suffix of placeholder customer emails,
	// e.g. "<phone>@cod.codform.app".
	PlatformDomain string
	SyncTimeout    time.Duration
	// Circuit breaker in front of the admin API calls.
	BreakerFailureThreshold int
	BreakerResetTimeout     time.Duration
}

// KafkaConfig holds the order-event publishing settings. Publishing is
// disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	OrdersTopic string
}

// RateLimitConfig holds the public-endpoint rate limiter settings.
type RateLimitConfig struct {
	IPMaxTokens       float64
	IPRefillRate      float64
	TrustForwardedFor bool
}

// getEnv retrieves an environment variable or the default when unset.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, strconv.Itoa(defaultValue))

	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := getEnv(key, strconv.FormatFloat(defaultValue, 'f', -1, 64))

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return v, nil
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	port, err := getEnvInt("PORT", 8080)
	if err != nil {
		return nil, err
	}

	dbPort, err := getEnvInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	syncTimeout, err := getEnvInt("SHOPIFY_SYNC_TIMEOUT_SECONDS", 5)
	if err != nil {
		return nil, err
	}

	breakerThreshold, err := getEnvInt("SHOPIFY_BREAKER_THRESHOLD", 5)
	if err != nil {
		return nil, err
	}

	breakerReset, err := getEnvInt("SHOPIFY_BREAKER_RESET_SECONDS", 30)
	if err != nil {
		return nil, err
	}

	ipMaxTokens, err := getEnvFloat("RATE_LIMIT_IP_MAX_TOKENS", 10)
	if err != nil {
		return nil, err
	}

	ipRefillRate, err := getEnvFloat("RATE_LIMIT_IP_REFILL_RATE", 0.5)
	if err != nil {
		return nil, err
	}

	var brokers []string
	if raw := getEnv("KAFKA_BROKERS", ""); raw != "" {
		for _, b := range strings.Split(raw, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}

	return &Config{
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Env:      getEnv("APP_ENV", "development"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Name:     getEnv("DB_NAME", "codform"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Shopify: ShopifyConfig{
			APIVersion:              getEnv("SHOPIFY_API_VERSION", "2024-01"),
			PlatformDomain:          getEnv("PLATFORM_DOMAIN", "codform.app"),
			SyncTimeout:             time.Duration(syncTimeout) * time.Second,
			BreakerFailureThreshold: breakerThreshold,
			BreakerResetTimeout:     time.Duration(breakerReset) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:     brokers,
			OrdersTopic: getEnv("KAFKA_ORDERS_TOPIC", "cod-orders"),
		},
		RateLimit: RateLimitConfig{
			IPMaxTokens:       ipMaxTokens,
			IPRefillRate:      ipRefillRate,
			TrustForwardedFor: getEnv("TRUST_FORWARDED_FOR", "true") == "true",
		},
	}, nil
}

// GetDBConnString returns the Postgres connection string.
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}
