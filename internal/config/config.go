// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	ServerPort string
	LogMode    string

	// Database. DBDriver is "postgres" or "sqlite" (local runs and tests).
	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	InternalAPISecret string

	Gateway GatewayConfig

	// Rates are basis points: 2000 = 20%.
	CommissionRateBps int64
	GatewayFeeRateBps int64

	WebhookLockTTL time.Duration
}

// GatewayConfig is handed to gateway.NewClient and the payment service.
type GatewayConfig struct {
	BaseURL           string
	KeyID             string
	KeySecret         string
	WebhookSecret     string
	PlatformAccountID string
	Currency          string
	Timeout           time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ServerPort: GetEnv("SERVER_PORT", "8081"),
		LogMode:    GetEnv("LOG_MODE", "development"),

		DBDriver:   GetEnv("DATABASE_DRIVER", "postgres"),
		DBPath:     GetEnv("DATABASE_PATH", "course_marketplace.db"),
		DBHost:     GetEnv("DATABASE_HOST", "localhost"),
		DBPort:     GetEnv("DATABASE_PORT", "5432"),
		DBUser:     GetEnv("DATABASE_USER", "postgres"),
		DBPassword: GetEnv("DATABASE_PASSWORD", "postgres"),
		DBName:     GetEnv("DATABASE_NAME", "course_marketplace"),
		DBSSLMode:  GetEnv("DATABASE_SSL_MODE", "disable"),

		RedisHost:     GetEnv("REDIS_HOST", "localhost"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),
		RedisDB:       GetEnvInt("REDIS_DB", 0),

		InternalAPISecret: os.Getenv("INTERNAL_API_SECRET"),

		Gateway: GatewayConfig{
			BaseURL:           GetEnv("PAYMENT_GATEWAY_URL", "https://api.razorpay.com"),
			KeyID:             os.Getenv("PAYMENT_KEY_ID"),
			KeySecret:         os.Getenv("PAYMENT_KEY_SECRET"),
			WebhookSecret:     os.Getenv("PAYMENT_WEBHOOK_SECRET"),
			PlatformAccountID: os.Getenv("PLATFORM_ACCOUNT_ID"),
			Currency:          GetEnv("PAYMENT_CURRENCY", "INR"),
			Timeout:           GetEnvDuration("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second),
		},

		CommissionRateBps: int64(GetEnvInt("COMMISSION_RATE_BPS", 2000)),
		GatewayFeeRateBps: int64(GetEnvInt("GATEWAY_FEE_RATE_BPS", 236)),

		WebhookLockTTL: GetEnvDuration("WEBHOOK_LOCK_TTL", 30*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service must never start with.
func (c *Config) Validate() error {
	if c.InternalAPISecret == "" {
		return errors.New("INTERNAL_API_SECRET is not set")
	}
	if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DBDriver)
	}
	if c.CommissionRateBps < 0 || c.GatewayFeeRateBps < 0 {
		return errors.New("commission and gateway fee rates must not be negative")
	}
	if c.CommissionRateBps+c.GatewayFeeRateBps > 10000 {
		return fmt.Errorf("commission (%d bps) plus gateway fee (%d bps) exceeds 100%%",
			c.CommissionRateBps, c.GatewayFeeRateBps)
	}
	return nil
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// RedisAddr is host:port for go-redis.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

// GetEnv returns env value or default if missing
func GetEnv(key, defaultValue string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	return val
}

func GetEnvInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultValue
	}
	return d
}
