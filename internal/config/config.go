package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Logger     LoggerConfig
	Auth       AuthConfig
	Cart       CartConfig
	Checkout   CheckoutConfig
	CouponSeed CouponSeedConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration for the admin surface.
type AuthConfig struct {
	AdminAPIKey string
}

// CartConfig holds shopper cart settings.
type CartConfig struct {
	// Namespace prefixes every session key so cart rows are recognisable
	// and a wipe can target them without touching anything else.
	Namespace string
}

// CheckoutConfig bounds the checkout round-trip.
type CheckoutConfig struct {
	TimeoutSeconds int
}

// CouponSeedConfig controls bulk-loading coupon files into the ledger at startup.
type CouponSeedConfig struct {
	Enabled   bool
	FilePaths []string // local gzip files, one "CODE,PCT[,MAXUSES]" per line
	S3Enabled bool
	S3Bucket  string
	S3Region  string
	S3Prefix  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvAsInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			Database:        getEnv("DB_NAME", "fixitstore"),
			MaxConnections:  getEnvAsInt("DB_MAX_CONNECTIONS", 25),
			MinConnections:  getEnvAsInt("DB_MIN_CONNECTIONS", 5),
			MaxConnLifetime: getEnvAsInt("DB_MAX_CONN_LIFETIME", 300),
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Auth: AuthConfig{
			AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
		},
		Cart: CartConfig{
			Namespace: getEnv("CART_NAMESPACE", "fixit:cart"),
		},
		Checkout: CheckoutConfig{
			TimeoutSeconds: getEnvAsInt("CHECKOUT_TIMEOUT_SECONDS", 10),
		},
		CouponSeed: CouponSeedConfig{
			Enabled:   getEnvAsBool("COUPON_SEED_ENABLED", false),
			FilePaths: getEnvAsSlice("COUPON_SEED_FILES", nil),
			S3Enabled: getEnvAsBool("COUPON_SEED_S3_ENABLED", false),
			S3Bucket:  getEnv("COUPON_SEED_S3_BUCKET", ""),
			S3Region:  getEnv("COUPON_SEED_S3_REGION", "ap-south-1"),
			S3Prefix:  getEnv("COUPON_SEED_S3_PREFIX", "coupons/"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.AdminAPIKey == "" {
		return fmt.Errorf("admin API key is required")
	}

	if c.Cart.Namespace == "" {
		return fmt.Errorf("cart namespace is required")
	}

	if c.Checkout.TimeoutSeconds < 1 {
		return fmt.Errorf("checkout timeout must be at least 1 second")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	if c.CouponSeed.Enabled {
		if c.CouponSeed.S3Enabled {
			if c.CouponSeed.S3Bucket == "" {
				return fmt.Errorf("coupon seed S3 bucket is required when S3 is enabled")
			}
			if c.CouponSeed.S3Region == "" {
				return fmt.Errorf("coupon seed S3 region is required when S3 is enabled")
			}
		}
		if !c.CouponSeed.S3Enabled && len(c.CouponSeed.FilePaths) == 0 {
			return fmt.Errorf("coupon seed requires file paths when S3 is disabled")
		}
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsSlice retrieves an environment variable as a comma-separated list.
func getEnvAsSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
