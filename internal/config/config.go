package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	Port          string
	Environment   string
	LogLevel      string
	PublicBaseURL string
	Database      DatabaseConfig
	Redis         RedisConfig
	Payment       PaymentConfig
	Webhook       WebhookConfig
	Mail          MailConfig
	Affiliate     AffiliateConfig
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	MigrationsPath string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type PaymentConfig struct {
	APIKey string
	// Mode selects the gateway host: "sandbox" or "live".
	Mode string
}

type WebhookConfig struct {
	// SigningSecret verifies inbound gateway webhooks. An empty value
	// disables verification entirely (development only) and is logged
	// loudly at startup.
	SigningSecret string
}

type MailConfig struct {
	APIURL string
	APIKey string
	// From is the notification sender address.
	From string
	// FallbackRecipient receives outcome mail when an order has no
	// customer email (should not happen past validation, but webhooks
	// may reference orders created by older clients).
	FallbackRecipient string
}

type AffiliateConfig struct {
	APIURL string
	APIKey string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("MIGRATIONS_PATH", "./internal/repository/postgres/migrations")
	viper.SetDefault("PAYMENT_MODE", "sandbox")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:          getEnvOrViper("PORT", "8080"),
		Environment:   getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:      getEnvOrViper("LOG_LEVEL", "info"),
		PublicBaseURL: getEnvOrViper("PUBLIC_BASE_URL", "http://localhost:8080"),
		Database: DatabaseConfig{
			Host:           getEnvOrViper("DB_HOST", "localhost"),
			Port:           getEnvOrViper("DB_PORT", "5432"),
			User:           getEnvOrViper("DB_USER", "postgres"),
			Password:       getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:         getEnvOrViper("DB_NAME", "shopcore"),
			SSLMode:        getEnvOrViper("DB_SSLMODE", "disable"),
			MigrationsPath: getEnvOrViper("MIGRATIONS_PATH", "./internal/repository/postgres/migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
		},
		Payment: PaymentConfig{
			APIKey: getEnvOrViper("PAYMENT_API_KEY", ""),
			Mode:   getEnvOrViper("PAYMENT_MODE", "sandbox"),
		},
		Webhook: WebhookConfig{
			SigningSecret: getEnvOrViper("WEBHOOK_SIGNING_SECRET", ""),
		},
		Mail: MailConfig{
			APIURL:            getEnvOrViper("MAIL_API_URL", ""),
			APIKey:            getEnvOrViper("MAIL_API_KEY", ""),
			From:              getEnvOrViper("MAIL_FROM", "orders@kosuite.io"),
			FallbackRecipient: getEnvOrViper("MAIL_FALLBACK_RCPT", ""),
		},
		Affiliate: AffiliateConfig{
			APIURL: getEnvOrViper("AFFILIATE_API_URL", ""),
			APIKey: getEnvOrViper("AFFILIATE_API_KEY", ""),
		},
	}

	// Validate required fields
	if cfg.Payment.APIKey == "" {
		return nil, fmt.Errorf("PAYMENT_API_KEY is required")
	}
	if cfg.Payment.Mode != "sandbox" && cfg.Payment.Mode != "live" {
		return nil, fmt.Errorf("PAYMENT_MODE must be sandbox or live, got %q", cfg.Payment.Mode)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
