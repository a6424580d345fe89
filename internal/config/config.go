package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the rent ledger service
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Stripe        StripeConfig        `mapstructure:"stripe"`
	Cron          CronConfig          `mapstructure:"cron"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Business      BusinessConfig      `mapstructure:"business"`
	Health        HealthConfig        `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	Host            string        `mapstructure:"DATABASE_HOST"`
	Port            string        `mapstructure:"DATABASE_PORT"`
	Name            string        `mapstructure:"DATABASE_NAME"`
	User            string        `mapstructure:"DATABASE_USER"`
	Password        string        `mapstructure:"DATABASE_PASSWORD"`
	SSLMode         string        `mapstructure:"DATABASE_SSLMODE"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

// DSN returns the Postgres connection string, preferring DATABASE_URL.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(d.User), url.QueryEscape(d.Password), d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	WebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
}

type CronConfig struct {
	Secret               string `mapstructure:"CRON_SECRET"`
	LateFeeSchedule      string `mapstructure:"CRON_LATE_FEE_SCHEDULE"`
	NotificationSchedule string `mapstructure:"CRON_NOTIFICATION_SCHEDULE"`
	Timezone             string `mapstructure:"CRON_TIMEZONE"`
}

type NotificationConfig struct {
	FromEmail  string `mapstructure:"NOTIFY_FROM_EMAIL"`
	AWSRegion  string `mapstructure:"NOTIFY_AWS_REGION"`
	AppBaseURL string `mapstructure:"APP_BASE_URL"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	DefaultGraceDays  int `mapstructure:"DEFAULT_GRACE_PERIOD_DAYS"`
	DefaultRentDueDay int `mapstructure:"DEFAULT_RENT_DUE_DAY"`
	ReminderLeadDays  int `mapstructure:"REMINDER_LEAD_DAYS"`
	ExpiryLeadDays    int `mapstructure:"LEASE_EXPIRY_LEAD_DAYS"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("DEFAULT_GRACE_PERIOD_DAYS", 5)
	viper.SetDefault("DEFAULT_RENT_DUE_DAY", 1)
	viper.SetDefault("REMINDER_LEAD_DAYS", 3)
	viper.SetDefault("LEASE_EXPIRY_LEAD_DAYS", 30)
	viper.SetDefault("CRON_LATE_FEE_SCHEDULE", "0 0 1 * * *")
	viper.SetDefault("CRON_NOTIFICATION_SCHEDULE", "0 0 9 * * *")
	viper.SetDefault("CRON_TIMEZONE", "America/New_York")
	viper.SetDefault("NOTIFY_FROM_EMAIL", "RentEase <noreply@rentease.app>")
	viper.SetDefault("NOTIFY_AWS_REGION", "us-east-1")
	viper.SetDefault("APP_BASE_URL", "http://localhost:3000")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" && c.Database.Host == "" {
		return fmt.Errorf("DATABASE_URL or DATABASE_HOST is required")
	}

	if c.Cron.Secret == "" {
		return fmt.Errorf("CRON_SECRET is required")
	}

	if c.Business.DefaultGraceDays < 0 {
		return fmt.Errorf("DEFAULT_GRACE_PERIOD_DAYS must not be negative")
	}

	if c.Business.DefaultRentDueDay < 1 || c.Business.DefaultRentDueDay > 31 {
		return fmt.Errorf("DEFAULT_RENT_DUE_DAY must be between 1 and 31")
	}

	if c.Business.ReminderLeadDays <= 0 {
		return fmt.Errorf("REMINDER_LEAD_DAYS must be greater than 0")
	}

	if c.Business.ExpiryLeadDays <= 0 {
		return fmt.Errorf("LEASE_EXPIRY_LEAD_DAYS must be greater than 0")
	}

	if _, err := time.LoadLocation(c.Cron.Timezone); err != nil {
		return fmt.Errorf("CRON_TIMEZONE must be a valid IANA timezone: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}
