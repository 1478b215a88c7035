// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// minSecretKeyLen is the shortest HMAC secret accepted at startup.
const minSecretKeyLen = 16

// Config holds application configuration loaded from the environment.
// It is built once by Load and treated as read-only afterwards.
type Config struct {
	// HTTPAddr is the address the HTTP API listens on (e.g. :8000).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// GRPCAddr is the optional address of the gRPC health endpoint; empty disables it.
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty means in-memory stores (development only).
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// SecretKey is the symmetric HMAC key used to sign access and refresh credentials.
	SecretKey string `mapstructure:"SECRET_KEY"`
	// AccessTokenExpiration is the access credential lifetime in seconds.
	AccessTokenExpiration int `mapstructure:"ACCESS_TOKEN_EXPIRATION"`
	// RefreshTokenExpiration is the refresh credential lifetime in seconds.
	RefreshTokenExpiration int `mapstructure:"REFRESH_TOKEN_EXPIRATION"`
	// BcryptCost is the bcrypt cost factor (4–31); default 12.
	BcryptCost int `mapstructure:"BCRYPT_COST"`
	// AdminRole is the role name required by the role-management routes.
	AdminRole string `mapstructure:"ADMIN_ROLE"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogFormat is json or text.
	LogFormat string `mapstructure:"LOG_FORMAT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint; empty installs no-op providers.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTel service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. Empty disables event streaming.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// HistoryKafkaTopic is the topic login-history events are written to.
	HistoryKafkaTopic string `mapstructure:"HISTORY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the history worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is the Loki base URL the worker pushes to (worker only).
	LokiURL string `mapstructure:"LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8000")
	v.SetDefault("GRPC_ADDR", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("ACCESS_TOKEN_EXPIRATION", 900)
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", 604800)
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("ADMIN_ROLE", "admin")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "auth-session-service")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("HISTORY_KAFKA_TOPIC", "auth-login-history")
	v.SetDefault("KAFKA_GROUP_ID", "auth-history-worker")
	v.SetDefault("LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("config: HTTP_ADDR must be set")
	}
	if len(c.SecretKey) < minSecretKeyLen {
		return errors.New("config: SECRET_KEY must be set and at least 16 bytes long")
	}
	if c.AccessTokenExpiration <= 0 {
		return errors.New("config: ACCESS_TOKEN_EXPIRATION must be a positive number of seconds")
	}
	if c.RefreshTokenExpiration <= 0 {
		return errors.New("config: REFRESH_TOKEN_EXPIRATION must be a positive number of seconds")
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 12
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("config: BCRYPT_COST must be between 4 and 31")
	}
	if strings.TrimSpace(c.AdminRole) == "" {
		c.AdminRole = "admin"
	}
	if c.DatabaseURL == "" && c.IsProduction() {
		return errors.New("config: DATABASE_URL must be set when APP_ENV=production")
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), "production")
}

// AccessTTL returns the access credential lifetime.
func (c *Config) AccessTTL() time.Duration {
	return time.Duration(c.AccessTokenExpiration) * time.Second
}

// RefreshTTL returns the refresh credential lifetime.
func (c *Config) RefreshTTL() time.Duration {
	return time.Duration(c.RefreshTokenExpiration) * time.Second
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// An empty result means event streaming is disabled.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
