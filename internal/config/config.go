package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/hospital-api/pkg/messaging/redis"
	"github.com/jwalitptl/hospital-api/pkg/storage"
	"github.com/jwalitptl/hospital-api/pkg/validator"
	"github.com/jwalitptl/hospital-api/pkg/worker"
)

const envPrefix = "HMS"

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Outbox   OutboxConfig   `mapstructure:"outbox"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Audit    AuditConfig    `mapstructure:"audit"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"min=1"`
	RateLimit      float64  `mapstructure:"rate_limit" validate:"gt=0"`
	RateBurst      int      `mapstructure:"rate_burst" validate:"min=1"`
	AllowOrigins   []string `mapstructure:"allow_origins"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes" validate:"min=1"`
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            int           `mapstructure:"port" validate:"required"`
	User            string        `mapstructure:"user" validate:"required"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name" validate:"required"`
	SSLMode         string        `mapstructure:"sslmode" validate:"oneof=disable require verify-ca verify-full"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url" validate:"required"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	// EventChannel receives every dispatched outbox event.
	EventChannel string `mapstructure:"event_channel" validate:"required"`
}

type OutboxConfig struct {
	BatchSize     int           `mapstructure:"batch_size" validate:"min=1"`
	PollInterval  time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	RetryAttempts int           `mapstructure:"retry_attempts" validate:"min=1"`
	RetryDelay    time.Duration `mapstructure:"retry_delay" validate:"gt=0"`
	MaxRetries    int           `mapstructure:"max_retries" validate:"min=1"`
	RetentionDays int           `mapstructure:"retention_days" validate:"min=1"`
}

type StorageConfig struct {
	Endpoint  string `mapstructure:"endpoint" validate:"required"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket" validate:"required"`
	// Region skips the bucket location lookup when set.
	Region string `mapstructure:"region"`
	// Reports maps a report name (exams-list, diseases-list) to its object key.
	Reports map[string]string `mapstructure:"reports"`
	// Documents maps a numeric document type to its object key.
	Documents map[string]string `mapstructure:"documents"`
}

type CatalogConfig struct {
	CacheTTL          time.Duration `mapstructure:"cache_ttl" validate:"gt=0"`
	InvalidateChannel string        `mapstructure:"invalidate_channel" validate:"required"`
}

type AuthConfig struct {
	JWTSecret   string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	Issuer      string        `mapstructure:"issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry" validate:"gt=0"`
	// Users maps a basic-auth username to its bcrypt hash.
	Users map[string]string `mapstructure:"users"`
}

type AuditConfig struct {
	RetentionDays   int           `mapstructure:"retention_days" validate:"min=1"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `mapstructure:"pretty"`
}

// secrets are read straight from the environment after the file so they
// cannot be shadowed by a checked-in config.yaml.
type secrets struct {
	DatabasePassword string `envconfig:"DATABASE_PASSWORD"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	StorageSecretKey string `envconfig:"STORAGE_SECRET_KEY"`
	RedisURL         string `envconfig:"REDIS_URL"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.timeout_seconds", 30)
	v.SetDefault("server.rate_limit", 50)
	v.SetDefault("server.rate_burst", 100)
	v.SetDefault("server.allow_origins", []string{"*"})
	v.SetDefault("server.max_body_bytes", 1<<20)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "hospital")
	v.SetDefault("database.name", "hospital")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", "100ms")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.event_channel", "hospital.events")

	v.SetDefault("outbox.batch_size", 100)
	v.SetDefault("outbox.poll_interval", "5s")
	v.SetDefault("outbox.retry_attempts", 3)
	v.SetDefault("outbox.retry_delay", "1s")
	v.SetDefault("outbox.max_retries", 10)
	v.SetDefault("outbox.retention_days", 7)

	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.bucket", "hospital-reports")
	v.SetDefault("storage.reports", map[string]string{
		"exams-list":    "reports/exams_list.pdf",
		"diseases-list": "reports/diseases_list.pdf",
	})

	v.SetDefault("catalog.cache_ttl", "10m")
	v.SetDefault("catalog.invalidate_channel", "hospital.catalog.invalidate")

	v.SetDefault("auth.issuer", "hospital-api")
	v.SetDefault("auth.token_expiry", "12h")

	v.SetDefault("audit.retention_days", 365)
	v.SetDefault("audit.cleanup_interval", "24h")

	v.SetDefault("log.level", "info")
}

// LoadConfig reads config.yaml from the given directories (default "." and
// "./config"), then HMS_* environment variables, then the secret overrides.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.applySecrets(); err != nil {
		return nil, err
	}

	if err := validator.New().Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) applySecrets() error {
	var s secrets
	if err := envconfig.Process(envPrefix, &s); err != nil {
		return fmt.Errorf("failed to read secrets from environment: %w", err)
	}

	if s.DatabasePassword != "" {
		c.Database.Password = s.DatabasePassword
	}
	if s.JWTSecret != "" {
		c.Auth.JWTSecret = s.JWTSecret
	}
	if s.StorageSecretKey != "" {
		c.Storage.SecretKey = s.StorageSecretKey
	}
	if s.RedisURL != "" {
		c.Redis.URL = s.RedisURL
	}
	return nil
}

// DSN builds the lib/pq connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}

func (c *OutboxConfig) ToWorkerConfig() worker.OutboxProcessorConfig {
	return worker.OutboxProcessorConfig{
		BatchSize:     c.BatchSize,
		PollInterval:  c.PollInterval,
		RetryAttempts: c.RetryAttempts,
		RetryDelay:    c.RetryDelay,
		MaxRetries:    c.MaxRetries,
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}

func (c *StorageConfig) ToStoreConfig() storage.Config {
	return storage.Config{
		Endpoint:  c.Endpoint,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		UseSSL:    c.UseSSL,
		Bucket:    c.Bucket,
		Region:    c.Region,
	}
}
