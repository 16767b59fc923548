package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Storage    StorageConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Auth       AuthConfig
	Settlement SettlementConfig
	Media      MediaConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds database specific configuration
type DatabaseConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

// DSN returns the connection string for the pgx driver
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// StorageConfig selects the repository backend. Driver is "memory" or
// "postgres"; Seed loads the demo catalog into an empty store.
type StorageConfig struct {
	Driver string
	Seed   bool
}

// RedisConfig holds response cache configuration
type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
	Prefix   string
}

// KafkaConfig holds Kafka specific configuration
type KafkaConfig struct {
	Enabled  bool
	Brokers  []string
	ClientID string
	Topics   map[string]string
}

// Topic returns the configured topic for name. Viper lowercases map keys.
func (k KafkaConfig) Topic(name string) string {
	return k.Topics[strings.ToLower(name)]
}

// AuthConfig holds wallet session settings
type AuthConfig struct {
	JWTSecret       string
	SessionDuration time.Duration
}

// SettlementConfig selects how trade intents are settled. Mode "mock" settles
// locally after Delay, "remote" forwards to URL.
type SettlementConfig struct {
	Mode    string
	Delay   time.Duration
	URL     string
	Timeout time.Duration
}

// MediaConfig holds token image storage configuration
type MediaConfig struct {
	Type         string
	MaxSize      int64
	AllowedTypes []string
	Local        LocalMediaConfig
	S3           S3MediaConfig
}

// LocalMediaConfig holds local filesystem storage settings
type LocalMediaConfig struct {
	BasePath    string
	BaseURL     string
	Permissions string
}

// S3MediaConfig holds S3 storage settings
type S3MediaConfig struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	Endpoint  string
	BaseURL   string
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerMinute int
	BurstSize         int
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LoadConfig loads the configuration from file and environment variables.
// A missing file is not an error: defaults and ECOCHAIN_* variables apply.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Environment variables override
	v.SetEnvPrefix("ECOCHAIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "ecochain")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ecochain")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")
	v.SetDefault("database.migrate", true)

	// Storage defaults
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.seed", true)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cacheTTL", "30s")
	v.SetDefault("redis.prefix", "ecochain:cache")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.clientID", "token-catalog")
	v.SetDefault("kafka.topics.tokenEvents", "token-events")
	v.SetDefault("kafka.topics.tradeEvents", "trade-events")

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "change-me")
	v.SetDefault("auth.sessionDuration", "24h")

	// Settlement defaults
	v.SetDefault("settlement.mode", "mock")
	v.SetDefault("settlement.delay", "2s")
	v.SetDefault("settlement.timeout", "30s")

	// Media defaults
	v.SetDefault("media.type", "local")
	v.SetDefault("media.maxSize", 5*1024*1024)
	v.SetDefault("media.allowedTypes", []string{"image/png", "image/jpeg", "image/gif", "image/svg+xml", "image/webp"})
	v.SetDefault("media.local.basePath", "./uploads")
	v.SetDefault("media.local.baseURL", "/uploads")
	v.SetDefault("media.local.permissions", "0644")

	// Rate limit defaults
	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 300)
	v.SetDefault("rateLimit.burstSize", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.maxSizeMB", 100)
	v.SetDefault("logging.maxBackups", 3)
	v.SetDefault("logging.maxAgeDays", 28)
}
