package config

import (
	"log"
	"log/slog"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Sync      Sync      `yaml:"sync"`
	Analytics Analytics `yaml:"analytics"`
	S3        S3        `yaml:"s3"`
	Metrics   Metrics   `yaml:"metrics"`
	Log       Log       `yaml:"log"`
}

// Server holds HTTP server configuration
type Server struct {
	Host           string        `yaml:"host" env:"SERVER_HOST" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env:"SERVER_PORT" env-default:"8080"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"15s"`
	IdleTimeout    time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"SERVER_REQUEST_TIMEOUT" env-default:"30s"`
}

// Address returns the full server address
func (s Server) Address() string {
	return s.Host + ":" + s.Port
}

// Database holds database configuration
type Database struct {
	PostgresDSN string `yaml:"postgres_dsn" env:"DATABASE_URL" env-required:"true"`

	// Connection pool settings
	MaxOpenConns int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnLifetime time.Duration `yaml:"conn_lifetime" env:"DB_CONN_LIFETIME" env-default:"5m"`
}

// Sync holds configuration of the external batch sync job
type Sync struct {
	BatchURL         string        `yaml:"batch_url" env:"SYNC_BATCH_URL" env-required:"true"`
	APIKey           string        `yaml:"api_key" env:"SYNC_API_KEY"`
	JobName          string        `yaml:"job_name" env:"SYNC_JOB_NAME" env-default:"account_sync"`
	Timeout          time.Duration `yaml:"timeout" env:"SYNC_TIMEOUT" env-default:"10m"`
	Cooldown         time.Duration `yaml:"cooldown" env:"SYNC_COOLDOWN" env-default:"300s"`
	Interval         time.Duration `yaml:"interval" env:"SYNC_INTERVAL" env-default:"1h"`
	SchedulerEnabled bool          `yaml:"scheduler_enabled" env:"SYNC_SCHEDULER_ENABLED" env-default:"true"`
}

// Analytics holds report computation settings
type Analytics struct {
	MemoEnabled bool `yaml:"memo_enabled" env:"ANALYTICS_MEMO_ENABLED" env-default:"true"`
}

// S3 holds S3/MinIO storage configuration for the export archive
type S3 struct {
	Enabled         bool   `yaml:"enabled" env:"S3_ENABLED" env-default:"false"`
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"exports"`
	Region          string `yaml:"region" env:"S3_REGION" env-default:"us-east-1"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL" env-default:"http://localhost:9000/exports"`
}

// Metrics holds Prometheus exporter configuration
type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED" env-default:"true"`
	Address string `yaml:"address" env:"METRICS_ADDRESS" env-default:":9090"`
}

// Log holds logging configuration
type Log struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

// SlogLevel maps the configured level name to a slog level, defaulting to info
func (l Log) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MustLoad loads configuration from environment and panics on error
func MustLoad() Config {
	// Load .env file if exists (for development)
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
