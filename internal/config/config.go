package config

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheBackendRedis    = "redis"
	CacheBackendFile     = "file"
	CacheBackendMemory   = "memory"
	CacheBackendPostgres = "postgres"
	CacheBackendObject   = "object"
	CacheBackendNone     = "none"
)

type Config struct {
	Server   ServerConfig
	Worker   WorkerConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Database DatabaseConfig
	MinIO    MinIOConfig
	RabbitMQ RabbitMQConfig
	YouTube  YouTubeConfig
	Provider ProviderConfig
}

type ServerConfig struct {
	Port            int           `envconfig:"API_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"2m"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"10s"`
}

type WorkerConfig struct {
	ShutdownTimeout time.Duration `envconfig:"WORKER_SHUTDOWN_TIMEOUT" default:"30s"`
}

type CacheConfig struct {
	Backend  string `envconfig:"CACHE_BACKEND" default:"redis"`
	FilePath string `envconfig:"CACHE_FILE_PATH" default:"./data/ytpodcast-cache.db"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" default:"ytpodcast"`
	Password string `envconfig:"POSTGRES_PASSWORD" default:"ytpodcast"`
	DBName   string `envconfig:"POSTGRES_DB" default:"ytpodcast"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

type MinIOConfig struct {
	Endpoint     string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	AccessKey    string `envconfig:"MINIO_ACCESS_KEY" default:"minioadmin"`
	SecretKey    string `envconfig:"MINIO_SECRET_KEY" default:"minioadmin"`
	Bucket       string `envconfig:"MINIO_BUCKET" default:"ytpodcast"`
	UseSSL       bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	CreateBucket bool   `envconfig:"MINIO_CREATE_BUCKET" default:"true"`
}

type RabbitMQConfig struct {
	Host     string `envconfig:"RABBITMQ_HOST" default:"localhost"`
	Port     int    `envconfig:"RABBITMQ_PORT" default:"5672"`
	User     string `envconfig:"RABBITMQ_USER" default:"ytpodcast"`
	Password string `envconfig:"RABBITMQ_PASSWORD" default:"ytpodcast"`
	VHost    string `envconfig:"RABBITMQ_VHOST" default:"/"`
	Enabled  bool   `envconfig:"RABBITMQ_ENABLED" default:"true"`
}

func (c RabbitMQConfig) URL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

type YouTubeConfig struct {
	HTTPTimeout time.Duration `envconfig:"YOUTUBE_HTTP_TIMEOUT" default:"30s"`
	VideoTTL    time.Duration `envconfig:"YOUTUBE_VIDEO_TTL" default:"1m"`
}

type ProviderConfig struct {
	DefaultDescription string `envconfig:"PROVIDER_DEFAULT_DESCRIPTION" default:"No description available."`
	// MaxLimit caps the limit accepted by the HTTP API. Zero disables the cap.
	MaxLimit int `envconfig:"PROVIDER_MAX_LIMIT" default:"50"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendFile, CacheBackendMemory,
		CacheBackendPostgres, CacheBackendObject, CacheBackendNone:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND %s", strconv.Quote(c.Cache.Backend))
	}
	if c.Cache.Backend == CacheBackendFile && c.Cache.FilePath == "" {
		return fmt.Errorf("CACHE_FILE_PATH is required for the file backend")
	}
	if c.Provider.MaxLimit < 0 {
		return fmt.Errorf("PROVIDER_MAX_LIMIT must not be negative, got %d", c.Provider.MaxLimit)
	}
	return nil
}
