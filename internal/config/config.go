// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	KVDynamoDB = "dynamodb"
	KVRedis    = "redis"
	KVBadger   = "badger"

	AssetsS3  = "s3"
	AssetsGCS = "gcs"
)

// Config holds all runtime settings.
type Config struct {
	Port     string
	RunLocal bool
	LogLevel string
	APIToken string

	KVBackend     string
	KVTable       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BadgerDir     string

	AssetBackend       string
	ReceiptsBucket     string
	BannersBucket      string
	PublicBaseURL      string
	GCSCredentialsFile string

	AWSRegion        string
	EventsQueueURL   string
	MetricsNamespace string

	PollInterval time.Duration
}

// Load reads a .env file when present, then the environment. Variables set
// in the real environment take precedence over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		RunLocal:           getEnvBool("RUN_LOCAL", false),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		APIToken:           os.Getenv("API_TOKEN"),
		KVBackend:          strings.ToLower(getEnv("KV_BACKEND", KVDynamoDB)),
		KVTable:            getEnv("KV_TABLE", "topup-kv"),
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		BadgerDir:          os.Getenv("BADGER_DIR"),
		AssetBackend:       strings.ToLower(getEnv("ASSET_BACKEND", AssetsS3)),
		ReceiptsBucket:     getEnv("RECEIPTS_BUCKET", "receipts"),
		BannersBucket:      getEnv("BANNERS_BUCKET", "banners"),
		PublicBaseURL:      os.Getenv("PUBLIC_BASE_URL"),
		GCSCredentialsFile: os.Getenv("GCS_CREDENTIALS_FILE"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		EventsQueueURL:     os.Getenv("EVENTS_QUEUE_URL"),
		MetricsNamespace:   getEnv("METRICS_NAMESPACE", "TopupStorefront"),
	}

	var err error
	if cfg.RedisDB, err = getEnvInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.PollInterval, err = getEnvDuration("POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.KVBackend {
	case KVDynamoDB, KVRedis, KVBadger:
	default:
		return fmt.Errorf("KV_BACKEND: unknown backend %q", c.KVBackend)
	}
	switch c.AssetBackend {
	case AssetsS3, AssetsGCS:
	default:
		return fmt.Errorf("ASSET_BACKEND: unknown backend %q", c.AssetBackend)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL: must be positive, got %s", c.PollInterval)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
