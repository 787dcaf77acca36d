package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Published sheet and n8n endpoints used when nothing else is configured.
const (
	DefaultDatasetURL        = "https://docs.google.com/spreadsheets/d/e/2PACX-1vQKLJLBavG8yW1uZdo1cw_ur0iCPDXBR8KUd8jp4hrRSdHSwXMq2xOCU-pR0_sXznMl990JhV_YRwdr/pub?gid=0&single=true&output=csv"
	DefaultInsightWebhookURL = "https://n8n.dnklabs.xyz/webhook-test/motostock-analyse"
	DefaultRestockWebhookURL = "https://n8n.dnklabs.xyz/webhook/motostock-restock"
)

// Cache drivers.
const (
	CacheDriverMemory   = "memory"
	CacheDriverSQLite   = "sqlite"
	CacheDriverPostgres = "postgres"
	CacheDriverS3       = "s3"
	CacheDriverRedis    = "redis"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Browser origins allowed to call the API. Empty disables CORS handling.
	CORSAllowedOrigins []string

	// Dataset source. DatasetFile takes precedence over DatasetURL.
	DatasetURL   string
	DatasetFile  string
	FetchTimeout time.Duration

	AutoRefresh     bool
	RefreshInterval time.Duration
	RestockDelay    time.Duration

	CacheDriver      string
	CacheSQLitePath  string
	CachePostgresDSN string
	CacheS3Bucket    string
	CacheS3Region    string
	CacheS3Endpoint  string
	CacheS3Prefix    string
	CacheS3PathStyle bool
	CacheS3AccessKey string
	CacheS3SecretKey string
	CacheRedisURL    string
	CacheRedisPrefix string

	InsightWebhookURL string
	RestockWebhookURL string

	KafkaEnabled           bool
	KafkaBrokers           []string
	KafkaSnapshotTopic     string
	KafkaNotificationTopic string

	// Mapbox geocoding configuration.
	MapboxToken     string
	MapboxEnabled   bool
	MapboxTimeout   time.Duration
	MapboxCacheSize int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s", true)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", domain.DefaultRefreshInterval.String(), false)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateInterval(refreshInterval); err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	restockDelay, err := parseDuration("RESTOCK_DELAY", "2s", true)
	if err != nil {
		return nil, err
	}
	mapboxTimeout, err := parseDuration("MAPBOX_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	autoRefresh, err := parseBool("AUTO_REFRESH", true)
	if err != nil {
		return nil, err
	}
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", false)
	if err != nil {
		return nil, err
	}
	pathStyle, err := parseBool("CACHE_S3_PATH_STYLE", false)
	if err != nil {
		return nil, err
	}

	mapboxToken := os.Getenv("MAPBOX_TOKEN")
	mapboxEnabled := mapboxToken != ""
	if v := os.Getenv("MAPBOX_ENABLED"); v != "" {
		mapboxEnabled = v == "true"
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CORSAllowedOrigins: parseList(os.Getenv("CORS_ALLOWED_ORIGINS")),

		DatasetURL:   sharedcfg.EnvOrDefault("DATASET_URL", DefaultDatasetURL),
		DatasetFile:  os.Getenv("DATASET_FILE"),
		FetchTimeout: fetchTimeout,

		AutoRefresh:     autoRefresh,
		RefreshInterval: refreshInterval,
		RestockDelay:    restockDelay,

		CacheDriver:      strings.ToLower(sharedcfg.EnvOrDefault("CACHE_DRIVER", CacheDriverSQLite)),
		CacheSQLitePath:  sharedcfg.EnvOrDefault("CACHE_SQLITE_PATH", "motostock.db"),
		CachePostgresDSN: os.Getenv("CACHE_POSTGRES_DSN"),
		CacheS3Bucket:    os.Getenv("CACHE_S3_BUCKET"),
		CacheS3Region:    sharedcfg.EnvOrDefault("CACHE_S3_REGION", "us-east-1"),
		CacheS3Endpoint:  os.Getenv("CACHE_S3_ENDPOINT"),
		CacheS3Prefix:    sharedcfg.EnvOrDefault("CACHE_S3_PREFIX", "motostock/"),
		CacheS3PathStyle: pathStyle,
		CacheS3AccessKey: os.Getenv("CACHE_S3_ACCESS_KEY_ID"),
		CacheS3SecretKey: os.Getenv("CACHE_S3_SECRET_ACCESS_KEY"),
		CacheRedisURL:    sharedcfg.EnvOrDefault("CACHE_REDIS_URL", "redis://localhost:6379/0"),
		CacheRedisPrefix: sharedcfg.EnvOrDefault("CACHE_REDIS_PREFIX", "motostock:"),

		InsightWebhookURL: sharedcfg.EnvOrDefault("INSIGHT_WEBHOOK_URL", DefaultInsightWebhookURL),
		RestockWebhookURL: sharedcfg.EnvOrDefault("RESTOCK_WEBHOOK_URL", DefaultRestockWebhookURL),

		KafkaEnabled:           kafkaEnabled,
		KafkaBrokers:           sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSnapshotTopic:     sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "inventory-snapshots"),
		KafkaNotificationTopic: sharedcfg.EnvOrDefault("KAFKA_NOTIFICATION_TOPIC", "restock-notifications"),

		MapboxToken:     mapboxToken,
		MapboxEnabled:   mapboxEnabled,
		MapboxTimeout:   mapboxTimeout,
		MapboxCacheSize: parseMapboxCacheSize(),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.CacheDriver {
	case CacheDriverMemory, CacheDriverSQLite:
	case CacheDriverPostgres:
		if c.CachePostgresDSN == "" {
			return errors.New("CACHE_POSTGRES_DSN is required when CACHE_DRIVER is postgres")
		}
	case CacheDriverS3:
		if c.CacheS3Bucket == "" {
			return errors.New("CACHE_S3_BUCKET is required when CACHE_DRIVER is s3")
		}
	case CacheDriverRedis:
		if c.CacheRedisURL == "" {
			return errors.New("CACHE_REDIS_URL is required when CACHE_DRIVER is redis")
		}
	default:
		return fmt.Errorf("invalid CACHE_DRIVER %q: must be memory, sqlite, postgres, s3, or redis", c.CacheDriver)
	}

	if c.DatasetFile == "" && c.DatasetURL == "" {
		return errors.New("DATASET_URL or DATASET_FILE is required")
	}

	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaSnapshotTopic == "" {
			return errors.New("KAFKA_SNAPSHOT_TOPIC is required")
		}
		if c.KafkaNotificationTopic == "" {
			return errors.New("KAFKA_NOTIFICATION_TOPIC is required")
		}
	}

	if c.MapboxEnabled && c.MapboxToken == "" {
		return errors.New("MAPBOX_ENABLED is true but MAPBOX_TOKEN is not set")
	}
	return nil
}

// parseDuration reads a duration variable. Zero is accepted only when allowZero is set.
func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

// parseList splits a comma-separated value, dropping blanks.
func parseList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseMapboxCacheSize() int {
	if s := os.Getenv("MAPBOX_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
