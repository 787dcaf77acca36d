package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBroker   = "localhost:9092"
	testMapboxToken = "pk.test-token"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, DefaultDatasetURL, cfg.DatasetURL)
	assert.Empty(t, cfg.DatasetFile)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.AutoRefresh)
	assert.Equal(t, 30*time.Second, cfg.RefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.RestockDelay)

	assert.Equal(t, CacheDriverSQLite, cfg.CacheDriver)
	assert.Equal(t, "motostock.db", cfg.CacheSQLitePath)
	assert.Equal(t, "motostock/", cfg.CacheS3Prefix)
	assert.False(t, cfg.CacheS3PathStyle)
	assert.Equal(t, "redis://localhost:6379/0", cfg.CacheRedisURL)
	assert.Equal(t, "motostock:", cfg.CacheRedisPrefix)
	assert.Empty(t, cfg.CORSAllowedOrigins)

	assert.Equal(t, DefaultInsightWebhookURL, cfg.InsightWebhookURL)
	assert.Equal(t, DefaultRestockWebhookURL, cfg.RestockWebhookURL)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "inventory-snapshots", cfg.KafkaSnapshotTopic)
	assert.Equal(t, "restock-notifications", cfg.KafkaNotificationTopic)

	assert.False(t, cfg.MapboxEnabled)
	assert.Empty(t, cfg.MapboxToken)
	assert.Equal(t, 5*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 1000, cfg.MapboxCacheSize)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("DATASET_URL", "http://sheets.local/export.csv")
	t.Setenv("DATASET_FILE", "/data/stock.csv")
	t.Setenv("FETCH_TIMEOUT", "0s")
	t.Setenv("AUTO_REFRESH", "false")
	t.Setenv("REFRESH_INTERVAL", "2m")
	t.Setenv("RESTOCK_DELAY", "0")
	t.Setenv("CACHE_DRIVER", "S3")
	t.Setenv("CACHE_S3_BUCKET", "motostock-cache")
	t.Setenv("CACHE_S3_ENDPOINT", "http://localhost:9000")
	t.Setenv("CACHE_S3_PATH_STYLE", "true")
	t.Setenv("KAFKA_ENABLED", "1")
	t.Setenv("KAFKA_BROKERS", "broker1:9092, broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "snapshots")
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_TIMEOUT", "10s")
	t.Setenv("MAPBOX_CACHE_SIZE", "500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://sheets.local/export.csv", cfg.DatasetURL)
	assert.Equal(t, "/data/stock.csv", cfg.DatasetFile)
	assert.Zero(t, cfg.FetchTimeout)
	assert.False(t, cfg.AutoRefresh)
	assert.Equal(t, 2*time.Minute, cfg.RefreshInterval)
	assert.Zero(t, cfg.RestockDelay)
	assert.Equal(t, CacheDriverS3, cfg.CacheDriver)
	assert.Equal(t, "motostock-cache", cfg.CacheS3Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.CacheS3Endpoint)
	assert.True(t, cfg.CacheS3PathStyle)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "snapshots", cfg.KafkaSnapshotTopic)
	assert.True(t, cfg.MapboxEnabled)
	assert.Equal(t, testMapboxToken, cfg.MapboxToken)
	assert.Equal(t, 10*time.Second, cfg.MapboxTimeout)
	assert.Equal(t, 500, cfg.MapboxCacheSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "not-a-duration"}, "SHUTDOWN_TIMEOUT"},
		{"negative shutdown timeout", map[string]string{"SHUTDOWN_TIMEOUT": "-1s"}, "SHUTDOWN_TIMEOUT"},
		{"fetch timeout", map[string]string{"FETCH_TIMEOUT": "soon"}, "FETCH_TIMEOUT"},
		{"negative fetch timeout", map[string]string{"FETCH_TIMEOUT": "-5s"}, "FETCH_TIMEOUT"},
		{"refresh interval below range", map[string]string{"REFRESH_INTERVAL": "9s"}, "REFRESH_INTERVAL"},
		{"refresh interval above range", map[string]string{"REFRESH_INTERVAL": "301s"}, "REFRESH_INTERVAL"},
		{"refresh interval zero", map[string]string{"REFRESH_INTERVAL": "0s"}, "REFRESH_INTERVAL"},
		{"restock delay", map[string]string{"RESTOCK_DELAY": "x"}, "RESTOCK_DELAY"},
		{"auto refresh", map[string]string{"AUTO_REFRESH": "maybe"}, "AUTO_REFRESH"},
		{"kafka enabled", map[string]string{"KAFKA_ENABLED": "yes please"}, "KAFKA_ENABLED"},
		{"cache driver", map[string]string{"CACHE_DRIVER": "memcached"}, "CACHE_DRIVER"},
		{"postgres without dsn", map[string]string{"CACHE_DRIVER": "postgres"}, "CACHE_POSTGRES_DSN"},
		{"s3 without bucket", map[string]string{"CACHE_DRIVER": "s3"}, "CACHE_S3_BUCKET"},
		{"kafka without brokers", map[string]string{"KAFKA_ENABLED": "true", "KAFKA_BROKERS": " , "}, "KAFKA_BROKERS"},
		{"mapbox timeout", map[string]string{"MAPBOX_TIMEOUT": "bad"}, "MAPBOX_TIMEOUT"},
		{"mapbox enabled without token", map[string]string{"MAPBOX_ENABLED": "true"}, "MAPBOX_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RefreshIntervalBoundaries(t *testing.T) {
	for _, v := range []string{"10s", "300s", "5m"} {
		t.Run(v, func(t *testing.T) {
			t.Setenv("REFRESH_INTERVAL", v)
			_, err := Load()
			require.NoError(t, err)
		})
	}
}

func TestLoad_PostgresWithDSN(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "postgres")
	t.Setenv("CACHE_POSTGRES_DSN", "postgres://motostock@localhost/motostock")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CacheDriverPostgres, cfg.CacheDriver)
}

func TestLoad_RedisDriver(t *testing.T) {
	t.Setenv("CACHE_DRIVER", "Redis")
	t.Setenv("CACHE_REDIS_URL", "redis://cache:6379/2")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, CacheDriverRedis, cfg.CacheDriver)
	assert.Equal(t, "redis://cache:6379/2", cfg.CacheRedisURL)
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://localhost:5173, ,https://dash.motostock.in ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://localhost:5173", "https://dash.motostock.in"}, cfg.CORSAllowedOrigins)
}

func TestLoad_MapboxTokenImpliesEnabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.MapboxEnabled)
}

func TestLoad_MapboxExplicitlyDisabled(t *testing.T) {
	t.Setenv("MAPBOX_TOKEN", testMapboxToken)
	t.Setenv("MAPBOX_ENABLED", "false")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.MapboxEnabled)
}
