package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/motostock-inventory-service/internal/adapter/filesource"
	httpadapter "github.com/couchcryptid/motostock-inventory-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/motostock-inventory-service/internal/adapter/kafka"
	"github.com/couchcryptid/motostock-inventory-service/internal/adapter/mapbox"
	pgstore "github.com/couchcryptid/motostock-inventory-service/internal/adapter/postgres"
	redisstore "github.com/couchcryptid/motostock-inventory-service/internal/adapter/redis"
	s3store "github.com/couchcryptid/motostock-inventory-service/internal/adapter/s3"
	"github.com/couchcryptid/motostock-inventory-service/internal/adapter/sheets"
	sqlitestore "github.com/couchcryptid/motostock-inventory-service/internal/adapter/sqlite"
	"github.com/couchcryptid/motostock-inventory-service/internal/adapter/webhook"
	"github.com/couchcryptid/motostock-inventory-service/internal/cache"
	"github.com/couchcryptid/motostock-inventory-service/internal/config"
	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/inventory"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
	"github.com/couchcryptid/motostock-inventory-service/internal/pipeline"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

// insightTimeout bounds one analysis round trip to the workflow.
const insightTimeout = 45 * time.Second

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := sharedobs.NewLogger(cfg.LogLevel, cfg.LogFormat)
	if err := run(cfg, logger); err != nil {
		logger.Error("service error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cacheStore, closeCache, err := openCacheStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Error("cache store close error", "error", err)
		}
	}()
	logger.Info("dataset cache ready", "driver", cfg.CacheDriver)

	settings := domain.DefaultSettings()
	settings.AutoRefresh = cfg.AutoRefresh
	settings.RefreshInterval = cfg.RefreshInterval
	store := inventory.NewStore(settings, cfg.RestockDelay, nil, logger, metrics)

	var (
		source     pipeline.Source
		fileSource *filesource.Source
	)
	if cfg.DatasetFile != "" {
		fileSource = filesource.New(cfg.DatasetFile, logger)
		source = fileSource
		logger.Info("dataset source: local file", "path", cfg.DatasetFile)
	} else {
		source = sheets.NewClient(cfg.DatasetURL, cfg.FetchTimeout, logger)
		logger.Info("dataset source: remote csv", "timeout", cfg.FetchTimeout)
	}

	scheduler := pipeline.New(source, cache.New(cacheStore, logger, metrics), store, nil, logger, metrics)

	// Kafka publishing (feature-flagged via KAFKA_ENABLED).
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		publisher = kafkaadapter.NewPublisher(cfg, logger, metrics)
		scheduler.SetPublisher(publisher)
		store.SetPublisher(publisher)
		logger.Info("kafka publishing enabled", "brokers", cfg.KafkaBrokers,
			"snapshot_topic", cfg.KafkaSnapshotTopic, "notification_topic", cfg.KafkaNotificationTopic)
	}

	deps := httpadapter.Deps{
		Store:             store,
		Scheduler:         scheduler,
		RestockWebhookURL: cfg.RestockWebhookURL,
		AllowedOrigins:    cfg.CORSAllowedOrigins,
	}

	// Geocoding for cities missing from the reference table (feature-flagged
	// via MAPBOX_ENABLED / MAPBOX_TOKEN).
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		geocoder := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		deps.Place = mapbox.PlaceFunc(geocoder, mapbox.DefaultCountry, logger)
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	if cfg.InsightWebhookURL != "" {
		deps.Insights = webhook.NewClient(cfg.InsightWebhookURL, insightTimeout, logger, metrics)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, deps, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		return scheduler.Run(gctx)
	})

	if fileSource != nil {
		g.Go(func() error {
			err := fileSource.Watch(gctx, func() {
				scheduler.RefreshNow(pipeline.TriggerWatch)
			})
			if err != nil {
				// The scheduler keeps working without the watcher.
				logger.Warn("dataset file watch stopped", "error", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	err = g.Wait()

	if publisher != nil {
		if cerr := publisher.Close(); cerr != nil {
			logger.Error("kafka publisher close error", "error", cerr)
		}
	}

	logger.Info("shutdown complete")
	return err
}

// openCacheStore builds the configured cache driver. The returned close
// function releases its resources.
func openCacheStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.CacheDriver {
	case config.CacheDriverMemory:
		return cache.NewMemoryStore(), noop, nil
	case config.CacheDriverSQLite:
		st, err := sqlitestore.NewStore(ctx, cfg.CacheSQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite cache: %w", err)
		}
		return st, st.Close, nil
	case config.CacheDriverPostgres:
		st, err := pgstore.NewStore(ctx, cfg.CachePostgresDSN, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres cache: %w", err)
		}
		return st, st.Close, nil
	case config.CacheDriverS3:
		st, err := s3store.NewStore(ctx, s3store.Config{
			Bucket:          cfg.CacheS3Bucket,
			Region:          cfg.CacheS3Region,
			Endpoint:        cfg.CacheS3Endpoint,
			Prefix:          cfg.CacheS3Prefix,
			PathStyle:       cfg.CacheS3PathStyle,
			AccessKeyID:     cfg.CacheS3AccessKey,
			SecretAccessKey: cfg.CacheS3SecretKey,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open s3 cache: %w", err)
		}
		return st, noop, nil
	case config.CacheDriverRedis:
		st, err := redisstore.NewStore(ctx, cfg.CacheRedisURL, cfg.CacheRedisPrefix)
		if err != nil {
			return nil, nil, fmt.Errorf("open redis cache: %w", err)
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.CacheDriver)
	}
}
