// Package cache persists the last good dataset so the dashboard can render
// immediately on the next start. All failures are logged and swallowed: the
// cache is an optimization, never a source of truth.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
)

// Persisted key layout.
const (
	KeyData        = "motostock_data"
	KeyLastUpdated = "motostock_last_updated"
)

// ErrNotFound is returned by a Store when a key has never been written.
var ErrNotFound = errors.New("cache key not found")

// Store is a string-keyed blob store. Drivers live in internal/adapter.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Cache reads and writes the cached dataset through a Store.
type Cache struct {
	store   Store
	logger  *slog.Logger
	metrics *observability.Metrics

	// mu keeps the two keys of one dataset together across overlapping saves.
	mu sync.Mutex
}

// New creates a dataset cache over store.
func New(store Store, logger *slog.Logger, metrics *observability.Metrics) *Cache {
	return &Cache{store: store, logger: logger, metrics: metrics}
}

// Load returns the cached dataset. It reports false when the data key is
// absent, unreadable, corrupt, or holds no records. A missing or malformed
// timestamp leaves LastUpdated zero but still returns the records.
func (c *Cache) Load(ctx context.Context) (*domain.CachedDataset, bool) {
	raw, err := c.store.Get(ctx, KeyData)
	if errors.Is(err, ErrNotFound) {
		c.observe("load", "miss")
		return nil, false
	}
	if err != nil {
		c.logger.Warn("cache read failed", "key", KeyData, "error", err)
		c.observe("load", "error")
		return nil, false
	}

	var records []domain.StockRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		c.logger.Warn("cached dataset is corrupt, ignoring", "key", KeyData, "error", err)
		c.observe("load", "error")
		return nil, false
	}
	if len(records) == 0 {
		c.observe("load", "miss")
		return nil, false
	}

	ds := &domain.CachedDataset{Records: records}
	if ts, err := c.store.Get(ctx, KeyLastUpdated); err == nil {
		if t, err := time.Parse(time.RFC3339Nano, string(ts)); err == nil {
			ds.LastUpdated = t
		} else {
			c.logger.Warn("cached timestamp is malformed", "key", KeyLastUpdated, "value", string(ts))
		}
	} else if !errors.Is(err, ErrNotFound) {
		c.logger.Warn("cache read failed", "key", KeyLastUpdated, "error", err)
	}

	c.observe("load", "hit")
	return ds, true
}

// Save writes the dataset and its timestamp. Failures are logged only.
func (c *Cache) Save(ctx context.Context, ds domain.CachedDataset) {
	if err := c.save(ctx, ds); err != nil {
		c.logger.Warn("cache write failed", "error", err, "records", len(ds.Records))
		c.observe("save", "error")
		return
	}
	c.logger.Debug("dataset cached", "records", len(ds.Records), "last_updated", ds.LastUpdated)
	c.observe("save", "success")
}

func (c *Cache) save(ctx context.Context, ds domain.CachedDataset) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := ds.Records
	if records == nil {
		records = []domain.StockRecord{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := c.store.Set(ctx, KeyData, data); err != nil {
		return fmt.Errorf("write %s: %w", KeyData, err)
	}
	ts := ds.LastUpdated.UTC().Format(time.RFC3339Nano)
	if err := c.store.Set(ctx, KeyLastUpdated, []byte(ts)); err != nil {
		return fmt.Errorf("write %s: %w", KeyLastUpdated, err)
	}
	return nil
}

func (c *Cache) observe(op, outcome string) {
	if c.metrics != nil {
		c.metrics.CacheOperations.WithLabelValues(op, outcome).Inc()
	}
}
