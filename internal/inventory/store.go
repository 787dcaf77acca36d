// Package inventory owns the application state: the current dataset, the
// loading flag, notifications, and settings. Restock and transfer simulate
// stock changes locally; nothing is written back to the source sheet.
package inventory

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
)

// SafeStockLevel is the stock a simulated restock sets.
const SafeStockLevel = 50

var (
	// ErrRecordNotFound is returned when a record id or city/item pair has no match.
	ErrRecordNotFound = errors.New("record not found")
	// ErrNotificationNotFound is returned for an unknown notification id.
	ErrNotificationNotFound = errors.New("notification not found")
)

// NotificationPublisher forwards restock notifications to an external sink.
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, n domain.Notification) error
}

// Snapshot is a consistent, copied view of the store.
type Snapshot struct {
	Records     []domain.StockRecord
	LastUpdated time.Time
	Loading     bool
	HasData     bool
}

// Store is the single owner of mutable application state. All access goes
// through its methods; readers receive copies.
type Store struct {
	mu            sync.RWMutex
	records       []domain.StockRecord
	hasData       bool
	loading       bool
	lastUpdated   time.Time
	notifications []domain.Notification
	settings      domain.Settings

	restockDelay time.Duration
	clock        clockwork.Clock
	publisher    NotificationPublisher
	newID        func() string
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewStore creates an empty store. Pass a nil clock to use real time.
func NewStore(settings domain.Settings, restockDelay time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Store{
		settings:     settings,
		restockDelay: restockDelay,
		clock:        clock,
		newID:        uuid.NewString,
		logger:       logger,
		metrics:      metrics,
	}
}

// SetPublisher installs an optional notification sink.
func (s *Store) SetPublisher(p NotificationPublisher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
}

// SetDataset replaces the whole dataset. Local mutations made since the last
// refresh are discarded.
func (s *Store) SetDataset(ds domain.CachedDataset) {
	records := domain.CloneRecords(ds.Records)
	if records == nil {
		records = []domain.StockRecord{}
	}

	s.mu.Lock()
	s.records = records
	s.lastUpdated = ds.LastUpdated
	s.hasData = true
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordsLoaded.Set(float64(len(records)))
	}
}

// SetLoading sets the foreground loading flag.
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Loading reports whether the initial foreground load is in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// HasData reports whether any dataset has been published.
func (s *Store) HasData() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasData
}

// Snapshot returns a copy of the dataset and its status.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Records:     domain.CloneRecords(s.records),
		LastUpdated: s.lastUpdated,
		Loading:     s.loading,
		HasData:     s.hasData,
	}
}

// Records returns a copy of the current records.
func (s *Store) Records() []domain.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.CloneRecords(s.records)
}

// Record returns the record with the given id.
func (s *Store) Record(id int) (domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.ID == id {
			return domain.CloneRecords([]domain.StockRecord{r})[0], nil
		}
	}
	return domain.StockRecord{}, ErrRecordNotFound
}

// FindRecord returns the first record for a city and item.
func (s *Store) FindRecord(city, item string) (domain.StockRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.records {
		if r.City == city && r.Item == item {
			return domain.CloneRecords([]domain.StockRecord{r})[0], nil
		}
	}
	return domain.StockRecord{}, ErrRecordNotFound
}

// Settings returns the current preferences.
func (s *Store) Settings() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings validates and stores new preferences.
func (s *Store) UpdateSettings(settings domain.Settings) error {
	if err := domain.ValidateInterval(settings.RefreshInterval); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return nil
}
