// Package pipeline runs the dataset refresh cycle: fetch the CSV source,
// normalize it, publish the result to the inventory store, persist it to the
// cache, and repeat on a ticker while auto-refresh is enabled.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/motostock-inventory-service/internal/domain"
	"github.com/couchcryptid/motostock-inventory-service/internal/inventory"
	"github.com/couchcryptid/motostock-inventory-service/internal/observability"
)

// ErrInvalidInterval is returned when a refresh interval is outside the allowed range.
var ErrInvalidInterval = domain.ErrInvalidInterval

// Refresh triggers, used as a metric label.
const (
	TriggerStartup   = "startup"
	TriggerScheduled = "scheduled"
	TriggerManual    = "manual"
	TriggerWatch     = "watch"
)

// State is the scheduler's refresh state.
type State string

const (
	StateIdle       State = "idle"
	StateRefreshing State = "refreshing"
)

// Source fetches the raw dataset rows.
type Source interface {
	Fetch(ctx context.Context) ([]domain.RawRow, error)
}

// DatasetCache persists the last good dataset.
type DatasetCache interface {
	Load(ctx context.Context) (*domain.CachedDataset, bool)
	Save(ctx context.Context, ds domain.CachedDataset)
}

// SnapshotPublisher forwards each refreshed dataset to an external sink.
type SnapshotPublisher interface {
	PublishSnapshot(ctx context.Context, ds domain.CachedDataset) error
}

// Scheduler owns the refresh lifecycle.
type Scheduler struct {
	source    Source
	cache     DatasetCache
	store     *inventory.Store
	publisher SnapshotPublisher
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics

	reconfigure chan struct{}
	inFlight    atomic.Int32
	wg          sync.WaitGroup

	mu      sync.Mutex
	baseCtx context.Context
}

// New creates a Scheduler. Auto-refresh and the interval are read from the
// store's settings. Pass a nil clock to use real time.
func New(source Source, cache DatasetCache, store *inventory.Store, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{
		source:      source,
		cache:       cache,
		store:       store,
		clock:       clock,
		logger:      logger,
		metrics:     metrics,
		reconfigure: make(chan struct{}, 1),
		baseCtx:     context.Background(),
	}
}

// SetPublisher installs an optional snapshot sink. Call before Run.
func (s *Scheduler) SetPublisher(p SnapshotPublisher) {
	s.publisher = p
}

// CheckReadiness returns nil once a dataset is available, from the cache or
// a completed refresh.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.store.HasData() {
		return errors.New("no inventory data loaded yet")
	}
	return nil
}

// State reports Refreshing while at least one fetch is in flight.
func (s *Scheduler) State() State {
	if s.inFlight.Load() > 0 {
		return StateRefreshing
	}
	return StateIdle
}

// Run performs the initial load and then refreshes on the configured interval
// until ctx is cancelled. Fetches already in flight at shutdown are left to
// finish on their own.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.baseCtx = context.WithoutCancel(ctx)
	s.mu.Unlock()

	s.start(ctx)

	s.logger.Info("scheduler started")
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)

	var ticker clockwork.Ticker
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stopTicker()

	var (
		tick   <-chan time.Time
		active domain.Settings
		armed  bool
	)
	for {
		// Settings are read after draining, so a queued signal is already covered.
		select {
		case <-s.reconfigure:
		default:
		}
		settings := s.store.Settings()
		if !armed || settings.AutoRefresh != active.AutoRefresh || settings.RefreshInterval != active.RefreshInterval {
			stopTicker()
			tick = nil
			if settings.AutoRefresh {
				ticker = s.clock.NewTicker(settings.RefreshInterval)
				tick = ticker.Chan()
				s.logger.Debug("auto-refresh armed", "interval", settings.RefreshInterval)
			} else {
				s.logger.Debug("auto-refresh disabled")
			}
			active, armed = settings, true
		}

		if !s.waitTicks(ctx, tick) {
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// waitTicks issues a background refresh per tick. It returns true when the
// settings must be re-read and false when ctx is done.
func (s *Scheduler) waitTicks(ctx context.Context, tick <-chan time.Time) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-s.reconfigure:
			return true
		case <-tick:
			s.refreshAsync(TriggerScheduled)
		}
	}
}

// start paints cached data immediately when present and refreshes in the
// background; otherwise it runs a foreground refresh with the loading flag set.
func (s *Scheduler) start(ctx context.Context) {
	if ds, ok := s.cache.Load(ctx); ok {
		s.store.SetDataset(*ds)
		s.logger.Info("loaded cached dataset", "records", len(ds.Records), "last_updated", ds.LastUpdated)
		s.refreshAsync(TriggerStartup)
		return
	}

	s.store.SetLoading(true)
	defer s.store.SetLoading(false)
	s.refresh(s.detached(), TriggerStartup)
}

// RefreshNow triggers a background refresh and returns immediately.
func (s *Scheduler) RefreshNow(trigger string) {
	s.refreshAsync(trigger)
}

// SetAutoRefresh enables or disables the periodic refresh. The interval must
// be within [MinRefreshInterval, MaxRefreshInterval]. In-flight fetches are
// not aborted.
func (s *Scheduler) SetAutoRefresh(enabled bool, interval time.Duration) error {
	settings := s.store.Settings()
	settings.AutoRefresh = enabled
	settings.RefreshInterval = interval
	return s.ApplySettings(settings)
}

// ApplySettings stores new preferences and rebuilds the refresh schedule.
func (s *Scheduler) ApplySettings(settings domain.Settings) error {
	if err := s.store.UpdateSettings(settings); err != nil {
		return err
	}
	select {
	case s.reconfigure <- struct{}{}:
	default:
	}
	s.logger.Info("refresh settings updated", "auto_refresh", settings.AutoRefresh, "interval", settings.RefreshInterval)
	return nil
}

// Wait blocks until every refresh started so far has finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) detached() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.baseCtx
}

func (s *Scheduler) refreshAsync(trigger string) {
	ctx := s.detached()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.refresh(ctx, trigger)
	}()
}

// refresh runs one fetch-normalize-publish cycle. Failures leave the current
// dataset untouched.
func (s *Scheduler) refresh(ctx context.Context, trigger string) {
	start := s.clock.Now()
	s.inFlight.Add(1)
	s.metrics.RefreshesInFlight.Inc()
	defer func() {
		s.inFlight.Add(-1)
		s.metrics.RefreshesInFlight.Dec()
		s.metrics.RefreshDuration.Observe(s.clock.Since(start).Seconds())
	}()

	rows, err := s.source.Fetch(ctx)
	if err != nil {
		s.logger.Error("refresh failed, keeping current data", "trigger", trigger, "error", err)
		s.metrics.Refreshes.WithLabelValues(trigger, "error").Inc()
		return
	}

	records, dropped := normalize(rows)
	if dropped > 0 {
		s.logger.Debug("dropped rows without city or category", "count", dropped)
		s.metrics.RowsDropped.Add(float64(dropped))
	}

	ds := domain.NewCachedDataset(records)
	s.store.SetDataset(ds)
	s.cache.Save(ctx, ds)
	s.metrics.Refreshes.WithLabelValues(trigger, "success").Inc()
	s.logger.Info("dataset refreshed", "trigger", trigger, "records", len(records))

	if s.publisher != nil {
		if err := s.publisher.PublishSnapshot(ctx, ds); err != nil {
			s.logger.Warn("publish snapshot failed", "error", err)
		}
	}
}
