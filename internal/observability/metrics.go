package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "motostock"

// Metrics holds the Prometheus counters, histograms, and gauges for the inventory service.
type Metrics struct {
	SchedulerRunning prometheus.Gauge

	// Refresh metrics.
	Refreshes         *prometheus.CounterVec // labels: trigger={startup,tick,manual,file}, outcome={success,error}
	RefreshDuration   prometheus.Histogram
	RefreshesInFlight prometheus.Gauge
	RecordsLoaded     prometheus.Gauge
	RowsDropped       prometheus.Counter

	// Dataset cache metrics.
	CacheOperations *prometheus.CounterVec // labels: op={load,save}, outcome={hit,miss,success,error}

	// Local mutation metrics.
	Mutations           *prometheus.CounterVec // labels: kind={restock,transfer}
	NotificationsUnread prometheus.Gauge

	// Outbound integrations.
	EventsPublished *prometheus.CounterVec // labels: topic, outcome={success,error}
	InsightRequests *prometheus.CounterVec // labels: outcome={success,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()

	prometheus.MustRegister(
		m.SchedulerRunning,
		m.Refreshes,
		m.RefreshDuration,
		m.RefreshesInFlight,
		m.RecordsLoaded,
		m.RowsDropped,
		m.CacheOperations,
		m.Mutations,
		m.NotificationsUnread,
		m.EventsPublished,
		m.InsightRequests,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SchedulerRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduler_running",
			Help:      "1 when the refresh scheduler is active, 0 when shut down.",
		}),
		Refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Dataset refresh attempts by trigger and outcome.",
		}, []string{"trigger", "outcome"}),
		RefreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of a fetch-parse-normalize refresh cycle.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		RefreshesInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "refreshes_in_flight",
			Help:      "Number of dataset fetches currently running.",
		}),
		RecordsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_loaded",
			Help:      "Stock records in the current dataset.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      "Source rows skipped for missing city or category.",
		}),
		CacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Dataset cache operations by op and outcome.",
		}, []string{"op", "outcome"}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mutations_total",
			Help:      "Simulated local mutations by kind.",
		}, []string{"kind"}),
		NotificationsUnread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "notifications_unread",
			Help:      "Unread restock notifications.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Kafka messages published by topic and outcome.",
		}, []string{"topic", "outcome"}),
		InsightRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insight_requests_total",
			Help:      "Insight webhook calls by outcome.",
		}, []string{"outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when map geocoding of unknown cities is enabled, 0 otherwise.",
		}),
	}
}
