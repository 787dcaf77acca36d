package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RegisterOnFreshRegistry(t *testing.T) {
	m := NewMetricsForTesting()
	reg := prometheus.NewRegistry()

	require.NotPanics(t, func() {
		reg.MustRegister(m.Refreshes, m.CacheOperations, m.Mutations, m.GeocodeRequests)
	})

	m.Refreshes.WithLabelValues("tick", "success").Inc()
	m.Mutations.WithLabelValues("restock").Add(2)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Refreshes.WithLabelValues("tick", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.Mutations.WithLabelValues("restock")), 0)
}
