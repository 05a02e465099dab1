package colsel

import (
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/colsel/column"
	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicMetricsCollector(t *testing.T) {
	m := &BasicMetricsCollector{}
	boom := errors.New("boom")

	m.RecordSelect("scan", 10, 100*time.Nanosecond, nil)
	m.RecordSelect("scan", 0, 300*time.Nanosecond, boom)
	m.RecordImprintLookup(true)
	m.RecordImprintLookup(true)
	m.RecordImprintLookup(false)
	m.RecordImprintBuild(1024, time.Millisecond, nil)
	m.RecordImprintBuild(0, time.Millisecond, boom)
	m.RecordImprintLoad(nil)
	m.RecordImprintLoad(boom)
	m.RecordImprintPersist(1024, time.Millisecond, nil)
	m.RecordImprintPersist(0, time.Millisecond, boom)
	m.RecordImprintEvict()

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats.SelectCount)
	assert.Equal(t, int64(1), stats.SelectErrors)
	assert.Equal(t, int64(10), stats.SelectRows)
	assert.Equal(t, int64(200), stats.SelectAvgNanos)
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(1), stats.CacheMisses)
	assert.Equal(t, int64(1), stats.ImprintBuilds)
	assert.Equal(t, int64(1), stats.ImprintBuildFails)
	assert.Equal(t, int64(1024), stats.ImprintBytes)
	assert.Equal(t, int64(1), stats.ImprintLoads)
	assert.Equal(t, int64(1), stats.ImprintLoadFails)
	assert.Equal(t, int64(1), stats.Persists)
	assert.Equal(t, int64(1), stats.PersistFails)
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestBasicMetricsCollector_Empty(t *testing.T) {
	assert.Zero(t, (&BasicMetricsCollector{}).GetStats().SelectAvgNanos)
}

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheusCollector(reg)
	require.NoError(t, err)

	e := newEngine(t, WithMetricsCollector(p))
	col := column.New([]int64{4, 8, 15, 16, 23, 42})
	res, err := Select(t.Context(), e, col, nil, Between[int64](10, 20))
	require.NoError(t, err)
	_, err = Select(t.Context(), e, col, nil, Query[int64]{})
	require.Error(t, err)

	assert.Equal(t, 1.0, promtest.ToFloat64(p.selects.WithLabelValues(string(res.Algo), "ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.selects.WithLabelValues("", "error")))
	assert.Equal(t, 2, promtest.CollectAndCount(p.selects))
	assert.Equal(t, 0.0, promtest.ToFloat64(p.evictions))

	p.RecordImprintLookup(false)
	p.RecordImprintLookup(true)
	p.RecordImprintLookup(true)
	p.RecordImprintBuild(2048, time.Millisecond, nil)
	p.RecordImprintPersist(2048, time.Millisecond, errors.New("disk full"))
	p.RecordImprintLoad(nil)
	p.RecordImprintEvict()
	assert.Equal(t, 1.0, promtest.ToFloat64(p.builds.WithLabelValues("ok")))
	assert.Equal(t, 2048.0, promtest.ToFloat64(p.imprintBytes))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.persists.WithLabelValues("error")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.evictions))
	assert.Equal(t, 2.0, promtest.ToFloat64(p.lookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, promtest.ToFloat64(p.lookups.WithLabelValues("miss")))
}

func TestPrometheusCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusCollector(reg)
	require.NoError(t, err)
	_, err = NewPrometheusCollector(reg)
	assert.Error(t, err)
}
