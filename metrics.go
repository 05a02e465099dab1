package colsel

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems;
// PrometheusCollector is a ready-made one.
type MetricsCollector interface {
	// RecordSelect is called after each selection.
	// algo names the strategy used, rows is the result size, duration is
	// the time taken, err is nil if successful.
	RecordSelect(algo string, rows int, duration time.Duration, err error)

	// RecordImprintLookup is called when a selection asks for an imprint
	// index. hit is true when a fresh index was resident.
	RecordImprintLookup(hit bool)

	// RecordImprintBuild is called after an imprint index was built.
	// bytes is its in-memory size.
	RecordImprintBuild(bytes int64, duration time.Duration, err error)

	// RecordImprintLoad is called after a persisted imprint index was
	// loaded, or failed to load.
	RecordImprintLoad(err error)

	// RecordImprintPersist is called after a background write-back.
	RecordImprintPersist(bytes int64, duration time.Duration, err error)

	// RecordImprintEvict is called when a synced index leaves memory.
	RecordImprintEvict()
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSelect(string, int, time.Duration, error)   {}
func (NoopMetricsCollector) RecordImprintLookup(bool)                         {}
func (NoopMetricsCollector) RecordImprintBuild(int64, time.Duration, error)   {}
func (NoopMetricsCollector) RecordImprintLoad(error)                          {}
func (NoopMetricsCollector) RecordImprintPersist(int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordImprintEvict()                              {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SelectCount       atomic.Int64
	SelectErrors      atomic.Int64
	SelectRows        atomic.Int64
	SelectTotalNanos  atomic.Int64
	CacheHits         atomic.Int64
	CacheMisses       atomic.Int64
	ImprintBuilds     atomic.Int64
	ImprintBuildFails atomic.Int64
	ImprintBytes      atomic.Int64
	ImprintLoads      atomic.Int64
	ImprintLoadFails  atomic.Int64
	Persists          atomic.Int64
	PersistFails      atomic.Int64
	Evictions         atomic.Int64
}

// RecordSelect implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSelect(algo string, rows int, duration time.Duration, err error) {
	b.SelectCount.Add(1)
	b.SelectTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SelectErrors.Add(1)
		return
	}
	b.SelectRows.Add(int64(rows))
}

// RecordImprintLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImprintLookup(hit bool) {
	if hit {
		b.CacheHits.Add(1)
		return
	}
	b.CacheMisses.Add(1)
}

// RecordImprintBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImprintBuild(bytes int64, duration time.Duration, err error) {
	if err != nil {
		b.ImprintBuildFails.Add(1)
		return
	}
	b.ImprintBuilds.Add(1)
	b.ImprintBytes.Add(bytes)
}

// RecordImprintLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImprintLoad(err error) {
	if err != nil {
		b.ImprintLoadFails.Add(1)
		return
	}
	b.ImprintLoads.Add(1)
}

// RecordImprintPersist implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImprintPersist(bytes int64, duration time.Duration, err error) {
	if err != nil {
		b.PersistFails.Add(1)
		return
	}
	b.Persists.Add(1)
}

// RecordImprintEvict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordImprintEvict() {
	b.Evictions.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SelectCount:       b.SelectCount.Load(),
		SelectErrors:      b.SelectErrors.Load(),
		SelectRows:        b.SelectRows.Load(),
		SelectAvgNanos:    b.getAvgSelectNanos(),
		CacheHits:         b.CacheHits.Load(),
		CacheMisses:       b.CacheMisses.Load(),
		ImprintBuilds:     b.ImprintBuilds.Load(),
		ImprintBuildFails: b.ImprintBuildFails.Load(),
		ImprintBytes:      b.ImprintBytes.Load(),
		ImprintLoads:      b.ImprintLoads.Load(),
		ImprintLoadFails:  b.ImprintLoadFails.Load(),
		Persists:          b.Persists.Load(),
		PersistFails:      b.PersistFails.Load(),
		Evictions:         b.Evictions.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSelectNanos() int64 {
	count := b.SelectCount.Load()
	if count == 0 {
		return 0
	}
	return b.SelectTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SelectCount       int64
	SelectErrors      int64
	SelectRows        int64
	SelectAvgNanos    int64
	CacheHits         int64
	CacheMisses       int64
	ImprintBuilds     int64
	ImprintBuildFails int64
	ImprintBytes      int64
	ImprintLoads      int64
	ImprintLoadFails  int64
	Persists          int64
	PersistFails      int64
	Evictions         int64
}
