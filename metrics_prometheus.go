package colsel

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector is a MetricsCollector backed by Prometheus metrics.
type PrometheusCollector struct {
	selects        *prometheus.CounterVec
	selectDuration *prometheus.HistogramVec
	selectRows     prometheus.Histogram
	lookups        *prometheus.CounterVec
	builds         *prometheus.CounterVec
	buildDuration  prometheus.Histogram
	imprintBytes   prometheus.Counter
	loads          *prometheus.CounterVec
	persists       *prometheus.CounterVec
	evictions      prometheus.Counter
}

// NewPrometheusCollector creates the colsel metrics and registers them on
// reg. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p := &PrometheusCollector{
		selects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colsel_select_total",
			Help: "Total selections by strategy and result",
		}, []string{"algo", "result"}),
		selectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "colsel_select_duration_seconds",
			Help:    "Selection duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10), // 10µs to ~2.6s
		}, []string{"algo"}),
		selectRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "colsel_select_rows",
			Help:    "Rows returned per selection",
			Buckets: prometheus.ExponentialBuckets(1, 10, 8),
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colsel_imprint_cache_lookups_total",
			Help: "Total imprint index lookups by result (hit or miss)",
		}, []string{"result"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colsel_imprint_builds_total",
			Help: "Total imprint index builds by result",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "colsel_imprint_build_duration_seconds",
			Help:    "Imprint index build duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		imprintBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colsel_imprint_built_bytes_total",
			Help: "Total bytes of imprint indexes built",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colsel_imprint_loads_total",
			Help: "Total imprint index loads from disk by result",
		}, []string{"result"}),
		persists: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "colsel_imprint_persists_total",
			Help: "Total imprint index write-backs by result",
		}, []string{"result"}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "colsel_imprint_evictions_total",
			Help: "Total synced imprint indexes released from memory",
		}),
	}
	for _, c := range []prometheus.Collector{
		p.selects, p.selectDuration, p.selectRows, p.lookups, p.builds, p.buildDuration,
		p.imprintBytes, p.loads, p.persists, p.evictions,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordSelect implements MetricsCollector.
func (p *PrometheusCollector) RecordSelect(algo string, rows int, duration time.Duration, err error) {
	p.selects.WithLabelValues(algo, result(err)).Inc()
	if err != nil {
		return
	}
	p.selectDuration.WithLabelValues(algo).Observe(duration.Seconds())
	p.selectRows.Observe(float64(rows))
}

// RecordImprintLookup implements MetricsCollector.
func (p *PrometheusCollector) RecordImprintLookup(hit bool) {
	if hit {
		p.lookups.WithLabelValues("hit").Inc()
		return
	}
	p.lookups.WithLabelValues("miss").Inc()
}

// RecordImprintBuild implements MetricsCollector.
func (p *PrometheusCollector) RecordImprintBuild(bytes int64, duration time.Duration, err error) {
	p.builds.WithLabelValues(result(err)).Inc()
	if err != nil {
		return
	}
	p.buildDuration.Observe(duration.Seconds())
	p.imprintBytes.Add(float64(bytes))
}

// RecordImprintLoad implements MetricsCollector.
func (p *PrometheusCollector) RecordImprintLoad(err error) {
	p.loads.WithLabelValues(result(err)).Inc()
}

// RecordImprintPersist implements MetricsCollector.
func (p *PrometheusCollector) RecordImprintPersist(_ int64, _ time.Duration, err error) {
	p.persists.WithLabelValues(result(err)).Inc()
}

// RecordImprintEvict implements MetricsCollector.
func (p *PrometheusCollector) RecordImprintEvict() {
	p.evictions.Inc()
}
