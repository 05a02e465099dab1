package colsel

import (
	"log/slog"

	ifs "github.com/hupe1980/colsel/internal/fs"
	"go.opentelemetry.io/otel/trace"
)

type options struct {
	dir               string
	metricsCollector  MetricsCollector
	logger            *Logger
	tracerProvider    trace.TracerProvider
	memoryLimit       int64
	backgroundWorkers int64
	ioLimit           int64
	imprintCacheBytes int64
	hashThreshold     int32
	sampleThreshold   int
	seed              uint64
	fs                ifs.FileSystem
}

// Option configures an Engine.
type Option func(*options)

// WithDir sets the directory holding persisted imprint files. Without it,
// imprint indexes live in memory only.
func WithDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &colsel.BasicMetricsCollector{}
//	e, _ := colsel.New(colsel.WithMetricsCollector(metrics))
//	// ... select ...
//	stats := metrics.GetStats()
//	fmt.Printf("Selects: %d, Avg latency: %dns\n", stats.SelectCount, stats.SelectAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := colsel.NewJSONLogger(slog.LevelInfo)
//	e, _ := colsel.New(colsel.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithTracerProvider sets the provider of the tracer that wraps every
// selection in a span. The global provider is used by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tracerProvider = tp
	}
}

// WithMemoryLimit caps the memory held by result buffers and resident
// imprint indexes. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithBackgroundWorkers sets how many imprint write-backs may run at once.
func WithBackgroundWorkers(n int64) Option {
	return func(o *options) {
		o.backgroundWorkers = n
	}
}

// WithIOLimit throttles imprint write-back to the given bytes per second.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithImprintCacheBytes bounds the memory of resident imprint indexes.
// Synced indexes beyond the budget are released, least recently used
// first, and reloaded from disk on demand. 0 means unbounded.
func WithImprintCacheBytes(n int64) Option {
	return func(o *options) {
		o.imprintCacheBytes = n
	}
}

// WithHashThreshold sets how many equality selections a transient column
// serves by scanning before a hash index is built for it.
func WithHashThreshold(n int32) Option {
	return func(o *options) {
		o.hashThreshold = n
	}
}

// WithSampleThreshold sets the candidate count above which result sizes
// are estimated by sampling.
func WithSampleThreshold(n int) Option {
	return func(o *options) {
		o.sampleThreshold = n
	}
}

// WithSeed fixes the seed of imprint value sampling, which makes bin
// borders reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// withFileSystem replaces the file system under the imprint directory.
func withFileSystem(fsys ifs.FileSystem) Option {
	return func(o *options) {
		o.fs = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
