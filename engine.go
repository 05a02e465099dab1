package colsel

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/colsel/internal/imprints"
	"github.com/hupe1980/colsel/internal/resource"
	"github.com/hupe1980/colsel/internal/selection"
	"github.com/hupe1980/colsel/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hupe1980/colsel"

// Engine holds what selections over many columns share: the imprint
// manager with its directory and write-back workers, memory accounting,
// logging, metrics and tracing.
//
// An Engine is safe for concurrent use. Columns are owned by the caller and
// passed to each call.
type Engine struct {
	env      selection.Env
	imprints *imprints.Manager
	rc       *resource.Controller
	logger   *Logger
	metrics  MetricsCollector
	tracer   trace.Tracer
	closed   atomic.Bool
}

// New creates an Engine.
func New(optFns ...Option) (*Engine, error) {
	o := applyOptions(optFns)
	switch {
	case o.memoryLimit < 0:
		return nil, fmt.Errorf("%w: negative memory limit %d", ErrInvalidArgument, o.memoryLimit)
	case o.backgroundWorkers < 0:
		return nil, fmt.Errorf("%w: negative background workers %d", ErrInvalidArgument, o.backgroundWorkers)
	case o.ioLimit < 0:
		return nil, fmt.Errorf("%w: negative io limit %d", ErrInvalidArgument, o.ioLimit)
	case o.imprintCacheBytes < 0:
		return nil, fmt.Errorf("%w: negative imprint cache size %d", ErrInvalidArgument, o.imprintCacheBytes)
	case o.hashThreshold < 0 || o.sampleThreshold < 0:
		return nil, fmt.Errorf("%w: negative threshold", ErrInvalidArgument)
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:     o.memoryLimit,
		MaxBackgroundWorkers: o.backgroundWorkers,
		IOLimitBytesPerSec:   o.ioLimit,
	})
	tp := o.tracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	e := &Engine{
		rc:      rc,
		logger:  o.logger,
		metrics: o.metricsCollector,
		tracer:  tp.Tracer(tracerName),
	}
	e.imprints = imprints.NewManager(imprints.Options{
		Dir:        o.dir,
		FS:         o.fs,
		Logger:     o.logger.Logger,
		Resource:   rc,
		CacheBytes: o.imprintCacheBytes,
		Observer:   observer{logger: o.logger, metrics: o.metricsCollector},
		Seed:       o.seed,
	})
	e.env = selection.Env{
		Imprints:        e.imprints,
		Resource:        rc,
		Logger:          o.logger.Logger,
		HashThreshold:   o.hashThreshold,
		SampleThreshold: o.sampleThreshold,
	}
	return e, nil
}

// Close stops background write-back after waiting for pending ones. Calls
// after Close fail with ErrClosed. Close is idempotent.
func (e *Engine) Close() error {
	if e == nil || !e.closed.CompareAndSwap(false, true) {
		return nil
	}
	return e.imprints.Close()
}

// Wait blocks until pending imprint write-backs have finished.
func (e *Engine) Wait() {
	e.imprints.Wait()
}

// Logger returns the engine's logger.
func (e *Engine) Logger() *Logger {
	return e.logger
}

// MemoryUsage returns the bytes held by result buffers under construction
// and resident imprint indexes.
func (e *Engine) MemoryUsage() int64 {
	return e.rc.MemoryUsage()
}

// ImprintBytes returns the memory held by resident imprint indexes.
func (e *Engine) ImprintBytes() int64 {
	return e.imprints.ResidentBytes()
}

// ImprintCacheStats is a snapshot of the resident imprint indexes: lookups
// that found a fresh index, lookups that had to load or build one, and
// synced indexes evicted under memory pressure.
type ImprintCacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Bytes     int64
}

// ImprintCacheStats returns the engine's imprint cache counters.
func (e *Engine) ImprintCacheStats() ImprintCacheStats {
	return ImprintCacheStats(e.imprints.CacheStats())
}

// ImprintPath returns the file an imprint index of the named column is
// persisted to, or "" without a directory.
func (e *Engine) ImprintPath(name string) string {
	return e.imprints.Path(name)
}

func (e *Engine) check() error {
	if e.closed.Load() {
		return ErrClosed
	}
	return nil
}

// observer forwards imprint lifecycle events to the logger and metrics.
type observer struct {
	logger  *Logger
	metrics MetricsCollector
}

func (o observer) ImprintLookup(_ model.ColumnID, hit bool) {
	o.metrics.RecordImprintLookup(hit)
}

func (o observer) ImprintBuilt(col model.ColumnID, rows int, bytes int64, d time.Duration, err error) {
	o.logger.LogImprintBuild(context.Background(), col, rows, bytes, d, err)
	o.metrics.RecordImprintBuild(bytes, d, err)
}

func (o observer) ImprintLoaded(col model.ColumnID, err error) {
	o.logger.LogImprintLoad(context.Background(), col, err)
	o.metrics.RecordImprintLoad(err)
}

func (o observer) ImprintPersisted(col model.ColumnID, bytes int64, d time.Duration, err error) {
	o.logger.LogPersist(context.Background(), col, bytes, d, err)
	o.metrics.RecordImprintPersist(bytes, d, err)
}

func (o observer) ImprintEvicted(col model.ColumnID) {
	o.logger.LogEvict(context.Background(), col)
	o.metrics.RecordImprintEvict()
}
