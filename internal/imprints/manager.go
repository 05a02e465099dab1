package imprints

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/hupe1980/colsel/internal/cache"
	ifs "github.com/hupe1980/colsel/internal/fs"
	"github.com/hupe1980/colsel/internal/resource"
	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// ErrClosed is returned by a manager that has been closed.
var ErrClosed = errors.New("imprints: manager closed")

// Observer receives lifecycle events. Implementations must be safe for
// concurrent use.
type Observer interface {
	// ImprintLookup reports whether Acquire found a fresh resident index.
	ImprintLookup(col model.ColumnID, hit bool)
	ImprintBuilt(col model.ColumnID, rows int, bytes int64, d time.Duration, err error)
	ImprintLoaded(col model.ColumnID, err error)
	ImprintPersisted(col model.ColumnID, bytes int64, d time.Duration, err error)
	ImprintEvicted(col model.ColumnID)
}

type noopObserver struct{}

func (noopObserver) ImprintLookup(model.ColumnID, bool)                            {}
func (noopObserver) ImprintBuilt(model.ColumnID, int, int64, time.Duration, error) {}
func (noopObserver) ImprintLoaded(model.ColumnID, error)                           {}
func (noopObserver) ImprintPersisted(model.ColumnID, int64, time.Duration, error)  {}
func (noopObserver) ImprintEvicted(model.ColumnID)                                 {}

// Options configures a Manager.
type Options struct {
	// Dir holds persisted imprint files. Empty disables persistence.
	Dir string
	// FS defaults to the local file system.
	FS ifs.FileSystem
	// Logger defaults to discarding output.
	Logger *slog.Logger
	// Resource accounts index memory, write-back workers and write-back IO.
	Resource *resource.Controller
	// CacheBytes bounds resident indexes. 0 is unbounded.
	CacheBytes int64
	// Observer receives lifecycle events.
	Observer Observer
	// Seed fixes the sampling seed. 0 seeds from the clock.
	Seed uint64
}

// Manager owns the imprint lifecycle of many columns: build on demand, load
// from and persist to disk, evict synced indexes under memory pressure, and
// destroy indexes whose column changed.
type Manager struct {
	dir    string
	fs     ifs.FileSystem
	logger *slog.Logger
	rc     *resource.Controller
	obs    Observer
	seed   uint64
	lru    *cache.LRU[model.ColumnID]

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewManager creates a Manager.
func NewManager(opts Options) *Manager {
	if opts.FS == nil {
		opts.FS = ifs.Default
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(time.Now().UnixNano())
	}
	return &Manager{
		dir:    opts.Dir,
		fs:     opts.FS,
		logger: opts.Logger,
		rc:     opts.Resource,
		obs:    opts.Observer,
		seed:   opts.Seed,
		lru:    cache.NewLRU[model.ColumnID](opts.CacheBytes, opts.Resource),
	}
}

// Path returns the imprint file of the named column, or "" when
// persistence is disabled.
func (m *Manager) Path(name string) string {
	if m.dir == "" {
		return ""
	}
	return filepath.Join(m.dir, name+FileExt)
}

// ResidentBytes returns the memory held by resident indexes.
func (m *Manager) ResidentBytes() int64 {
	return m.lru.Size()
}

// CacheStats returns the hit, miss and eviction counts of resident indexes.
func (m *Manager) CacheStats() cache.Stats {
	return m.lru.Stats()
}

// Wait blocks until all pending write-backs have finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close stops accepting write-backs and waits for pending ones.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}

// Acquire returns a fresh index for col, loading or building one if needed.
// A fresh index is one built for the column's current row count; a stale
// one is destroyed first. When the column is persistent and clean, a newly
// built index is written back in the background.
//
// An error means no index is available and the caller should scan.
func Acquire[T scalar.Scalar](ctx context.Context, m *Manager, col Column[T]) (*Index[T], error) {
	slot := col.ImprintSlot()
	rows := col.Len()

	slot.mu.RLock()
	if x := slot.idx; x != nil && x.Fresh(rows) {
		m.lookup(col.ID())
		slot.mu.RUnlock()
		return x, nil
	}
	slot.mu.RUnlock()

	slot.mu.Lock()
	x, built, err := acquireLocked(m, col, slot, rows)
	slot.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if built && m.dir != "" && col.Persistent() && !col.Dirty() {
		persist(m, col, slot, x)
	}
	return x, nil
}

func acquireLocked[T scalar.Scalar](m *Manager, col Column[T], slot *Slot[T], rows int) (*Index[T], bool, error) {
	if x := slot.idx; x != nil {
		if x.Fresh(rows) {
			m.lookup(col.ID())
			return x, false, nil
		}
		m.logger.Debug("imprints stale", "column", col.Name(), "built_rows", x.Rows(), "rows", rows)
		if err := dropLocked(m, col, slot); err != nil {
			m.logger.Warn("imprints remove failed", "column", col.Name(), "error", err)
		}
	}
	m.lookup(col.ID())

	path := m.Path(col.Name())
	if path != "" && !slot.onDisk && col.Persistent() && !col.Dirty() {
		if _, err := m.fs.Stat(path); err == nil {
			slot.onDisk = true
		}
	}

	if slot.onDisk {
		x, err := load(m, col, path, rows)
		m.obs.ImprintLoaded(col.ID(), err)
		if err == nil {
			slot.idx = x
			return x, false, nil
		}
		m.logger.Warn("imprints load failed, rebuilding", "column", col.Name(), "path", path, "error", err)
		slot.onDisk = false
		if rmErr := m.fs.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			m.logger.Warn("imprints remove failed", "path", path, "error", rmErr)
		}
	}

	x, err := build(m, col, rows)
	if err != nil {
		return nil, false, err
	}
	slot.idx = x
	return x, true, nil
}

// lookup counts a cache hit or miss for id. Callers hold the slot lock, so
// the entry is cached exactly when the slot holds an index.
func (m *Manager) lookup(id model.ColumnID) {
	m.obs.ImprintLookup(id, m.lru.Touch(id))
}

func load[T scalar.Scalar](m *Manager, col Column[T], path string, rows int) (*Index[T], error) {
	x, err := Load[T](path)
	if err != nil {
		return nil, err
	}
	if !x.Fresh(rows) {
		return nil, fmt.Errorf("%w: file has %d rows, column has %d", ErrStale, x.Rows(), rows)
	}
	if err := m.rc.AcquireMemory(x.MemBytes()); err != nil {
		return nil, fmt.Errorf("imprints: load %s: %w", col.Name(), err)
	}
	x.column = col.ID()
	x.synced.Store(true)
	m.lru.Add(col.ID(), x.MemBytes(), evictor(m, col, col.ImprintSlot(), x))
	return x, nil
}

func build[T scalar.Scalar](m *Manager, col Column[T], rows int) (*Index[T], error) {
	start := time.Now()
	vpp := ValuesPerPage[T]()
	pages := (rows + vpp - 1) / vpp
	reserve := int64(pages) * (8 + 4)
	if err := m.rc.AcquireMemory(reserve); err != nil {
		err = fmt.Errorf("imprints: build %s: %w", col.Name(), err)
		m.obs.ImprintBuilt(col.ID(), rows, 0, time.Since(start), err)
		return nil, err
	}

	values := col.Values()[:rows]
	rng := rand.New(rand.NewPCG(m.seed, uint64(col.ID())))
	x := Build(values, Sample(values, SampleSize, rng), col.ID())

	// Masks and dictionary entries never outnumber pages.
	m.rc.ReleaseMemory(reserve - x.MemBytes())
	m.lru.Add(col.ID(), x.MemBytes(), evictor(m, col, col.ImprintSlot(), x))

	d := time.Since(start)
	m.obs.ImprintBuilt(col.ID(), rows, x.MemBytes(), d, nil)
	m.logger.Debug("imprints built", "column", col.Name(), "rows", rows, "bits", x.Bits(),
		"masks", len(x.masks), "dict", len(x.dict), "duration", d)
	return x, nil
}

// evictor drops x from its slot if x is synced and the slot is idle.
func evictor[T scalar.Scalar](m *Manager, col Column[T], slot *Slot[T], x *Index[T]) cache.Evictor {
	id := col.ID()
	return func() bool {
		if !x.Synced() || !slot.mu.TryLock() {
			return false
		}
		defer slot.mu.Unlock()
		if slot.idx != x {
			return false
		}
		slot.idx = nil
		slot.onDisk = true
		m.obs.ImprintEvicted(id)
		return true
	}
}

// persist writes x to disk in the background.
func persist[T scalar.Scalar](m *Manager, col Column[T], slot *Slot[T], x *Index[T]) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.wg.Add(1)
	m.mu.Unlock()

	path := m.Path(col.Name())
	go func() {
		defer m.wg.Done()
		ctx := context.Background()
		if err := m.rc.AcquireBackground(ctx); err != nil {
			return
		}
		defer m.rc.ReleaseBackground()

		// Dropped or replaced while waiting for a worker.
		if slot.Peek() != x {
			return
		}

		start := time.Now()
		n, err := writeFile(ctx, m, path, x)
		m.obs.ImprintPersisted(col.ID(), n, time.Since(start), err)
		if err != nil {
			m.logger.Warn("imprints write-back failed", "column", col.Name(), "path", path, "error", err)
			_ = m.fs.Remove(path)
			return
		}

		slot.mu.Lock()
		switch {
		case slot.idx == x:
			x.synced.Store(true)
			slot.onDisk = true
		case !slot.onDisk:
			// Dropped during the write; the file must not outlive it.
			if rmErr := m.fs.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				m.logger.Warn("imprints remove failed", "path", path, "error", rmErr)
			}
		}
		slot.mu.Unlock()
		m.logger.Debug("imprints persisted", "column", col.Name(), "path", path, "bytes", n)
	}()
}

// writeFile writes the body with the sync flag clear, flushes it, and only
// then sets the flag. A crash in between leaves a file that fails to load.
func writeFile[T scalar.Scalar](ctx context.Context, m *Manager, path string, x *Index[T]) (int64, error) {
	if err := m.fs.MkdirAll(m.dir, 0o755); err != nil {
		return 0, err
	}
	f, err := m.fs.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}

	n, err := Encode(resource.NewRateLimitedWriter(ctx, f, m.rc), x, false)
	if err == nil {
		err = f.Sync()
	}
	if err == nil {
		_, err = f.WriteAt(x.Header(true).encode()[:wordSize], 0)
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func dropLocked[T scalar.Scalar](m *Manager, col Column[T], slot *Slot[T]) error {
	m.lru.Remove(col.ID())
	slot.idx = nil
	slot.onDisk = false
	path := m.Path(col.Name())
	if path == "" {
		return nil
	}
	if err := m.fs.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Drop destroys col's index in memory and on disk.
func Drop[T scalar.Scalar](m *Manager, col Column[T]) error {
	slot := col.ImprintSlot()
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return dropLocked(m, col, slot)
}

// Unload releases col's in-memory index if it is synced to disk, keeping
// the file for a later load. It reports whether an index was released.
func Unload[T scalar.Scalar](m *Manager, col Column[T]) bool {
	slot := col.ImprintSlot()
	slot.mu.Lock()
	defer slot.mu.Unlock()
	x := slot.idx
	if x == nil || !x.Synced() {
		return false
	}
	m.lru.Remove(col.ID())
	slot.idx = nil
	slot.onDisk = true
	m.obs.ImprintEvicted(col.ID())
	return true
}

// Discover marks col's slot as backed by a file if one exists. The file is
// validated on first use, not here.
func Discover[T scalar.Scalar](m *Manager, col Column[T]) bool {
	path := m.Path(col.Name())
	if path == "" || !col.Persistent() {
		return false
	}
	if _, err := m.fs.Stat(path); err != nil {
		return false
	}
	slot := col.ImprintSlot()
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.idx == nil {
		slot.onDisk = true
	}
	return true
}

// List returns the imprint files found in dir.
func List(fsys ifs.FileSystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == FileExt {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}
