package imprints

import (
	"sync"

	"github.com/hupe1980/colsel/model"
	"github.com/hupe1980/colsel/scalar"
)

// Slot is the per-column imprint attachment. It is empty, holds an
// in-memory index, or records that a synced file exists on disk and can be
// loaded on demand. Its lock serialises build, load, unload and drop for
// the column.
type Slot[T scalar.Scalar] struct {
	mu     sync.RWMutex
	idx    *Index[T]
	onDisk bool
}

// Peek returns the in-memory index without loading or building anything.
func (s *Slot[T]) Peek() *Index[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.idx
}

// OnDisk reports whether a synced file is known to exist.
func (s *Slot[T]) OnDisk() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.onDisk
}

// Column is what the manager needs to know about a column.
type Column[T scalar.Scalar] interface {
	ID() model.ColumnID
	// Name is the physical file name stem.
	Name() string
	Values() []T
	Len() int
	Persistent() bool
	Dirty() bool
	ImprintSlot() *Slot[T]
}
