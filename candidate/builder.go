package candidate

import (
	"fmt"
	"slices"

	"github.com/hupe1980/colsel/internal/resource"
	"github.com/hupe1980/colsel/model"
)

const oidBytes = 8

// Builder accumulates a result set in ascending order. Its buffer is
// reserved against a resource controller, so a refused reservation surfaces
// as ErrOutOfMemory instead of an unbounded allocation.
type Builder struct {
	ids []model.OID
	max int
	res *resource.Reservation
}

// NewBuilder returns a builder sized for estimate members that will never
// hold more than maximum. rc may be nil.
func NewBuilder(estimate, maximum int, rc *resource.Controller) (*Builder, error) {
	maximum = max(maximum, 0)
	estimate = min(max(estimate, 0), maximum)
	res, err := rc.Reserve(int64(estimate) * oidBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %d oids: %w", ErrOutOfMemory, estimate, err)
	}
	return &Builder{
		ids: make([]model.OID, 0, estimate),
		max: maximum,
		res: res,
	}, nil
}

// Len returns the number of members appended so far.
func (b *Builder) Len() int {
	return len(b.ids)
}

// Append adds o to the result.
func (b *Builder) Append(o model.OID) error {
	return b.AppendAt(o, 0)
}

// AppendAt adds o after consumed of the maximum candidates have been
// inspected. When the buffer is full, the final size is extrapolated from
// the hit rate so far.
func (b *Builder) AppendAt(o model.OID, consumed int) error {
	if len(b.ids) == cap(b.ids) {
		if err := b.grow(consumed); err != nil {
			return err
		}
	}
	b.ids = append(b.ids, o)
	return nil
}

func (b *Builder) grow(consumed int) error {
	n := len(b.ids)
	want := 2*n + 1024
	if consumed > 0 && consumed < b.max {
		want = n + int(float64(n)/float64(consumed)*float64(b.max-consumed)*1.1) + 1024
	}
	want = max(min(want, b.max), n+1)

	if err := b.res.Grow(int64(want-cap(b.ids)) * oidBytes); err != nil {
		return fmt.Errorf("%w: grow to %d oids: %w", ErrOutOfMemory, want, err)
	}
	ids := make([]model.OID, n, want)
	copy(ids, b.ids)
	b.ids = ids
	return nil
}

// Reverse reverses the members appended so far. Hash chains produce
// positions newest first, so hash lookups reverse before Finish.
func (b *Builder) Reverse() {
	slices.Reverse(b.ids)
}

// Sort orders the members appended so far.
func (b *Builder) Sort() {
	slices.Sort(b.ids)
}

// Finish returns the result set and releases the reservation. A contiguous
// result is returned as a dense set. The builder must not be used afterwards.
func (b *Builder) Finish() Set {
	b.res.Release()
	ids := b.ids
	b.ids = nil
	return virtualize(ids)
}

// Release abandons the builder and gives its reservation back.
func (b *Builder) Release() {
	b.res.Release()
	b.ids = nil
}
