package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

var (
	// ErrClosed is returned by a Mapping after Close.
	ErrClosed = errors.New("mmap: mapping is closed")

	// ErrOutOfBounds is returned when sections run past the end of the file.
	ErrOutOfBounds = errors.New("mmap: section out of bounds")
)

// Advice is an access hint passed to the kernel.
type Advice int

const (
	// AdviceNormal drops earlier hints.
	AdviceNormal Advice = iota
	// AdviceSequential announces one front-to-back pass, so the kernel
	// reads ahead aggressively and frees pages behind the reader.
	AdviceSequential
)

// Mapping is a read-only mapping of a whole file.
type Mapping struct {
	data   []byte
	unmap  func() error
	closed atomic.Bool
}

// Open maps the file at path. An empty file yields an empty Mapping.
func Open(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Mapping{}, nil
	}
	if int64(int(size)) != size {
		return nil, fmt.Errorf("mmap: %s: %d bytes exceed the address space", path, size)
	}

	data, unmap, err := mapFile(f, int(size))
	if err != nil {
		return nil, fmt.Errorf("mmap: %s: %w", path, err)
	}
	return &Mapping{data: data, unmap: unmap}, nil
}

// Close unmaps the file. It is idempotent.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) || m.unmap == nil {
		return nil
	}
	return m.unmap()
}

// Bytes returns the mapped file, or nil after Close.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the length of the mapped file.
func (m *Mapping) Size() int {
	return len(m.data)
}

// Advise passes an access hint for the whole mapping. Platforms without
// hints ignore it.
func (m *Mapping) Advise(a Advice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if len(m.data) == 0 {
		return nil
	}
	return advise(m.data, a)
}

// Sections cuts the front of the mapping into consecutive slices of the
// given sizes. Bytes past the last section are ignored. The slices are
// valid until Close.
func (m *Mapping) Sections(sizes ...int) ([][]byte, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}
	out := make([][]byte, len(sizes))
	off := 0
	for i, sz := range sizes {
		if sz < 0 || off+sz > len(m.data) {
			return nil, fmt.Errorf("%w: section %d needs [%d, %d) of %d bytes", ErrOutOfBounds, i, off, off+sz, len(m.data))
		}
		out[i] = m.data[off : off+sz : off+sz]
		off += sz
	}
	return out, nil
}
