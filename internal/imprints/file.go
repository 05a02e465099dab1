package imprints

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hupe1980/colsel/internal/mmap"
	"github.com/hupe1980/colsel/scalar"
)

// FileExt is appended to a column's physical name to form its imprint file.
const FileExt = ".timprints"

// HeaderSize is the size of the fixed header that starts every file.
const HeaderSize = 4 * wordSize

const (
	wordSize  = 8
	statsSize = 3 * MaxBins * wordSize

	syncBit   = 1 << 16
	kindShift = 24
)

var (
	// ErrCorrupt is returned for files whose layout does not add up.
	ErrCorrupt = errors.New("imprints: corrupt file")

	// ErrVersion is returned for files written by another format version.
	ErrVersion = errors.New("imprints: unsupported version")

	// ErrNotSynced is returned for files whose write-back never completed.
	ErrNotSynced = errors.New("imprints: file not synced")

	// ErrStale is returned when a file describes a different row count.
	ErrStale = errors.New("imprints: stale file")

	// ErrKind is returned when a file holds another value type.
	ErrKind = errors.New("imprints: value type mismatch")
)

// Header is the fixed 4-word prefix of an imprint file.
//
// Word 0 packs the bin count (bits 0-7), the version (bits 8-15), the sync
// flag (bit 16) and the value kind (bits 24-31). Words 1-3 hold the number
// of stored masks, the number of dictionary entries and the row count.
type Header struct {
	Bits    int
	Version int
	Synced  bool
	Kind    scalar.Kind
	Rows    int
	Masks   int
	Dict    int
}

func (h Header) word0() uint64 {
	w := uint64(h.Bits&0xFF) | uint64(h.Version&0xFF)<<8 | uint64(h.Kind)<<kindShift
	if h.Synced {
		w |= syncBit
	}
	return w
}

func (h Header) encode() []byte {
	b := make([]byte, HeaderSize)
	binary.NativeEndian.PutUint64(b[0:], h.word0())
	binary.NativeEndian.PutUint64(b[8:], uint64(h.Masks))
	binary.NativeEndian.PutUint64(b[16:], uint64(h.Dict))
	binary.NativeEndian.PutUint64(b[24:], uint64(h.Rows))
	return b
}

// ReadHeader decodes the header at the start of b.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes, need %d for the header", ErrCorrupt, len(b), HeaderSize)
	}
	w := binary.NativeEndian.Uint64(b)
	h := Header{
		Bits:    int(w & 0xFF),
		Version: int(w >> 8 & 0xFF),
		Synced:  w&syncBit != 0,
		Kind:    scalar.Kind(w >> kindShift & 0xFF),
		Masks:   int(binary.NativeEndian.Uint64(b[8:])),
		Dict:    int(binary.NativeEndian.Uint64(b[16:])),
		Rows:    int(binary.NativeEndian.Uint64(b[24:])),
	}
	if h.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrVersion, h.Version)
	}
	switch h.Bits {
	case 8, 16, 32, 64:
	default:
		return h, fmt.Errorf("%w: %d bins", ErrCorrupt, h.Bits)
	}
	if h.Kind.Width() == 0 || h.Rows < 0 || h.Masks < 0 || h.Dict < 0 {
		return h, fmt.Errorf("%w: bad header", ErrCorrupt)
	}
	return h, nil
}

// sizes returns the byte sizes of the header, bins, statistics, masks
// (padded to a word) and dictionary sections.
func (h Header) sizes() []int {
	masks := h.Masks * h.Bits / 8
	if r := masks % wordSize; r != 0 {
		masks += wordSize - r
	}
	return []int{HeaderSize, MaxBins * h.Kind.Width(), statsSize, masks, h.Dict * 4}
}

// FileSize returns the exact size of a file with this header.
func (h Header) FileSize() int64 {
	var n int64
	for _, s := range h.sizes() {
		n += int64(s)
	}
	return n
}

// Header returns the header describing x.
func (x *Index[T]) Header(synced bool) Header {
	return Header{
		Bits:    x.bits,
		Version: Version,
		Synced:  synced,
		Kind:    scalar.KindOf[T](),
		Rows:    x.rows,
		Masks:   len(x.masks),
		Dict:    len(x.dict),
	}
}

// Encode writes x in file format. The body is always complete; synced only
// controls the sync flag in the header.
func Encode[T scalar.Scalar](w io.Writer, x *Index[T], synced bool) (int64, error) {
	h := x.Header(synced)
	sizes := h.sizes()
	bw := bufio.NewWriter(w)

	if _, err := bw.Write(h.encode()); err != nil {
		return 0, err
	}

	width := h.Kind.Width()
	buf := make([]byte, wordSize)
	for _, v := range x.bins {
		scalar.Put(buf, v)
		if _, err := bw.Write(buf[:width]); err != nil {
			return 0, err
		}
	}

	for field := 0; field < 3; field++ {
		for k := range x.stats {
			st := x.stats[k]
			v := [3]uint64{st.MinPos, st.MaxPos, st.Count}[field]
			binary.NativeEndian.PutUint64(buf, v)
			if _, err := bw.Write(buf); err != nil {
				return 0, err
			}
		}
	}

	mw := h.Bits / 8
	written := 0
	for _, m := range x.masks {
		binary.NativeEndian.PutUint64(buf, m)
		if _, err := bw.Write(narrow(buf, mw)); err != nil {
			return 0, err
		}
		written += mw
	}
	for ; written < sizes[3]; written++ {
		if err := bw.WriteByte(0); err != nil {
			return 0, err
		}
	}

	for _, e := range x.dict {
		binary.NativeEndian.PutUint32(buf, uint32(e))
		if _, err := bw.Write(buf[:4]); err != nil {
			return 0, err
		}
	}

	if err := bw.Flush(); err != nil {
		return 0, err
	}
	return h.FileSize(), nil
}

// narrow returns the bytes of the low mw bytes of the native word in buf.
func narrow(buf []byte, mw int) []byte {
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		return buf[:mw]
	}
	return buf[wordSize-mw:]
}

func widen(b []byte, mw int) uint64 {
	var buf [wordSize]byte
	if binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		copy(buf[:mw], b)
	} else {
		copy(buf[wordSize-mw:], b)
	}
	return binary.NativeEndian.Uint64(buf[:])
}

// Decode parses a complete imprint file held in data.
func Decode[T scalar.Scalar](data []byte) (*Index[T], error) {
	h, err := checkHeader[T](data, int64(len(data)))
	if err != nil {
		return nil, err
	}
	sizes := h.sizes()
	sections := make([][]byte, len(sizes))
	off := 0
	for i, sz := range sizes {
		sections[i] = data[off : off+sz]
		off += sz
	}
	return decodeBody[T](h, sections)
}

// Load maps the imprint file at path and decodes it. The returned index
// owns its memory; the mapping is closed before Load returns.
func Load[T scalar.Scalar](path string) (*Index[T], error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	_ = m.Advise(mmap.AdviceSequential)

	h, err := checkHeader[T](m.Bytes(), int64(m.Size()))
	if err != nil {
		return nil, err
	}
	sections, err := m.Sections(h.sizes()...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	return decodeBody[T](h, sections)
}

func checkHeader[T scalar.Scalar](data []byte, size int64) (Header, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return h, err
	}
	if want := scalar.KindOf[T](); h.Kind != want {
		return h, fmt.Errorf("%w: file holds %s, want %s", ErrKind, h.Kind, want)
	}
	if !h.Synced {
		return h, ErrNotSynced
	}
	if size != h.FileSize() {
		return h, fmt.Errorf("%w: size %d, want %d", ErrCorrupt, size, h.FileSize())
	}
	return h, nil
}

func decodeBody[T scalar.Scalar](h Header, sections [][]byte) (*Index[T], error) {
	x := &Index[T]{bits: h.Bits, rows: h.Rows}
	width := h.Kind.Width()
	for k := range x.bins {
		x.bins[k] = scalar.Get[T](sections[1][k*width:])
	}

	stats := sections[2]
	for k := range x.stats {
		x.stats[k] = BinStat{
			MinPos: binary.NativeEndian.Uint64(stats[(0*MaxBins+k)*wordSize:]),
			MaxPos: binary.NativeEndian.Uint64(stats[(1*MaxBins+k)*wordSize:]),
			Count:  binary.NativeEndian.Uint64(stats[(2*MaxBins+k)*wordSize:]),
		}
		if x.stats[k].Count > 0 && (x.stats[k].MinPos >= uint64(h.Rows) || x.stats[k].MaxPos >= uint64(h.Rows)) {
			return nil, fmt.Errorf("%w: bin %d statistics out of range", ErrCorrupt, k)
		}
	}

	mw := h.Bits / 8
	x.masks = make([]uint64, h.Masks)
	for i := range x.masks {
		x.masks[i] = widen(sections[3][i*mw:i*mw+mw], mw)
	}

	x.dict = make([]Entry, h.Dict)
	pages, masks := 0, 0
	for i := range x.dict {
		e := Entry(binary.NativeEndian.Uint32(sections[4][i*4:]))
		x.dict[i] = e
		pages += e.Count()
		masks += e.Masks()
	}
	vpp := PageSize / width
	if want := (h.Rows + vpp - 1) / vpp; pages != want || masks != h.Masks {
		return nil, fmt.Errorf("%w: dictionary covers %d pages and %d masks, want %d and %d",
			ErrCorrupt, pages, masks, want, h.Masks)
	}
	return x, nil
}

// Format renders the index one line per page: the page number, an r for
// repeated runs, and x or . for each bin.
func (x *Index[T]) Format(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bits = %d, impcnt = %d, dictcnt = %d\n", x.bits, len(x.masks), len(x.dict))

	render := func(m uint64) string {
		s := make([]byte, x.bits)
		for j := range s {
			if m&(1<<j) != 0 {
				s[j] = 'x'
			} else {
				s[j] = '.'
			}
		}
		return string(s)
	}

	mi, page := 0, 1
	for _, e := range x.dict {
		if e.Repeat() {
			page += e.Count()
			fmt.Fprintf(&sb, "[ %d ]r %s\n", page, render(x.masks[mi]))
			mi++
			continue
		}
		for range e.Count() {
			fmt.Fprintf(&sb, "[ %d ]  %s\n", page, render(x.masks[mi]))
			page++
			mi++
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
