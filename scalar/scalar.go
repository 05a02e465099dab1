package scalar

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Scalar is the set of fixed-width numeric value types a column can hold.
type Scalar interface {
	int8 | int16 | int32 | int64 | float32 | float64
}

// Kind names a scalar type at runtime.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindFloat32
	KindFloat64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

// String returns the kind's name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Width returns the storage width in bytes, or 0 for KindInvalid.
func (k Kind) Width() int {
	switch k {
	case KindInt8:
		return 1
	case KindInt16:
		return 2
	case KindInt32, KindFloat32:
		return 4
	case KindInt64, KindFloat64:
		return 8
	default:
		return 0
	}
}

// IsFloat reports whether the kind is a floating point kind.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// ParseKind parses a kind name as produced by Kind.String.
// The short aliases bte, sht, int, lng, flt and dbl are accepted too.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "int8", "bte":
		return KindInt8, nil
	case "int16", "sht":
		return KindInt16, nil
	case "int32", "int":
		return KindInt32, nil
	case "int64", "lng":
		return KindInt64, nil
	case "float32", "flt":
		return KindFloat32, nil
	case "float64", "dbl":
		return KindFloat64, nil
	}
	return KindInvalid, fmt.Errorf("scalar: unknown kind %q", s)
}

// KindOf returns the Kind of T.
func KindOf[T Scalar]() Kind {
	var z T
	switch any(z).(type) {
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case float32:
		return KindFloat32
	case float64:
		return KindFloat64
	}
	return KindInvalid
}

// Nil returns the distinguished nil value of T: the type minimum for
// integers and NaN for floats.
func Nil[T Scalar]() T {
	var z T
	switch p := any(&z).(type) {
	case *int8:
		*p = math.MinInt8
	case *int16:
		*p = math.MinInt16
	case *int32:
		*p = math.MinInt32
	case *int64:
		*p = math.MinInt64
	case *float32:
		*p = float32(math.NaN())
	case *float64:
		*p = math.NaN()
	}
	return z
}

// Min returns the smallest non-nil value of T.
func Min[T Scalar]() T {
	var z T
	switch p := any(&z).(type) {
	case *int8:
		*p = math.MinInt8 + 1
	case *int16:
		*p = math.MinInt16 + 1
	case *int32:
		*p = math.MinInt32 + 1
	case *int64:
		*p = math.MinInt64 + 1
	case *float32:
		*p = float32(math.Inf(-1))
	case *float64:
		*p = math.Inf(-1)
	}
	return z
}

// Max returns the largest value of T.
func Max[T Scalar]() T {
	var z T
	switch p := any(&z).(type) {
	case *int8:
		*p = math.MaxInt8
	case *int16:
		*p = math.MaxInt16
	case *int32:
		*p = math.MaxInt32
	case *int64:
		*p = math.MaxInt64
	case *float32:
		*p = float32(math.Inf(1))
	case *float64:
		*p = math.Inf(1)
	}
	return z
}

// IsNil reports whether v is the nil value of its type.
func IsNil[T Scalar](v T) bool {
	// v != v only holds for NaN.
	return v != v || v == Nil[T]()
}

// Next returns the smallest value strictly greater than v.
// The result is unspecified for Max.
func Next[T Scalar](v T) T {
	switch p := any(&v).(type) {
	case *float32:
		*p = math.Nextafter32(*p, float32(math.Inf(1)))
		return v
	case *float64:
		*p = math.Nextafter(*p, math.Inf(1))
		return v
	}
	return v + 1
}

// Prev returns the largest value strictly smaller than v.
// The result is unspecified for Min.
func Prev[T Scalar](v T) T {
	switch p := any(&v).(type) {
	case *float32:
		*p = math.Nextafter32(*p, float32(math.Inf(-1)))
		return v
	case *float64:
		*p = math.Nextafter(*p, math.Inf(-1))
		return v
	}
	return v - 1
}

// Compare orders values with nil before every non-nil value.
func Compare[T Scalar](a, b T) int {
	an, bn := IsNil(a), IsNil(b)
	switch {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	return cmp.Compare(a, b)
}

// Equal reports whether a and b are equal, treating two nils as equal.
func Equal[T Scalar](a, b T) bool {
	return Compare(a, b) == 0
}

// Put writes v into b in native byte order. b must hold at least
// KindOf[T]().Width() bytes.
func Put[T Scalar](b []byte, v T) {
	switch x := any(v).(type) {
	case int8:
		b[0] = byte(x)
	case int16:
		binary.NativeEndian.PutUint16(b, uint16(x))
	case int32:
		binary.NativeEndian.PutUint32(b, uint32(x))
	case int64:
		binary.NativeEndian.PutUint64(b, uint64(x))
	case float32:
		binary.NativeEndian.PutUint32(b, math.Float32bits(x))
	case float64:
		binary.NativeEndian.PutUint64(b, math.Float64bits(x))
	}
}

// Get reads a value of type T from b in native byte order.
func Get[T Scalar](b []byte) T {
	var z T
	switch p := any(&z).(type) {
	case *int8:
		*p = int8(b[0])
	case *int16:
		*p = int16(binary.NativeEndian.Uint16(b))
	case *int32:
		*p = int32(binary.NativeEndian.Uint32(b))
	case *int64:
		*p = int64(binary.NativeEndian.Uint64(b))
	case *float32:
		*p = math.Float32frombits(binary.NativeEndian.Uint32(b))
	case *float64:
		*p = math.Float64frombits(binary.NativeEndian.Uint64(b))
	}
	return z
}

// Format renders v for diagnostics, printing nil as "nil".
func Format[T Scalar](v T) string {
	if IsNil(v) {
		return "nil"
	}
	return fmt.Sprint(v)
}
