package model

import (
	"fmt"
	"math"
)

// OID is a row identifier: the position of a row plus the sequence base of
// its column.
type OID uint64

// OIDNil marks an absent or unbounded row identifier.
const OIDNil OID = math.MaxUint64

// String returns a string representation of the OID.
func (o OID) String() string {
	if o == OIDNil {
		return "nil@0"
	}
	return fmt.Sprintf("%d@0", uint64(o))
}

// ColumnID identifies a column for the lifetime of the process.
// It is never reused.
type ColumnID uint64

// String returns a string representation of the ColumnID.
func (c ColumnID) String() string {
	return fmt.Sprintf("col(%d)", uint64(c))
}
