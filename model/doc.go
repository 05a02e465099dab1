// Package model defines the identity types shared by every colsel package.
//
// # Identity Types
//
//   - OID: row identifier, the row position plus the column's sequence base
//   - ColumnID: process-unique column identifier, never reused
//
// OIDNil is the absent/unbounded marker used by candidate slicing.
package model
