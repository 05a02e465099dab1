// Package testutil provides testing utilities for colsel.
//
// This package is intended for use in tests and benchmarks only.
// It provides seeded generators for column data and a reference selection
// that every index-backed strategy is checked against.
//
// # Column Generation
//
//	rng := testutil.NewRNG(seed)
//	vals := testutil.Uniform[int32](rng, 10000, -500, 500)
//	testutil.SprinkleNils(rng, vals, 0.05)
//
// # Reference Selection
//
//	want := testutil.NaiveSelect(vals, 0, nil, lo, &hi, true, false, false, false)
package testutil
