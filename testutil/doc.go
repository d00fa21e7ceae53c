// Package testutil provides testing utilities for vecbuf.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating reproducible input data, computing
// reference reductions, and writing text fixtures.
//
// # Random Data Generation
//
//	rng := testutil.NewRNG(seed)
//	values := rng.Float64s(1_000_000, -100, 100)
//	rng.SprinkleNaN(values, 0.01)
//
// # Reference Results
//
//	lo, hi := testutil.MinMax(values)
//
// # Fixtures
//
//	path := testutil.WriteText(t, "values.txt", "5 3 8 1 9 2")
package testutil
