package testutil

import (
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed uint64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed uint64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand = rand.New(rand.NewPCG(r.seed, r.seed^0x9e3779b97f4a7c15))
}

// Seed returns the initial seed.
func (r *RNG) Seed() uint64 {
	return r.seed
}

// IntN returns a non-negative pseudo-random number in [0,n).
func (r *RNG) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.IntN(n)
}

// Float64s returns n values uniform in [lo, hi).
func (r *RNG) Float64s(n int, lo, hi float64) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]float64, n)
	span := hi - lo
	for i := range out {
		out[i] = lo + r.rand.Float64()*span
	}
	return out
}

// Int64s returns n values uniform in [lo, hi].
func (r *RNG) Int64s(n int, lo, hi int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	span := uint64(hi - lo)
	for i := range out {
		out[i] = lo + int64(r.rand.Uint64N(span+1))
	}
	return out
}

// SprinkleNaN replaces roughly rate*len(dst) elements with NaN and returns
// how many were replaced.
func (r *RNG) SprinkleNaN(dst []float64, rate float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for i := range dst {
		if r.rand.Float64() < rate {
			dst[i] = math.NaN()
			n++
		}
	}
	return n
}

// Seeder returns a seed function that always yields the same seed, for
// reproducible random fills.
func Seeder(seed uint64) func() (uint64, uint64) {
	return func() (uint64, uint64) { return seed, seed ^ 0x9e3779b97f4a7c15 }
}

// MinMax returns the smallest and largest non-NaN value of values by a
// plain linear scan. Both are NaN if there is none.
func MinMax(values []float64) (float64, float64) {
	lo, hi := math.NaN(), math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(lo) || v < lo {
			lo = v
		}
		if math.IsNaN(hi) || v > hi {
			hi = v
		}
	}
	return lo, hi
}

// WriteText writes content to name inside a per-test temporary directory
// and returns the full path.
func WriteText(tb testing.TB, name, content string) string {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		tb.Fatalf("write fixture: %v", err)
	}
	return path
}

// ReadText returns the content of path.
func ReadText(tb testing.TB, path string) string {
	tb.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture: %v", err)
	}
	return string(data)
}
