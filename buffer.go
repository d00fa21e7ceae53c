package vecbuf

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math"
	randv2 "math/rand/v2"
	"sync"
	"time"
	"unsafe"
)

// State is the initialization state of a Buffer.
type State uint8

const (
	// StateUninitialized is the state of a new buffer. Content reads fail
	// with ErrUninitialized.
	StateUninitialized State = iota
	// StateReady is entered by the first successful fill or import and is
	// never left.
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Result is the outcome of a reduction.
type Result[T Number] struct {
	Value T
	// Elapsed is the wall-clock duration of the scan.
	Elapsed time.Duration
	// Workers is the number of partitions the scan used.
	Workers int
}

// Seeder returns a 128-bit seed for one FillRandom call.
type Seeder func() (uint64, uint64)

// CryptoSeeder draws seeds from crypto/rand.
func CryptoSeeder() (uint64, uint64) {
	var b [16]byte
	_, _ = rand.Read(b[:]) // never fails since Go 1.24
	return binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:])
}

// Buffer is a fixed-length sequence of numbers.
//
// The length is set by New and never changes. Fills and imports take the
// write lock and replace content in one step, so a concurrent reader sees
// either the old or the new content. Reductions and exports take the read
// lock for their whole duration. All methods are safe for concurrent use.
type Buffer[T Number] struct {
	mu     sync.RWMutex
	values []T
	state  State

	opts     options
	logger   *Logger
	reserved int64
	once     sync.Once
}

// New creates a buffer of size zero values in StateUninitialized.
//
// When a resource controller is configured the buffer's memory is
// reserved up front; ErrMemoryLimit is returned if that fails.
func New[T Number](size int, optFns ...Option) (*Buffer[T], error) {
	if size < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, size)
	}

	o := applyOptions(optFns)

	var zero T
	reserved := int64(size) * int64(unsafe.Sizeof(zero))
	if !o.controller.TryAcquireMemory(reserved) {
		return nil, fmt.Errorf("%w: %d bytes requested, %d in use", ErrMemoryLimit, reserved, o.controller.MemoryUsage())
	}

	return &Buffer[T]{
		values:   make([]T, size),
		opts:     o,
		logger:   o.logger.WithSize(size),
		reserved: reserved,
	}, nil
}

// Close releases the memory reserved with the resource controller.
// It is idempotent. The buffer must not be used after Close.
func (b *Buffer[T]) Close() error {
	b.once.Do(func() {
		b.opts.controller.ReleaseMemory(b.reserved)
	})
	return nil
}

// Len returns the fixed number of elements.
func (b *Buffer[T]) Len() int {
	return len(b.values)
}

// State returns the current initialization state.
func (b *Buffer[T]) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Ready reports whether the buffer holds initialized content.
func (b *Buffer[T]) Ready() bool {
	return b.State() == StateReady
}

// readyLocked returns the content if the buffer is ready.
// b.mu must be held.
func (b *Buffer[T]) readyLocked() ([]T, error) {
	if b.state != StateReady {
		return nil, ErrUninitialized
	}
	return b.values, nil
}

// FillConstant sets every element to value.
func (b *Buffer[T]) FillConstant(value T) {
	start := time.Now()

	b.mu.Lock()
	for i := range b.values {
		b.values[i] = value
	}
	b.state = StateReady
	b.mu.Unlock()

	b.opts.metricsCollector.RecordFill(len(b.values), time.Since(start), nil)
	b.logger.LogFill(context.Background(), "constant", nil)
}

// FillRandom sets every element to an independent uniform draw.
//
// Integer types draw from [lo, hi]. Floating-point types draw from
// [lo, hi); rounding can produce hi itself, so only [lo, hi] is
// guaranteed. Each call seeds a fresh generator from the
// configured Seeder, non-deterministic by default.
//
// ErrInvalidRange is returned, and the buffer left unchanged, if
// lo > hi or either bound is NaN or infinite.
func (b *Buffer[T]) FillRandom(lo, hi T) error {
	start := time.Now()

	var err error
	if !isFinite(lo) || !isFinite(hi) || hi < lo {
		err = fmt.Errorf("%w: [%v, %v]", ErrInvalidRange, lo, hi)
	} else {
		draw := uniform(randv2.New(randv2.NewPCG(b.opts.seeder())), lo, hi)

		b.mu.Lock()
		for i := range b.values {
			b.values[i] = draw()
		}
		b.state = StateReady
		b.mu.Unlock()
	}

	b.opts.metricsCollector.RecordFill(len(b.values), time.Since(start), err)
	b.logger.LogFill(context.Background(), "random", err)
	return err
}

// uniform returns a sampler over the documented FillRandom range.
func uniform[T Number](rng *randv2.Rand, lo, hi T) func() T {
	switch kindOf[T]() {
	case kindFloat:
		l, h := float64(lo), float64(hi)
		return func() T {
			f := rng.Float64()
			// Interpolate instead of l + f*(h-l), which overflows when the
			// span exceeds MaxFloat64.
			v := l*(1-f) + h*f
			return T(math.Min(math.Max(v, l), h))
		}
	case kindSigned:
		base := int64(lo)
		span := uint64(int64(hi) - base)
		return func() T { return T(base + int64(drawInclusive(rng, span))) }
	default:
		base := uint64(lo)
		span := uint64(hi) - base
		return func() T { return T(base + drawInclusive(rng, span)) }
	}
}

// drawInclusive returns a uniform value in [0, span].
func drawInclusive(rng *randv2.Rand, span uint64) uint64 {
	if span == math.MaxUint64 {
		return rng.Uint64()
	}
	return rng.Uint64N(span + 1)
}

// Values returns a copy of the content.
func (b *Buffer[T]) Values() ([]T, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	values, err := b.readyLocked()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(values))
	copy(out, values)
	return out, nil
}

// At returns the element at index i.
func (b *Buffer[T]) At(i int) (T, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var zero T
	values, err := b.readyLocked()
	if err != nil {
		return zero, err
	}
	if i < 0 || i >= len(values) {
		return zero, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(values))
	}
	return values[i], nil
}
