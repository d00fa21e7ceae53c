package vecbuf

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Min returns the smallest element using a sequential scan on the calling
// goroutine. NaN elements are ignored unless every element is NaN.
func (b *Buffer[T]) Min() (Result[T], error) {
	return b.extremum(context.Background(), MinReduction[T](), 0)
}

// Max returns the largest element using a sequential scan on the calling
// goroutine. NaN elements are ignored unless every element is NaN.
func (b *Buffer[T]) Max() (Result[T], error) {
	return b.extremum(context.Background(), MaxReduction[T](), 0)
}

// ParallelMin returns the same value as Min, scanning with up to workers
// goroutines. workers is clamped to Len() and to the resource controller's
// worker limit.
func (b *Buffer[T]) ParallelMin(ctx context.Context, workers int) (Result[T], error) {
	if workers < 1 {
		return Result[T]{}, b.observe(ctx, "min", 0, 0, ErrInvalidWorkers)
	}
	return b.extremum(ctx, MinReduction[T](), workers)
}

// ParallelMax returns the same value as Max, scanning with up to workers
// goroutines.
func (b *Buffer[T]) ParallelMax(ctx context.Context, workers int) (Result[T], error) {
	if workers < 1 {
		return Result[T]{}, b.observe(ctx, "max", 0, 0, ErrInvalidWorkers)
	}
	return b.extremum(ctx, MaxReduction[T](), workers)
}

// extremum runs a min or max reduction. workers == 0 selects the
// sequential scan.
func (b *Buffer[T]) extremum(ctx context.Context, r Reduction[T, Extremum[T]], workers int) (Result[T], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	// A zero-length buffer has no extremum whether or not it was filled.
	if len(b.values) == 0 {
		return Result[T]{}, b.observe(ctx, r.Name, 0, 0, ErrEmptyBuffer)
	}
	values, err := b.readyLocked()
	if err != nil {
		return Result[T]{}, b.observe(ctx, r.Name, 0, 0, err)
	}

	start := time.Now()
	var (
		acc  Extremum[T]
		used = 1
	)
	if workers == 0 {
		acc, err = foldRange(ctx, values, Range{Start: 0, End: len(values)}, r)
	} else {
		acc, used, err = parallelReduce(ctx, b.opts.controller, values, workers, r)
	}
	elapsed := time.Since(start)
	if err != nil {
		return Result[T]{}, b.observe(ctx, r.Name, used, elapsed, err)
	}

	value := acc.Value
	if !acc.Found {
		value = values[0] // all NaN
	}
	return Result[T]{Value: value, Elapsed: elapsed, Workers: used}, b.observe(ctx, r.Name, used, elapsed, nil)
}

// Sum returns the sum of all elements using up to workers goroutines.
// An empty buffer sums to zero. Floating-point sums depend on the
// partitioning in the last bits.
func (b *Buffer[T]) Sum(ctx context.Context, workers int) (Result[T], error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	values, err := b.readyLocked()
	if err != nil {
		return Result[T]{}, b.observe(ctx, "sum", 0, 0, err)
	}

	start := time.Now()
	sum, used, err := parallelReduce(ctx, b.opts.controller, values, workers, SumReduction[T]())
	elapsed := time.Since(start)
	if err != nil {
		return Result[T]{}, b.observe(ctx, "sum", used, elapsed, err)
	}
	return Result[T]{Value: sum, Elapsed: elapsed, Workers: used}, b.observe(ctx, "sum", used, elapsed, nil)
}

// Select returns the indices of all elements satisfying pred, using up to
// workers goroutines. pred must be safe for concurrent use.
func (b *Buffer[T]) Select(ctx context.Context, workers int, pred func(T) bool) (*roaring64.Bitmap, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	values, err := b.readyLocked()
	if err != nil {
		return nil, b.observe(ctx, "select", 0, 0, err)
	}

	start := time.Now()
	bm, used, err := parallelReduce(ctx, b.opts.controller, values, workers, selectReduction(pred))
	elapsed := time.Since(start)
	if err != nil {
		return nil, b.observe(ctx, "select", used, elapsed, err)
	}
	return bm, b.observe(ctx, "select", used, elapsed, nil)
}

// Positions returns the indices of all elements equal to value, e.g. where
// the minimum occurs.
func (b *Buffer[T]) Positions(ctx context.Context, workers int, value T) (*roaring64.Bitmap, error) {
	return b.Select(ctx, workers, func(v T) bool { return v == value })
}

func selectReduction[T Number](pred func(T) bool) Reduction[T, *roaring64.Bitmap] {
	return Reduction[T, *roaring64.Bitmap]{
		Name:     "select",
		Identity: roaring64.New,
		Fold: func(acc *roaring64.Bitmap, offset int, chunk []T) *roaring64.Bitmap {
			for i, v := range chunk {
				if pred(v) {
					acc.Add(uint64(offset + i))
				}
			}
			return acc
		},
		Merge: func(a, c *roaring64.Bitmap) *roaring64.Bitmap {
			a.Or(c)
			return a
		},
	}
}

// observe records metrics and logs for a reduction and returns err.
func (b *Buffer[T]) observe(ctx context.Context, op string, workers int, elapsed time.Duration, err error) error {
	b.opts.metricsCollector.RecordReduce(op, workers, elapsed, err)
	b.logger.LogReduce(ctx, op, workers, elapsed, err)
	return err
}
