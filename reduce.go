package vecbuf

import (
	"context"

	"github.com/hupe1980/vecbuf/resource"
	"golang.org/x/sync/errgroup"
)

// cancelCheckInterval is the number of elements a worker folds between
// context checks.
const cancelCheckInterval = 4096

// Reduction describes an associative aggregate over a sequence of T.
//
// Fold consumes one chunk of a partition; offset is the buffer index of
// chunk[0]. Merge combines two partial results and must be associative.
// Partial results are merged in partition order, so Merge need not be
// commutative.
type Reduction[T Number, A any] struct {
	Name     string
	Identity func() A
	Fold     func(acc A, offset int, chunk []T) A
	Merge    func(a, b A) A
}

// ParallelReduce applies r to values using up to workers goroutines.
//
// values is split with Partition; each worker folds its own block into a
// private slot and the slots are merged sequentially once all workers have
// returned. Empty input yields r.Identity().
func ParallelReduce[T Number, A any](ctx context.Context, values []T, workers int, r Reduction[T, A]) (A, error) {
	acc, _, err := parallelReduce(ctx, nil, values, workers, r)
	return acc, err
}

// parallelReduce is ParallelReduce bounded by ctrl. It also reports the
// number of workers actually used.
func parallelReduce[T Number, A any](ctx context.Context, ctrl *resource.Controller, values []T, workers int, r Reduction[T, A]) (A, int, error) {
	if workers < 1 {
		var zero A
		return zero, 0, ErrInvalidWorkers
	}

	ranges, err := Partition(len(values), ctrl.ClampWorkers(workers))
	if err != nil {
		var zero A
		return zero, 0, err
	}
	if len(ranges) == 0 {
		return r.Identity(), 0, nil
	}

	if err := ctrl.AcquireWorkers(ctx, len(ranges)); err != nil {
		var zero A
		return zero, 0, err
	}
	defer ctrl.ReleaseWorkers(len(ranges))

	if len(ranges) == 1 {
		acc, err := foldRange(ctx, values, ranges[0], r)
		return acc, 1, err
	}

	slots := make([]A, len(ranges))
	g, gctx := errgroup.WithContext(ctx)
	for i, rg := range ranges {
		g.Go(func() error {
			acc, err := foldRange(gctx, values, rg, r)
			if err != nil {
				return err
			}
			slots[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		var zero A
		return zero, 0, err
	}

	acc := slots[0]
	for _, s := range slots[1:] {
		acc = r.Merge(acc, s)
	}
	return acc, len(ranges), nil
}

func foldRange[T Number, A any](ctx context.Context, values []T, rg Range, r Reduction[T, A]) (A, error) {
	acc := r.Identity()
	for start := rg.Start; start < rg.End; start += cancelCheckInterval {
		if err := ctx.Err(); err != nil {
			return acc, err
		}
		end := min(start+cancelCheckInterval, rg.End)
		acc = r.Fold(acc, start, values[start:end])
	}
	return acc, nil
}

// Extremum is the partial result of a min or max reduction. Found is false
// while no non-NaN value has been seen.
type Extremum[T Number] struct {
	Value T
	Found bool
}

func extremumReduction[T Number](name string, better func(a, b T) bool) Reduction[T, Extremum[T]] {
	return Reduction[T, Extremum[T]]{
		Name:     name,
		Identity: func() Extremum[T] { return Extremum[T]{} },
		Fold: func(acc Extremum[T], _ int, chunk []T) Extremum[T] {
			for _, v := range chunk {
				if isNaN(v) {
					continue
				}
				if !acc.Found || better(v, acc.Value) {
					acc = Extremum[T]{Value: v, Found: true}
				}
			}
			return acc
		},
		Merge: func(a, b Extremum[T]) Extremum[T] {
			switch {
			case !b.Found:
				return a
			case !a.Found:
				return b
			case better(b.Value, a.Value):
				return b
			default:
				return a
			}
		},
	}
}

// MinReduction returns the reduction computing the smallest non-NaN value.
func MinReduction[T Number]() Reduction[T, Extremum[T]] {
	return extremumReduction("min", func(a, b T) bool { return a < b })
}

// MaxReduction returns the reduction computing the largest non-NaN value.
func MaxReduction[T Number]() Reduction[T, Extremum[T]] {
	return extremumReduction("max", func(a, b T) bool { return a > b })
}

// SumReduction returns the reduction computing the sum of all values.
func SumReduction[T Number]() Reduction[T, T] {
	return Reduction[T, T]{
		Name:     "sum",
		Identity: func() T { return 0 },
		Fold: func(acc T, _ int, chunk []T) T {
			for _, v := range chunk {
				acc += v
			}
			return acc
		},
		Merge: func(a, b T) T { return a + b },
	}
}
