package vecbuf

// Range is a half-open index interval [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in r.
func (r Range) Len() int { return r.End - r.Start }

// Partition splits [0, n) into contiguous blocks, one per worker.
//
// workers is clamped to n so no block is empty. Every block holds
// n/workers indices except the last, which also takes the remainder.
// For n == 0 the result is empty.
func Partition(n, workers int) ([]Range, error) {
	if workers < 1 {
		return nil, ErrInvalidWorkers
	}
	if n <= 0 {
		return nil, nil
	}
	if workers > n {
		workers = n
	}

	block := n / workers
	ranges := make([]Range, workers)
	for i := range ranges {
		start := i * block
		end := start + block
		if i == workers-1 {
			end = n
		}
		ranges[i] = Range{Start: start, End: end}
	}
	return ranges, nil
}
