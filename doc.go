// Package vecbuf provides a fixed-length numeric buffer with parallel
// reductions and text persistence.
//
// A Buffer[T] holds Len() elements of any integer or floating-point type.
// It starts uninitialized; content reads fail with ErrUninitialized until
// the first fill or import.
//
// # Quick Start
//
//	buf, _ := vecbuf.New[float64](1_000_000)
//	defer buf.Close()
//
//	_ = buf.FillRandom(-100, 100)
//
//	lo, _ := buf.Min()                            // sequential scan
//	hi, _ := buf.ParallelMax(ctx, runtime.NumCPU()) // partitioned scan
//	fmt.Println(lo.Value, hi.Value, hi.Elapsed)
//
// # Parallel Reductions
//
// ParallelMin and ParallelMax split the buffer into contiguous blocks
// (see Partition), scan each block on its own goroutine and merge the
// partial results. The result never depends on the worker count. Custom
// aggregates plug in through Reduction and ParallelReduce:
//
//	count := vecbuf.Reduction[float64, int]{
//	    Name:     "positive",
//	    Identity: func() int { return 0 },
//	    Fold: func(acc, _ int, chunk []float64) int {
//	        for _, v := range chunk {
//	            if v > 0 {
//	                acc++
//	            }
//	        }
//	        return acc
//	    },
//	    Merge: func(a, b int) int { return a + b },
//	}
//	n, _ := vecbuf.ParallelReduce(ctx, values, 8, count)
//
// Select and Positions return matching indices as a roaring64 bitmap.
//
// # Persistence
//
// Export writes every element as decimal text followed by a space; Import
// reads whitespace-separated tokens back. Names ending in .zst or .lz4 are
// compressed transparently (see package codec). ExportTo and ImportFrom do
// the same against a blobstore.BlobStore, e.g. S3 or MinIO:
//
//	store := s3.NewStore(client, "my-bucket", "buffers/")
//	_ = buf.ExportTo(ctx, store, "prices.txt.zst")
//
// Import is lenient: it stops at end of input or at the first malformed
// token and keeps the remaining elements unchanged. Failures to open or
// read the source return an *IOError and leave the buffer untouched.
//
// # Resource Control
//
// Buffers can share a resource.Controller that caps reserved memory, the
// number of concurrent reduction workers and export/import throughput.
package vecbuf
