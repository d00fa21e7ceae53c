package vecbuf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"time"

	"github.com/hupe1980/vecbuf/blobstore"
	"github.com/hupe1980/vecbuf/codec"
	"github.com/hupe1980/vecbuf/internal/fs"
	"github.com/hupe1980/vecbuf/resource"
)

const (
	writeBufferSize = 64 << 10
	maxTokenSize    = 1 << 10
)

// Export writes every element in index order to path as decimal text,
// each value followed by a single space.
//
// The file is written to a temporary name and renamed into place, so a
// failed export never leaves a truncated file at path. Floating-point
// values use the shortest representation that parses back exactly.
func (b *Buffer[T]) Export(ctx context.Context, path string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := time.Now()
	var written int64

	values, err := b.readyLocked()
	if err == nil {
		err = fs.WriteAtomic(b.opts.fs, path, func(w io.Writer) error {
			var werr error
			written, werr = b.encode(ctx, w, values, b.opts.codecFor(path))
			return werr
		})
		err = wrapIO("export", path, err)
	}

	b.opts.metricsCollector.RecordExport(written, time.Since(start), err)
	b.logger.LogExport(ctx, path, written, err)
	return err
}

// ExportTo writes the buffer as blob name in store, in the same format as
// Export.
func (b *Buffer[T]) ExportTo(ctx context.Context, store blobstore.BlobStore, name string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	start := time.Now()
	var written int64

	values, err := b.readyLocked()
	if err == nil {
		written, err = b.exportBlob(ctx, store, name, values)
		err = wrapIO("export", name, err)
	}

	b.opts.metricsCollector.RecordExport(written, time.Since(start), err)
	b.logger.LogExport(ctx, name, written, err)
	return err
}

func (b *Buffer[T]) exportBlob(ctx context.Context, store blobstore.BlobStore, name string, values []T) (int64, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return 0, err
	}

	written, err := b.encode(ctx, w, values, b.opts.codecFor(name))
	if err != nil {
		if a, ok := w.(blobstore.Aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
		}
		return written, err
	}
	return written, w.Close()
}

// encode writes values through c and returns the number of bytes that
// reached w.
func (b *Buffer[T]) encode(ctx context.Context, w io.Writer, values []T, c codec.Codec) (int64, error) {
	cw := &countingWriter{w: resource.NewRateLimitedWriter(ctx, w, b.opts.controller)}

	enc, err := c.NewWriter(cw)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriterSize(enc, writeBufferSize)

	format := newNumberFormat[T]()
	scratch := make([]byte, 0, 32)
	for i, v := range values {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				_ = enc.Close()
				return cw.n, err
			}
		}
		scratch = format.append(scratch[:0], v)
		scratch = append(scratch, ' ')
		if _, err := bw.Write(scratch); err != nil {
			_ = enc.Close()
			return cw.n, err
		}
	}

	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return cw.n, err
	}
	if err := enc.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

// Import reads up to Len() whitespace-separated values from path and
// overwrites elements 0..k-1, where k is the number of values read.
// Elements from k on keep their previous values.
//
// Reading stops early at end of input or at the first token that does not
// parse as T; neither is an error, and the buffer becomes ready even when
// k < Len(). If the file cannot be opened or read the buffer is left
// unchanged and an *IOError is returned.
func (b *Buffer[T]) Import(ctx context.Context, path string) error {
	start := time.Now()

	staged, err := b.importFile(ctx, path)
	err = wrapIO("import", path, err)
	if err == nil {
		b.apply(staged)
	}

	b.opts.metricsCollector.RecordImport(len(staged), time.Since(start), err)
	b.logger.LogImport(ctx, path, len(staged), len(b.values), err)
	return err
}

func (b *Buffer[T]) importFile(ctx context.Context, path string) ([]T, error) {
	f, err := b.opts.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return b.decode(ctx, f, b.opts.codecFor(path))
}

// ImportFrom reads blob name from store with the semantics of Import.
// A missing blob yields an *IOError wrapping blobstore.ErrNotFound.
func (b *Buffer[T]) ImportFrom(ctx context.Context, store blobstore.BlobStore, name string) error {
	start := time.Now()

	staged, err := b.importBlob(ctx, store, name)
	err = wrapIO("import", name, err)
	if err == nil {
		b.apply(staged)
	}

	b.opts.metricsCollector.RecordImport(len(staged), time.Since(start), err)
	b.logger.LogImport(ctx, name, len(staged), len(b.values), err)
	return err
}

func (b *Buffer[T]) importBlob(ctx context.Context, store blobstore.BlobStore, name string) ([]T, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	rc, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return b.decode(ctx, rc, b.opts.codecFor(name))
}

// decode parses at most Len() values from r. It stops without error at end
// of input or at the first malformed token.
func (b *Buffer[T]) decode(ctx context.Context, r io.Reader, c codec.Codec) ([]T, error) {
	dec, err := c.NewReader(resource.NewRateLimitedReader(ctx, r, b.opts.controller))
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, maxTokenSize), maxTokenSize)
	sc.Split(bufio.ScanWords)

	format := newNumberFormat[T]()
	staged := make([]T, 0, len(b.values))
	for len(staged) < len(b.values) && sc.Scan() {
		if len(staged)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		v, err := format.parse(sc.Text())
		if err != nil {
			return staged, nil
		}
		staged = append(staged, v)
	}

	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			// An oversized token cannot be a number.
			return staged, nil
		}
		return nil, err
	}
	return staged, nil
}

// apply copies staged values over the head of the buffer and marks it
// ready.
func (b *Buffer[T]) apply(staged []T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.values, staged)
	b.state = StateReady
}

// wrapIO turns storage failures into *IOError. Cancellation errors are
// returned as is.
func wrapIO(op, target string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ioError(op, target, err)
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
