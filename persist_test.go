package vecbuf

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/vecbuf/blobstore"
	"github.com/hupe1980/vecbuf/codec"
	"github.com/hupe1980/vecbuf/internal/fs"
	"github.com/hupe1980/vecbuf/resource"
	"github.com/hupe1980/vecbuf/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "values.txt")

	b := newLoaded(t, 5, 3, 8, 1, 9, 2)
	require.NoError(t, b.Export(ctx, path))

	assert.Equal(t, "5 3 8 1 9 2 ", testutil.ReadText(t, path))
}

func TestExportFloatFormat(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "values.txt")

	b := newLoaded(t, 0.1, -2.5, 1e21, math.Inf(1))
	require.NoError(t, b.Export(ctx, path))

	assert.Equal(t, "0.1 -2.5 1e+21 +Inf ", testutil.ReadText(t, path))
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, name := range []string{"values.txt", "values.txt.zst", "values.txt.lz4"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)

			src, err := New[float64](20_000)
			require.NoError(t, err)
			require.NoError(t, src.FillRandom(-100, 100))
			require.NoError(t, src.Export(ctx, path))

			dst, err := New[float64](20_000)
			require.NoError(t, err)
			require.NoError(t, dst.Import(ctx, path))

			want, err := src.Values()
			require.NoError(t, err)
			got, err := dst.Values()
			require.NoError(t, err)
			assert.Equal(t, want, got)
			assert.True(t, dst.Ready())
		})
	}

	t.Run("int64 extremes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ints.txt")
		src := newLoaded(t, int64(math.MinInt64), 0, int64(math.MaxInt64))
		require.NoError(t, src.Export(ctx, path))

		dst, err := New[int64](3)
		require.NoError(t, err)
		require.NoError(t, dst.Import(ctx, path))

		got, err := dst.Values()
		require.NoError(t, err)
		assert.Equal(t, []int64{math.MinInt64, 0, math.MaxInt64}, got)
	})

	t.Run("float32", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "f32.txt")
		src := newLoaded(t, float32(0.1), float32(-1.5e-7), float32(3))
		require.NoError(t, src.Export(ctx, path))

		dst, err := New[float32](3)
		require.NoError(t, err)
		require.NoError(t, dst.Import(ctx, path))

		got, err := dst.Values()
		require.NoError(t, err)
		assert.Equal(t, []float32{0.1, -1.5e-7, 3}, got)
	})

	t.Run("fixed codec", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "values.bin")
		src, err := New[int](100, WithCodec(codec.Zstd))
		require.NoError(t, err)
		require.NoError(t, src.FillRandom(-1000, 1000))
		require.NoError(t, src.Export(ctx, path))

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x28, 0xb5, 0x2f, 0xfd}, raw[:4])

		dst, err := New[int](100, WithCodec(codec.Zstd))
		require.NoError(t, err)
		require.NoError(t, dst.Import(ctx, path))

		want, _ := src.Values()
		got, _ := dst.Values()
		assert.Equal(t, want, got)
	})
}

func TestPartialImport(t *testing.T) {
	ctx := context.Background()

	t.Run("fewer tokens keep trailing values", func(t *testing.T) {
		path := testutil.WriteText(t, "short.txt", "1 2")
		b := newLoaded(t, 10, 20, 30, 40)

		require.NoError(t, b.Import(ctx, path))

		got, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 30, 40}, got)
	})

	t.Run("fresh buffer becomes ready", func(t *testing.T) {
		path := testutil.WriteText(t, "short.txt", "7\n")
		b, err := New[int](3)
		require.NoError(t, err)

		require.NoError(t, b.Import(ctx, path))

		assert.True(t, b.Ready())
		got, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, []int{7, 0, 0}, got)
	})

	t.Run("empty file", func(t *testing.T) {
		path := testutil.WriteText(t, "empty.txt", "")
		b, err := New[float64](2)
		require.NoError(t, err)

		require.NoError(t, b.Import(ctx, path))
		assert.True(t, b.Ready())
	})

	t.Run("extra tokens ignored", func(t *testing.T) {
		path := testutil.WriteText(t, "long.txt", "1 2 3 4 5 6")
		b, err := New[int](3)
		require.NoError(t, err)

		require.NoError(t, b.Import(ctx, path))

		got, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, got)
	})

	t.Run("mixed whitespace", func(t *testing.T) {
		path := testutil.WriteText(t, "ws.txt", " 1\t2\n\n3\r\n")
		b, err := New[uint32](3)
		require.NoError(t, err)

		require.NoError(t, b.Import(ctx, path))

		got, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, []uint32{1, 2, 3}, got)
	})
}

func TestImportStopsAtMalformedToken(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		want    []int8
	}{
		{"word", "1 2 x 4", []int8{1, 2, -1, -1}},
		{"overflow", "5 300 6 7", []int8{5, -1, -1, -1}},
		{"float for int", "1.5 2 3 4", []int8{-1, -1, -1, -1}},
		{"oversized token", "1 " + strings.Repeat("9", 2*maxTokenSize) + " 3", []int8{1, -1, -1, -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteText(t, "in.txt", tt.content)
			b := newLoaded(t, int8(-1), -1, -1, -1)

			require.NoError(t, b.Import(ctx, path))

			got, err := b.Values()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestImportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		b, err := New[float64](3)
		require.NoError(t, err)

		err = b.Import(ctx, filepath.Join(t.TempDir(), "missing.txt"))

		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "import", ioErr.Op)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Equal(t, StateUninitialized, b.State())
	})

	t.Run("read failure leaves buffer unchanged", func(t *testing.T) {
		path := testutil.WriteText(t, "values.txt", "1 2 3")
		faulty := fs.NewFaultyFS(nil)
		faulty.AddRule("values.txt", fs.Fault{FailOnRead: true})

		b, err := New[int](3, WithFileSystem(faulty))
		require.NoError(t, err)
		b.FillConstant(9)

		err = b.Import(ctx, path)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, fs.ErrInjected)

		got, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, []int{9, 9, 9}, got)
	})

	t.Run("corrupt compressed stream", func(t *testing.T) {
		path := testutil.WriteText(t, "values.txt.zst", "not zstd at all")
		b, err := New[int](3)
		require.NoError(t, err)

		err = b.Import(ctx, path)
		assert.ErrorIs(t, err, ErrIO)
		assert.False(t, b.Ready())
	})

	t.Run("canceled", func(t *testing.T) {
		path := testutil.WriteText(t, "values.txt", "1 2 3")
		b, err := New[int](3)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err = b.Import(cctx, path)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, ErrIO))
		assert.False(t, b.Ready())
	})
}

func TestExportErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		b := newLoaded(t, 1, 2)

		err := b.Export(ctx, filepath.Join(t.TempDir(), "no", "such", "dir.txt"))

		var ioErr *IOError
		require.ErrorAs(t, err, &ioErr)
		assert.Equal(t, "export", ioErr.Op)
	})

	t.Run("write failure keeps previous file", func(t *testing.T) {
		path := testutil.WriteText(t, "values.txt", "old")
		faulty := fs.NewFaultyFS(nil)
		faulty.AddRule("values.txt", fs.Fault{FailOnWrite: true})

		b, err := New[int](3, WithFileSystem(faulty))
		require.NoError(t, err)
		b.FillConstant(1)

		err = b.Export(ctx, path)
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, fs.ErrInjected)
		assert.Equal(t, "old", testutil.ReadText(t, path))

		entries, err := os.ReadDir(filepath.Dir(path))
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("rename failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "values.txt")
		faulty := fs.NewFaultyFS(nil)
		faulty.AddRule("values.txt", fs.Fault{FailOnRename: true})

		b, err := New[int](3, WithFileSystem(faulty))
		require.NoError(t, err)
		b.FillConstant(1)

		assert.ErrorIs(t, b.Export(ctx, path), ErrIO)
		assert.NoFileExists(t, path)
	})

	t.Run("canceled", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "values.txt")
		b := newLoaded(t, 1, 2, 3)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := b.Export(cctx, path)
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, errors.Is(err, ErrIO))
		assert.NoFileExists(t, path)
	})
}

func TestBlobStoreRoundTrip(t *testing.T) {
	ctx := context.Background()

	stores := map[string]blobstore.BlobStore{
		"memory": blobstore.NewMemoryStore(),
		"local":  blobstore.NewLocalStore(t.TempDir()),
	}

	for storeName, store := range stores {
		for _, name := range []string{"run/values.txt", "run/values.txt.zst", "run/values.txt.lz4"} {
			t.Run(storeName+"/"+name, func(t *testing.T) {
				src, err := New[float64](5000)
				require.NoError(t, err)
				require.NoError(t, src.FillRandom(-1, 1))
				require.NoError(t, src.ExportTo(ctx, store, name))

				dst, err := New[float64](5000)
				require.NoError(t, err)
				require.NoError(t, dst.ImportFrom(ctx, store, name))

				want, _ := src.Values()
				got, _ := dst.Values()
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestBlobStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	t.Run("missing blob", func(t *testing.T) {
		b, err := New[int](2)
		require.NoError(t, err)

		err = b.ImportFrom(ctx, store, "missing.txt")
		assert.ErrorIs(t, err, ErrIO)
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
		assert.False(t, b.Ready())
	})

	t.Run("uninitialized", func(t *testing.T) {
		b, err := New[int](2)
		require.NoError(t, err)

		assert.ErrorIs(t, b.ExportTo(ctx, store, "x.txt"), ErrUninitialized)
		names, err := store.List(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("canceled export stores nothing", func(t *testing.T) {
		b := newLoaded(t, 1, 2)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		assert.ErrorIs(t, b.ExportTo(cctx, store, "y.txt"), context.Canceled)
		_, err := store.Open(ctx, "y.txt")
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("partial blob", func(t *testing.T) {
		require.NoError(t, store.Put(ctx, "short.txt", []byte("4 5")))
		b := newLoaded(t, 1, 1, 1)

		require.NoError(t, b.ImportFrom(ctx, store, "short.txt"))

		got, err := b.Values()
		require.NoError(t, err)
		assert.Equal(t, []int{4, 5, 1}, got)
	})
}

func TestPersistWithIOLimit(t *testing.T) {
	ctx := context.Background()
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 20})
	path := filepath.Join(t.TempDir(), "values.txt")

	src, err := New[int32](1000, WithResourceController(rc))
	require.NoError(t, err)
	require.NoError(t, src.FillRandom(-50, 50))
	require.NoError(t, src.Export(ctx, path))

	dst, err := New[int32](1000, WithResourceController(rc))
	require.NoError(t, err)
	require.NoError(t, dst.Import(ctx, path))

	want, _ := src.Values()
	got, _ := dst.Values()
	assert.Equal(t, want, got)
}

func TestPersistMetrics(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	path := filepath.Join(t.TempDir(), "values.txt")

	b, err := New[int](6, WithMetricsCollector(metrics))
	require.NoError(t, err)
	b.apply([]int{5, 3, 8, 1, 9, 2})

	require.NoError(t, b.Export(ctx, path))
	require.NoError(t, b.Import(ctx, path))
	require.Error(t, b.Import(ctx, path+".missing"))

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.ExportCount)
	assert.Equal(t, int64(len("5 3 8 1 9 2 ")), stats.ExportBytes)
	assert.Equal(t, int64(2), stats.ImportCount)
	assert.Equal(t, int64(1), stats.ImportErrors)
	assert.Equal(t, int64(6), stats.ImportTokens)
}
