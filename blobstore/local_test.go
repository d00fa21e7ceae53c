package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func testStoreLifecycle(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	// 1. Create a blob
	data := []byte("5 3 8 1 9 2 ")
	w, err := store.Create(ctx, "values/a.txt")
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	// 2. Open and ReadAt
	blob, err := store.Open(ctx, "values/a.txt")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 3)
	n, err = blob.ReadAt(ctx, buf, 4)
	require.NoError(t, err)
	require.Equal(t, 3, n)
	require.Equal(t, "8 1", string(buf))

	// 3. ReadRange past end is truncated
	r, err := blob.ReadRange(ctx, 8, 100)
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "9 2 ", string(got))
	require.NoError(t, r.Close())

	_, err = blob.ReadRange(ctx, 100, 1)
	require.ErrorIs(t, err, io.EOF)

	// 4. Whole blob
	r, err = NewReader(ctx, blob)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, data, got)
	require.NoError(t, blob.Close())

	// 5. List
	require.NoError(t, store.Put(ctx, "values/b.txt", []byte("1 ")))
	require.NoError(t, store.Put(ctx, "other.txt", nil))

	names, err := store.List(ctx, "values/")
	require.NoError(t, err)
	require.Equal(t, []string{"values/a.txt", "values/b.txt"}, names)

	// 6. Empty blob reads as empty stream
	empty, err := store.Open(ctx, "other.txt")
	require.NoError(t, err)
	r, err = NewReader(ctx, empty)
	require.NoError(t, err)
	got, err = io.ReadAll(r)
	require.NoError(t, err)
	require.Empty(t, got)
	require.NoError(t, empty.Close())

	// 7. Delete
	require.NoError(t, store.Delete(ctx, "values/a.txt"))
	require.NoError(t, store.Delete(ctx, "values/a.txt"))

	_, err = store.Open(ctx, "values/a.txt")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore_Lifecycle(t *testing.T) {
	testStoreLifecycle(t, NewLocalStore(t.TempDir()))
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	testStoreLifecycle(t, NewMemoryStore())
}

func TestLocalStore_UncommittedBlobInvisible(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir)
	ctx := context.Background()

	w, err := store.Create(ctx, "pending.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("1 2 3 "))
	require.NoError(t, err)

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Empty(t, names)

	_, err = os.Stat(filepath.Join(dir, "pending.txt"))
	require.True(t, os.IsNotExist(err))

	require.NoError(t, w.Close())
	names, err = store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"pending.txt"}, names)
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	require.Empty(t, names)
}

func TestAbortDiscardsBlob(t *testing.T) {
	ctx := context.Background()

	for name, store := range map[string]BlobStore{
		"local":  NewLocalStore(t.TempDir()),
		"memory": NewMemoryStore(),
	} {
		t.Run(name, func(t *testing.T) {
			w, err := store.Create(ctx, "partial.txt")
			require.NoError(t, err)
			_, err = w.Write([]byte("1 2 "))
			require.NoError(t, err)

			a, ok := w.(Aborter)
			require.True(t, ok)
			require.NoError(t, a.Abort())

			_, err = store.Open(ctx, "partial.txt")
			require.ErrorIs(t, err, ErrNotFound)

			names, err := store.List(ctx, "")
			require.NoError(t, err)
			require.Empty(t, names)
		})
	}
}
