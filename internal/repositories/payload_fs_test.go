package repositories

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSPayloadStore_UploadAndRead(t *testing.T) {
	store, err := NewFSPayloadStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	payload := []byte("the quick brown fox jumps over the lazy dog")

	size, err := store.Upload(ctx, "owner-1/item-1", bytes.NewReader(payload), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(len(payload)), size, "Upload should report the uncompressed length")

	rc, err := store.OpenRead(ctx, "owner-1/item-1")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestFSPayloadStore_UploadEmptyPayload(t *testing.T) {
	store, err := NewFSPayloadStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	size, err := store.Upload(ctx, "owner-1/empty", bytes.NewReader(nil), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	rc, err := store.OpenRead(ctx, "owner-1/empty")
	require.NoError(t, err)
	defer rc.Close()

	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFSPayloadStore_OpenRead_NotFound(t *testing.T) {
	store, err := NewFSPayloadStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.OpenRead(context.Background(), "owner-1/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFSPayloadStore_Delete(t *testing.T) {
	store, err := NewFSPayloadStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Upload(ctx, "owner-1/item-1", bytes.NewBufferString("bytes"), "text/plain")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "owner-1/item-1"))

	_, err = store.OpenRead(ctx, "owner-1/item-1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Delete(ctx, "owner-1/item-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

// TestFSPayloadStore_NoTempLeftovers checks that a completed upload leaves
// nothing behind in the staging directory.
func TestFSPayloadStore_NoTempLeftovers(t *testing.T) {
	root := t.TempDir()
	store, err := NewFSPayloadStore(root)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "owner-1/item-1", bytes.NewBufferString("bytes"), "text/plain")
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(root, tempDirName))
	require.NoError(t, err)
	assert.Empty(t, entries, "temp dir should be empty after a successful upload")
}

func TestFSPayloadStore_CancelledContext(t *testing.T) {
	store, err := NewFSPayloadStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = store.Upload(ctx, "owner-1/item-1", bytes.NewBufferString("bytes"), "text/plain")
	assert.ErrorIs(t, err, context.Canceled)
}

// TestFSPayloadStore_BlobNamesAreOpaque stores under names that would be
// hostile as filesystem paths; hashing must keep them inside the root.
func TestFSPayloadStore_BlobNamesAreOpaque(t *testing.T) {
	store, err := NewFSPayloadStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"../../etc/passwd", "a/b/../c", "plain"} {
		_, err := store.Upload(ctx, name, bytes.NewBufferString("content"), "text/plain")
		require.NoError(t, err)

		rc, err := store.OpenRead(ctx, name)
		require.NoError(t, err)
		got, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		assert.Equal(t, []byte("content"), got)
	}
}
