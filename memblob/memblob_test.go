package memblob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelfs/blobstore"
)

func TestCommitAndResolve(t *testing.T) {
	ctx := context.Background()
	svc := New()

	ref := svc.Commit("photo.jpg", "image/jpeg", []byte("jpeg bytes"))
	assert.True(t, strings.HasPrefix(ref.Key, "sha256:"))
	assert.Equal(t, int64(10), ref.Size)
	assert.Equal(t, "image/jpeg", ref.ContentType)
	assert.Equal(t, "photo.jpg", ref.Filename)

	got, err := svc.Resolve(ctx, ref.Key)
	require.NoError(t, err)
	assert.Equal(t, ref, got)

	r, err := svc.Open(ctx, ref.Key)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)
}

func TestCommitIsContentAddressed(t *testing.T) {
	svc := New()

	a := svc.Commit("a.bin", "", []byte("same bytes"))
	b := svc.Commit("b.bin", "", []byte("same bytes"))
	assert.Equal(t, a.Key, b.Key)
	assert.Equal(t, 1, svc.Len())
}

func TestCommitCopiesData(t *testing.T) {
	ctx := context.Background()
	svc := New()

	data := []byte("original")
	ref := svc.Commit("a.bin", "", data)

	// Mutating the caller's slice must not change the committed blob.
	data[0] = 'X'

	r, err := svc.Open(ctx, ref.Key)
	require.NoError(t, err)
	defer r.Close()

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), got)
}

func TestUnknownKey(t *testing.T) {
	ctx := context.Background()
	svc := New()

	_, err := svc.Resolve(ctx, "sha256:unknown")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = svc.Open(ctx, "sha256:unknown")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	err = svc.Delete(ctx, "sha256:unknown")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := New()

	ref := svc.Commit("a.bin", "", []byte("abc"))
	require.NoError(t, svc.Delete(ctx, ref.Key))

	_, err := svc.Resolve(ctx, ref.Key)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestUploadURL(t *testing.T) {
	url, err := New().UploadURL(context.Background(), "/done?id=7")
	require.NoError(t, err)
	assert.Equal(t, "memblob://upload?return_to=%2Fdone%3Fid%3D7", url)
}
