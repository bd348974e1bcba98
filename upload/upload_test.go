package upload_test

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelfs/blobstore"
	"github.com/parcelfs/blobstore/memblob"
	"github.com/parcelfs/blobstore/upload"
)

func partHeader(contentType, disposition string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	if disposition != "" {
		h.Set("Content-Disposition", disposition)
	}
	return h
}

func TestInterceptorShortCircuit(t *testing.T) {
	svc := memblob.New()
	ref := svc.Commit("cat.png", "image/png", []byte("png bytes"))

	in := upload.NewInterceptor(svc)
	assert.Equal(t, upload.StateWatching, in.State())

	stop := in.NewPart(partHeader(
		`image/png; blob-key="`+ref.Key+`"`,
		`form-data; name="file"; filename="cat.png"`,
	))
	assert.True(t, stop)
	assert.Equal(t, upload.StateShortCircuited, in.State())

	// No raw bytes of the part are forwarded.
	assert.Nil(t, in.Chunk([]byte("should be dropped")))

	f, ok := in.Complete()
	require.True(t, ok)
	defer f.Close()

	assert.Equal(t, ref, f.BlobRef())
	assert.Equal(t, "cat.png", f.Name())
	assert.Equal(t, int64(9), f.Size())

	content, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), content)
}

func TestInterceptorPassthrough(t *testing.T) {
	in := upload.NewInterceptor(memblob.New())

	stop := in.NewPart(partHeader(
		"text/plain",
		`form-data; name="file"; filename="notes.txt"`,
	))
	assert.False(t, stop)
	assert.Equal(t, upload.StatePassthrough, in.State())

	// Chunks are forwarded unchanged.
	chunk := []byte("regular upload bytes")
	assert.Equal(t, chunk, in.Chunk(chunk))

	f, ok := in.Complete()
	assert.False(t, ok)
	assert.Nil(t, f)
}

func TestInterceptorNoContentType(t *testing.T) {
	in := upload.NewInterceptor(memblob.New())

	stop := in.NewPart(partHeader("", `form-data; name="file"`))
	assert.False(t, stop)
	assert.Equal(t, upload.StatePassthrough, in.State())
}

func TestInterceptorUnresolvableKeyIsDeferred(t *testing.T) {
	in := upload.NewInterceptor(memblob.New())

	// Interception succeeds even though the key resolves to nothing.
	stop := in.NewPart(partHeader(`application/octet-stream; blob-key="sha256:missing"`, ""))
	require.True(t, stop)

	f, ok := in.Complete()
	require.True(t, ok)
	defer f.Close()

	// Failure surfaces at first read, not before.
	_, err := f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	// The stub reference still carries the key.
	ref := f.BlobRef()
	assert.Equal(t, "sha256:missing", ref.Key)
	assert.Equal(t, int64(-1), ref.Size)
}

func TestFileChunksReproduceContent(t *testing.T) {
	svc := memblob.New()
	data := []byte(strings.Repeat("streaming", 57))
	ref := svc.Commit("s.bin", "application/octet-stream", data)

	f := upload.NewFile(svc, ref.Key)
	defer f.Close()

	sizes := []int{1, 128, len(data), len(data) + 1}
	for _, size := range sizes {
		it := f.Chunks(size)
		var got []byte
		for it.Next() {
			got = append(got, it.Chunk()...)
		}
		require.NoError(t, it.Err())
		assert.Equal(t, data, got, "chunk size %d", size)
	}
}

func TestFileMultipleChunks(t *testing.T) {
	f := upload.NewFile(memblob.New(), "sha256:any")
	assert.True(t, f.MultipleChunks(1))
	assert.True(t, f.MultipleChunks(1<<30))
}

func TestFileClosed(t *testing.T) {
	svc := memblob.New()
	ref := svc.Commit("x.txt", "text/plain", []byte("x"))

	f := upload.NewFile(svc, ref.Key)
	require.NoError(t, f.Close())

	_, err := f.Read(make([]byte, 1))
	assert.ErrorIs(t, err, blobstore.ErrClosed)
	assert.ErrorIs(t, f.Reset(), blobstore.ErrClosed)
}

func TestFromPart(t *testing.T) {
	svc := memblob.New()
	ref := svc.Commit("doc.pdf", "application/pdf", []byte("pdf"))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="doc.pdf"`)
	h.Set("Content-Type", `application/pdf; blob-key="`+ref.Key+`"`)
	_, err := mw.CreatePart(h)
	require.NoError(t, err)

	h = make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="note"; filename="note.txt"`)
	h.Set("Content-Type", "text/plain")
	pw, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = pw.Write([]byte("inline body"))
	require.NoError(t, err)

	require.NoError(t, mw.Close())

	mr := multipart.NewReader(&buf, mw.Boundary())
	ctx := context.Background()

	// First part short-circuits.
	part, err := mr.NextPart()
	require.NoError(t, err)
	f, ok := upload.FromPart(ctx, svc, part)
	require.True(t, ok)
	defer f.Close()
	assert.Equal(t, ref, f.BlobRef())

	// Second part is left for generic handling, body intact.
	part, err = mr.NextPart()
	require.NoError(t, err)
	_, ok = upload.FromPart(ctx, svc, part)
	assert.False(t, ok)

	body, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, []byte("inline body"), body)
}
