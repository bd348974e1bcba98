package upload

import (
	"context"
	"io"

	"github.com/parcelfs/blobstore"
	"github.com/parcelfs/blobstore/immutable"
)

// File is the uploaded-blob file adapter: a chunked-readable object
// wrapping a blob that was committed to the remote store out of band.
//
// Metadata and content are resolved lazily; an unresolvable key surfaces
// as blobstore.ErrNotFound on first read or metadata access, never at
// interception time.
type File struct {
	resolver immutable.Resolver
	ctx      context.Context
	key      string
	filename string

	resolved bool
	ref      blobstore.Ref
	r        io.ReadCloser
	closed   bool
}

// Capability checks: a File is valid Save content for an immutable store
// and a servable handle for httpserve.
var (
	_ io.ReadCloser        = (*File)(nil)
	_ blobstore.BlobBacked = (*File)(nil)
	_ blobstore.Resetter   = (*File)(nil)
)

// FileOption configures a File.
type FileOption func(*File)

// WithFilename sets the original client-supplied display name.
func WithFilename(name string) FileOption {
	return func(f *File) {
		f.filename = name
	}
}

// WithContext sets the context used for lazy resolution and reads.
// Defaults to context.Background().
func WithContext(ctx context.Context) FileOption {
	return func(f *File) {
		f.ctx = ctx
	}
}

// NewFile creates a file adapter for the blob committed under key.
func NewFile(resolver immutable.Resolver, key string, opts ...FileOption) *File {
	f := &File{
		resolver: resolver,
		ctx:      context.Background(),
		key:      key,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// resolve fetches the blob's committed metadata once.
func (f *File) resolve() error {
	if f.resolved {
		return nil
	}
	ref, err := f.resolver.Resolve(f.ctx, f.key)
	if err != nil {
		return err
	}
	if f.filename != "" {
		ref.Filename = f.filename
	}
	f.ref = ref
	f.resolved = true
	return nil
}

// BlobRef returns the blob reference. Before successful resolution it
// carries only the key, with an unknown size.
func (f *File) BlobRef() blobstore.Ref {
	if err := f.resolve(); err != nil {
		return blobstore.Ref{Key: f.key, Size: -1, Filename: f.filename}
	}
	return f.ref
}

// Name returns the display filename when known, else the blob key.
func (f *File) Name() string {
	if f.filename != "" {
		return f.filename
	}
	if err := f.resolve(); err == nil && f.ref.Filename != "" {
		return f.ref.Filename
	}
	return f.key
}

// Size returns the blob's committed size, or -1 while unresolved.
func (f *File) Size() int64 {
	return f.BlobRef().Size
}

// ContentType returns the blob's committed content type.
func (f *File) ContentType() string {
	return f.BlobRef().ContentType
}

func (f *File) Read(p []byte) (int, error) {
	if f.closed {
		return 0, blobstore.ErrClosed
	}
	if f.r == nil {
		if err := f.resolve(); err != nil {
			return 0, err
		}
		r, err := f.resolver.Open(f.ctx, f.key)
		if err != nil {
			return 0, err
		}
		f.r = r
	}
	return f.r.Read(p)
}

// Reset rewinds the file to the start of the blob. The current reader is
// discarded and the next Read opens a fresh one.
func (f *File) Reset() error {
	if f.closed {
		return blobstore.ErrClosed
	}
	if f.r != nil {
		err := f.r.Close()
		f.r = nil
		return err
	}
	return nil
}

// Close releases the underlying reader. Subsequent reads report ErrClosed.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	if f.r != nil {
		err := f.r.Close()
		f.r = nil
		return err
	}
	return nil
}

// Chunks returns a lazy, finite iterator over the blob's bytes in chunks
// of at most chunkSize. The cursor is rewound to the start at invocation,
// so the sequence can be consumed more than once.
func (f *File) Chunks(chunkSize int) *blobstore.ChunkIterator {
	_ = f.Reset()
	return blobstore.NewChunkIterator(f, chunkSize)
}

// MultipleChunks reports whether the file should be treated as spanning
// multiple chunks. Always true: blob sizes are unbounded at this layer and
// callers must not assume the whole object fits in one chunk.
func (f *File) MultipleChunks(int) bool {
	return true
}
