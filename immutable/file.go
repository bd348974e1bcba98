package immutable

import (
	"context"
	"io"

	"github.com/parcelfs/blobstore"
)

// blobFile is a readable handle to a committed blob. The underlying reader
// is opened lazily on first read and reopened after Reset, so a handle can
// be iterated more than once.
type blobFile struct {
	ctx      context.Context
	name     string
	ref      blobstore.Ref
	resolver Resolver

	r      io.ReadCloser
	closed bool
}

// Compile-time capability checks.
var (
	_ blobstore.File       = (*blobFile)(nil)
	_ blobstore.BlobBacked = (*blobFile)(nil)
	_ blobstore.Resetter   = (*blobFile)(nil)
)

func (f *blobFile) Read(p []byte) (int, error) {
	if f.closed {
		return 0, blobstore.ErrClosed
	}
	if f.r == nil {
		r, err := f.resolver.Open(f.ctx, f.ref.Key)
		if err != nil {
			return 0, err
		}
		f.r = r
	}
	return f.r.Read(p)
}

// Reset rewinds the handle to the start of the blob by discarding the
// current reader; the next Read opens a fresh one.
func (f *blobFile) Reset() error {
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

func (f *blobFile) Close() error {
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

// Name returns the canonical name the handle was opened under.
func (f *blobFile) Name() string { return f.name }

// Size returns the blob's committed size.
func (f *blobFile) Size() int64 { return f.ref.Size }

// BlobRef returns the blob reference backing this handle.
func (f *blobFile) BlobRef() blobstore.Ref { return f.ref }

// Chunks returns a restartable iterator over the blob's bytes in chunks of
// at most chunkSize. The cursor is rewound to the start before the first
// chunk is produced.
func (f *blobFile) Chunks(chunkSize int) *blobstore.ChunkIterator {
	_ = f.Reset()
	return blobstore.NewChunkIterator(f, chunkSize)
}
