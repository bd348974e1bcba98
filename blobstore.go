package blobstore

import (
	"context"
	"io"
)

// Ref names a stored object together with the metadata known at commit
// time. The key is assigned by the backend when the object is finalized and
// never chosen by clients; Size and ContentType do not change afterwards.
type Ref struct {
	// Key uniquely identifies the object within its backend.
	Key string

	// Size is the object's byte count, or -1 when not yet known.
	Size int64

	// ContentType is the object's MIME type. May be empty.
	ContentType string

	// Filename is the original client-supplied display name, advisory only.
	Filename string
}

// Mode selects how a file handle is opened.
type Mode int

const (
	// ModeRead opens an object for sequential reading.
	ModeRead Mode = iota

	// ModeWrite requests a writable handle. No current backend supports
	// it: immutable stores reject writes by contract, and mutable stores
	// only accept whole objects through Save so that visibility stays
	// atomic. Open returns ErrUnsupported.
	ModeWrite
)

// File is a readable handle to a stored object.
type File interface {
	io.Reader
	io.Closer

	// Name returns the canonical name the handle was opened under.
	Name() string

	// Size returns the object's size in bytes, or -1 when unknown.
	Size() int64
}

// BlobBacked marks values whose content lives in a remote blob store.
//
// It is the explicit capability check for save and serve paths that only
// accept already-committed blobs: a file-like value either carries a Ref or
// it does not.
type BlobBacked interface {
	BlobRef() Ref
}

// Backend is the uniform interface over object stores.
//
// Backends must be safe for concurrent use from independent requests; the
// backing store is the authority for concurrent-write safety. Operations
// that touch the network honor ctx for cancellation.
type Backend interface {
	// Normalize converts a name to the backend's canonical form.
	// It is idempotent: Normalize(Normalize(x)) == Normalize(x).
	Normalize(name string) string

	// Open resolves name and returns a readable handle.
	// It returns ErrNotFound if no such object exists and ErrUnsupported
	// for write modes the backend does not implement.
	Open(ctx context.Context, name string, mode Mode) (File, error)

	// Save persists content and returns the canonical name under which the
	// object can later be re-resolved. Canonical names are stable and safe
	// to persist as the sole handle to the object.
	Save(ctx context.Context, name string, content io.Reader) (string, error)

	// Delete removes the object. Whether deleting a missing object is an
	// error or a no-op is a per-backend policy documented on the
	// implementation.
	Delete(ctx context.Context, name string) error

	// Exists reports whether name resolves to a stored object. It returns
	// false rather than an error for well-formed names that are absent.
	Exists(ctx context.Context, name string) (bool, error)

	// Size returns the object's byte count, or ErrNotFound if absent.
	Size(ctx context.Context, name string) (int64, error)

	// URL returns a client-facing address for the object, or
	// ErrUnsupported if the backend cannot serve it directly.
	URL(ctx context.Context, name string) (string, error)
}
