package blobstore

import "errors"

// Sentinel errors for backend operations.
var (
	// ErrNotFound is returned when a name or blob key does not resolve to a
	// stored object.
	ErrNotFound = errors.New("blobstore: not found")

	// ErrUnsupported is returned when an operation is meaningless for the
	// backend variant, such as writing raw bytes to an immutable store or
	// requesting a direct URL from a backend that cannot provide one.
	ErrUnsupported = errors.New("blobstore: unsupported operation")

	// ErrInvalidSource is returned when a caller passes content that is not
	// a recognized blob-backed file where one was required.
	ErrInvalidSource = errors.New("blobstore: invalid source")

	// ErrMisconfigured is returned by backend constructors when required
	// configuration is absent. It is never returned at call time.
	ErrMisconfigured = errors.New("blobstore: misconfigured backend")

	// ErrClosed is returned when reading from a file handle after Close.
	ErrClosed = errors.New("blobstore: file already closed")
)
