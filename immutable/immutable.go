// Package immutable implements the blob-backed storage variant.
//
// Objects in an immutable store are committed to a remote blob service out
// of band; the local process is only ever handed already-committed
// references. Save therefore accepts blob-backed content only, and the
// store never holds a full object's bytes in memory.
package immutable

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/parcelfs/blobstore"
)

// Resolver is the interface to the remote blob service holding committed
// objects. Implementations exist for OCI registries and for an in-memory
// service used in development and tests.
type Resolver interface {
	// Resolve returns the reference for a committed blob key.
	// It returns blobstore.ErrNotFound for unknown keys.
	Resolve(ctx context.Context, key string) (blobstore.Ref, error)

	// Open returns a fresh reader positioned at the start of the blob.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. It returns blobstore.ErrNotFound for
	// unknown keys.
	Delete(ctx context.Context, key string) error
}

// URLResolver is implemented by resolvers that can mint direct client-facing
// blob addresses.
type URLResolver interface {
	BlobURL(key string) (string, error)
}

// UploadResolver is implemented by resolvers that can mint one-shot upload
// addresses for streaming blobs directly into the remote service.
type UploadResolver interface {
	UploadURL(ctx context.Context, returnTo string) (string, error)
}

// Store is the immutable blob store backend.
//
// Canonical names have the form "<key>/<path>": the blob key followed by
// the normalized original name. Delete on a missing key is an idempotent
// no-op.
type Store struct {
	resolver Resolver
	logger   *slog.Logger
}

// Interface compliance.
var _ blobstore.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates an immutable store backed by the given resolver.
func New(resolver Resolver, opts ...Option) (*Store, error) {
	if resolver == nil {
		return nil, fmt.Errorf("%w: resolver is required", blobstore.ErrMisconfigured)
	}
	s := &Store{resolver: resolver}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Normalize implements blobstore.Backend.
func (s *Store) Normalize(name string) string {
	return blobstore.NormalizeName(name)
}

// key extracts the blob key from a canonical name.
func (s *Store) key(name string) string {
	key, _ := blobstore.SplitKey(s.Normalize(name))
	return key
}

// Open implements blobstore.Backend.
//
// Write modes return ErrUnsupported: blobs cannot be opened for writing,
// only saved whole through the upload channel.
func (s *Store) Open(ctx context.Context, name string, mode blobstore.Mode) (blobstore.File, error) {
	if mode != blobstore.ModeRead {
		return nil, fmt.Errorf("%w: immutable blobs cannot be opened for writing", blobstore.ErrUnsupported)
	}

	name = s.Normalize(name)
	ref, err := s.resolver.Resolve(ctx, s.key(name))
	if err != nil {
		return nil, err
	}

	s.log().Debug("opened blob", "name", name, "key", ref.Key, "size", ref.Size)
	return &blobFile{
		ctx:      ctx,
		name:     name,
		ref:      ref,
		resolver: s.resolver,
	}, nil
}

// Save implements blobstore.Backend.
//
// Content must carry a blob reference obtained from the upload channel;
// the store cannot accept raw bytes itself. The returned canonical name is
// "<key>/<name>".
func (s *Store) Save(_ context.Context, name string, content io.Reader) (string, error) {
	name = s.Normalize(name)

	bb, ok := content.(blobstore.BlobBacked)
	if !ok {
		return "", fmt.Errorf("%w: direct uploads are not accepted, content must reference a committed blob", blobstore.ErrUnsupported)
	}

	ref := bb.BlobRef()
	if ref.Key == "" {
		return "", fmt.Errorf("%w: content carries an empty blob key", blobstore.ErrInvalidSource)
	}

	canonical := blobstore.JoinKey(ref.Key, strings.TrimLeft(name, "/"))
	s.log().Debug("saved blob reference", "name", canonical, "key", ref.Key)
	return canonical, nil
}

// Delete implements blobstore.Backend. Deleting a missing object is a
// no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	err := s.resolver.Delete(ctx, s.key(name))
	if errors.Is(err, blobstore.ErrNotFound) {
		return nil
	}
	return err
}

// Exists implements blobstore.Backend.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.resolver.Resolve(ctx, s.key(name))
	switch {
	case errors.Is(err, blobstore.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// Size implements blobstore.Backend.
func (s *Store) Size(ctx context.Context, name string) (int64, error) {
	ref, err := s.resolver.Resolve(ctx, s.key(name))
	if err != nil {
		return 0, err
	}
	return ref.Size, nil
}

// URL implements blobstore.Backend. It delegates to the resolver when the
// resolver can mint direct blob addresses.
func (s *Store) URL(_ context.Context, name string) (string, error) {
	ur, ok := s.resolver.(URLResolver)
	if !ok {
		return "", fmt.Errorf("%w: resolver does not serve direct URLs", blobstore.ErrUnsupported)
	}
	return ur.BlobURL(s.key(name))
}

// UploadURL mints an address for streaming a new blob directly into the
// remote service, bypassing this process. The blob's key is assigned by the
// service at commit time and surfaced through the upload interceptor.
func (s *Store) UploadURL(ctx context.Context, returnTo string) (string, error) {
	ur, ok := s.resolver.(UploadResolver)
	if !ok {
		return "", fmt.Errorf("%w: resolver does not mint upload URLs", blobstore.ErrUnsupported)
	}
	return ur.UploadURL(ctx, returnTo)
}

// Resolver returns the resolver backing this store.
func (s *Store) Resolver() Resolver {
	return s.resolver
}
