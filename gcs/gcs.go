// Package gcs implements a mutable object store on Google Cloud Storage.
//
// Save streams content into an object writer and finalizes on Close, so
// readers never observe a partially written object; an aborted save is
// never committed. Size and existence come from object attributes, never
// from reading content.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/parcelfs/blobstore"
)

// Config holds the store's required configuration.
type Config struct {
	// Bucket is the GCS bucket holding all objects. Required.
	Bucket string

	// Prefix is an optional object-name prefix, letting several stores
	// share one bucket.
	Prefix string

	// BaseURL overrides the public address prefix used by URL. When
	// empty, the canonical public storage endpoint for the bucket is
	// used.
	BaseURL string
}

// Store is a GCS-backed mutable object store.
//
// Delete on a missing object returns blobstore.ErrNotFound, matching the
// service's report.
type Store struct {
	cfg    Config
	bucket *storage.BucketHandle
	client *storage.Client
	logger *slog.Logger
}

var _ blobstore.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClient supplies a pre-built storage client, for custom credentials
// or tests. When absent, New builds one with default credentials.
func WithClient(c *storage.Client) Option {
	return func(s *Store) {
		s.client = c
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a store over the configured bucket.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required", blobstore.ErrMisconfigured)
	}

	s := &Store{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: create storage client: %v", blobstore.ErrMisconfigured, err)
		}
		s.client = client
	}
	s.bucket = s.client.Bucket(cfg.Bucket)
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

// object resolves name to its handle within the bucket.
func (s *Store) object(name string) *storage.ObjectHandle {
	p := s.Normalize(name)
	if s.cfg.Prefix != "" {
		p = path.Join(s.cfg.Prefix, p)
	}
	return s.bucket.Object(p)
}

// Open implements blobstore.Backend.
func (s *Store) Open(ctx context.Context, name string, mode blobstore.Mode) (blobstore.File, error) {
	if mode != blobstore.ModeRead {
		return nil, fmt.Errorf("%w: objects are written through Save only", blobstore.ErrUnsupported)
	}

	r, err := s.object(name).NewReader(ctx)
	if err != nil {
		return nil, mapError(err, name)
	}

	return &objectFile{
		ReadCloser: r,
		name:       s.Normalize(name),
		size:       r.Attrs.Size,
	}, nil
}

// Save implements blobstore.Backend.
//
// The object becomes visible only when the writer's Close commits it. On a
// failed or canceled copy the write is abandoned and nothing is committed.
func (s *Store) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := s.object(name).NewWriter(ctx)
	if _, err := io.Copy(w, content); err != nil {
		cancel() // abandon the upload, never finalize
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finalize object: %w", err)
	}

	canonical := s.Normalize(name)
	s.log().Debug("saved object", "bucket", s.cfg.Bucket, "name", canonical)
	return canonical, nil
}

// Delete implements blobstore.Backend. Deleting a missing object returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.object(name).Delete(ctx); err != nil {
		return mapError(err, name)
	}
	return nil
}

// Exists implements blobstore.Backend.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.object(name).Attrs(ctx)
	switch {
	case errors.Is(err, storage.ErrObjectNotExist):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// Size implements blobstore.Backend. Size comes from object attributes,
// never from reading content.
func (s *Store) Size(ctx context.Context, name string) (int64, error) {
	attrs, err := s.object(name).Attrs(ctx)
	if err != nil {
		return 0, mapError(err, name)
	}
	return attrs.Size, nil
}

// URL implements blobstore.Backend. Objects are publicly addressable under
// the configured BaseURL, or the bucket's canonical public endpoint.
func (s *Store) URL(_ context.Context, name string) (string, error) {
	p := s.Normalize(name)
	if s.cfg.Prefix != "" {
		p = path.Join(s.cfg.Prefix, p)
	}
	if s.cfg.BaseURL != "" {
		return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + p, nil
	}
	u := url.URL{
		Scheme: "https",
		Host:   "storage.googleapis.com",
		Path:   "/" + s.cfg.Bucket + "/" + p,
	}
	return u.String(), nil
}

// mapError converts SDK errors to the backend taxonomy.
func mapError(err error, name string) error {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("%w: %q", blobstore.ErrNotFound, name)
	}
	return err
}

// objectFile is a readable handle to a stored object.
type objectFile struct {
	io.ReadCloser
	name string
	size int64
}

func (f *objectFile) Name() string { return f.name }

func (f *objectFile) Size() int64 { return f.size }
