// Package s3 implements a mutable object store on S3-compatible services
// via the MinIO client.
//
// Save streams content directly to the service; S3 PUTs are atomic, so
// readers never observe a partially written object. Size and existence
// come from object stat calls, never from reading content.
package s3

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/parcelfs/blobstore"
)

// DefaultURLExpiry is how long presigned URLs stay valid when the config
// does not say otherwise.
const DefaultURLExpiry = 15 * time.Minute

// Config holds the store's required configuration.
type Config struct {
	// Endpoint is the service host[:port], without scheme. Required.
	Endpoint string

	// Bucket holds all objects. Required.
	Bucket string

	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool

	// PathStyle forces path-style bucket addressing (MinIO and most
	// self-hosted gateways need it).
	PathStyle bool

	// URLExpiry bounds the validity of presigned URLs returned by URL.
	// Defaults to DefaultURLExpiry.
	URLExpiry time.Duration
}

// Store is an S3-backed mutable object store.
//
// Delete on a missing object is an idempotent no-op, matching S3
// semantics.
type Store struct {
	cfg    Config
	client *minio.Client
	logger *slog.Logger
}

var _ blobstore.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClient supplies a pre-built MinIO client, for custom transports or
// tests.
func WithClient(c *minio.Client) Option {
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
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: endpoint is required", blobstore.ErrMisconfigured)
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("%w: bucket name is required", blobstore.ErrMisconfigured)
	}
	if cfg.URLExpiry <= 0 {
		cfg.URLExpiry = DefaultURLExpiry
	}

	s := &Store{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}

	if s.client == nil {
		mopts := &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
			Secure: cfg.UseSSL,
			Region: cfg.Region,
		}
		if cfg.PathStyle {
			mopts.BucketLookup = minio.BucketLookupPath
		}
		client, err := minio.New(cfg.Endpoint, mopts)
		if err != nil {
			return nil, fmt.Errorf("%w: create s3 client: %v", blobstore.ErrMisconfigured, err)
		}
		s.client = client
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

// Open implements blobstore.Backend.
func (s *Store) Open(ctx context.Context, name string, mode blobstore.Mode) (blobstore.File, error) {
	if mode != blobstore.ModeRead {
		return nil, fmt.Errorf("%w: objects are written through Save only", blobstore.ErrUnsupported)
	}

	name = s.Normalize(name)

	// Stat first so a missing object fails at open, not at first read.
	info, err := s.client.StatObject(ctx, s.cfg.Bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, name)
	}

	obj, err := s.client.GetObject(ctx, s.cfg.Bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, name)
	}

	return &objectFile{Object: obj, name: name, size: info.Size}, nil
}

// Save implements blobstore.Backend.
//
// Content is streamed to the service in one PUT; the object becomes
// visible only when the upload completes. An aborted upload is discarded
// by the service.
func (s *Store) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	name = s.Normalize(name)

	info, err := s.client.PutObject(ctx, s.cfg.Bucket, name, content, -1, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}

	s.log().Debug("saved object", "bucket", s.cfg.Bucket, "name", name, "size", info.Size)
	return name, nil
}

// Delete implements blobstore.Backend. Deleting a missing object is a
// no-op.
func (s *Store) Delete(ctx context.Context, name string) error {
	name = s.Normalize(name)
	if err := s.client.RemoveObject(ctx, s.cfg.Bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Exists implements blobstore.Backend.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.cfg.Bucket, s.Normalize(name), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// Size implements blobstore.Backend. Size comes from an object stat call,
// never from reading content.
func (s *Store) Size(ctx context.Context, name string) (int64, error) {
	name = s.Normalize(name)
	info, err := s.client.StatObject(ctx, s.cfg.Bucket, name, minio.StatObjectOptions{})
	if err != nil {
		return 0, mapError(err, name)
	}
	return info.Size, nil
}

// URL implements blobstore.Backend. It returns a presigned GET address
// valid for the configured expiry.
func (s *Store) URL(ctx context.Context, name string) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.cfg.Bucket, s.Normalize(name), s.cfg.URLExpiry, nil)
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return u.String(), nil
}

// isNotFound reports whether err is the service's missing-object response.
func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket"
}

// mapError converts SDK errors to the backend taxonomy.
func mapError(err error, name string) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %q", blobstore.ErrNotFound, name)
	}
	return err
}

// objectFile is a readable handle to a stored object. The underlying
// stream is lazy; reads pull bytes from the service in block-sized
// requests.
type objectFile struct {
	*minio.Object
	name string
	size int64
}

func (f *objectFile) Name() string { return f.name }

func (f *objectFile) Size() int64 { return f.size }

var _ blobstore.File = (*objectFile)(nil)
