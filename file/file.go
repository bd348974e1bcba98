// Package file implements a mutable object store on the local filesystem.
//
// It is intended for development and tests, and as the reference for
// mutable-store semantics: Save streams content to a temporary file and
// renames it into place, so readers never observe a partially written
// object.
package file

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/parcelfs/blobstore"
)

// Config holds the store's required configuration.
type Config struct {
	// Root is the directory holding all objects. Required.
	Root string

	// BaseURL, when set, enables URL: addresses are BaseURL + "/" + name.
	BaseURL string
}

// Store is a local-disk mutable object store.
//
// Delete on a missing object returns blobstore.ErrNotFound, matching the
// operating system's report.
type Store struct {
	cfg    Config
	logger *slog.Logger
}

var _ blobstore.Backend = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// New creates a store rooted at cfg.Root, creating the directory if needed.
func New(cfg Config, opts ...Option) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("%w: root directory is required", blobstore.ErrMisconfigured)
	}
	if err := os.MkdirAll(cfg.Root, 0o750); err != nil {
		return nil, fmt.Errorf("%w: create root %q: %v", blobstore.ErrMisconfigured, cfg.Root, err)
	}

	s := &Store{cfg: cfg}
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

// path resolves name to an absolute path under the store root, rejecting
// names that would escape it.
func (s *Store) path(name string) (string, error) {
	name = s.Normalize(name)
	if name == "" {
		return "", fmt.Errorf("%w: empty object name", blobstore.ErrInvalidSource)
	}
	for _, part := range strings.Split(name, "/") {
		if part == "." || part == ".." {
			return "", fmt.Errorf("%w: name %q escapes the store root", blobstore.ErrInvalidSource, name)
		}
	}
	return filepath.Join(s.cfg.Root, filepath.FromSlash(name)), nil
}

// Open implements blobstore.Backend.
func (s *Store) Open(_ context.Context, name string, mode blobstore.Mode) (blobstore.File, error) {
	if mode != blobstore.ModeRead {
		return nil, fmt.Errorf("%w: objects are written through Save only", blobstore.ErrUnsupported)
	}

	p, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", blobstore.ErrNotFound, name)
		}
		return nil, fmt.Errorf("open object: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat object: %w", err)
	}

	return &localFile{File: f, name: s.Normalize(name), size: info.Size()}, nil
}

// Save implements blobstore.Backend.
//
// Content is streamed to a temporary file in the target directory and
// renamed into place once fully written; the object only becomes visible
// after the rename. An aborted write leaves no object behind.
func (s *Store) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	p, err := s.path(name)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return "", fmt.Errorf("create object directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p), ".blobstore-*")
	if err != nil {
		return "", fmt.Errorf("create temp object: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, readerContext(ctx, content)); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize object: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("finalize object: %w", err)
	}

	canonical := s.Normalize(name)
	s.log().Debug("saved object", "name", canonical)
	return canonical, nil
}

// Delete implements blobstore.Backend. Deleting a missing object returns
// ErrNotFound.
func (s *Store) Delete(_ context.Context, name string) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %q", blobstore.ErrNotFound, name)
		}
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// Exists implements blobstore.Backend.
func (s *Store) Exists(_ context.Context, name string) (bool, error) {
	p, err := s.path(name)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat object: %w", err)
	}
	return true, nil
}

// Size implements blobstore.Backend. Size comes from the filesystem's
// metadata, never from reading the object.
func (s *Store) Size(_ context.Context, name string) (int64, error) {
	p, err := s.path(name)
	if err != nil {
		return 0, err
	}
	info, err := os.Stat(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, fmt.Errorf("%w: %q", blobstore.ErrNotFound, name)
		}
		return 0, fmt.Errorf("stat object: %w", err)
	}
	return info.Size(), nil
}

// URL implements blobstore.Backend. Local objects have no client-facing
// address unless a BaseURL is configured.
func (s *Store) URL(_ context.Context, name string) (string, error) {
	if s.cfg.BaseURL == "" {
		return "", fmt.Errorf("%w: no base URL configured", blobstore.ErrUnsupported)
	}
	return strings.TrimRight(s.cfg.BaseURL, "/") + "/" + s.Normalize(name), nil
}

// localFile is a readable handle to an on-disk object.
type localFile struct {
	*os.File
	name string
	size int64
}

func (f *localFile) Name() string { return f.name }

func (f *localFile) Size() int64 { return f.size }

// readerContext wraps r so that reads fail once ctx is canceled, keeping
// aborted saves from finalizing.
func readerContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
