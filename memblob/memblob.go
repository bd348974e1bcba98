// Package memblob provides an in-memory blob service.
//
// It implements immutable.Resolver and stands in for the remote upload
// channel in development and tests: Commit plays the role of an
// out-of-band direct upload, minting a content-digest key and returning
// the reference a real service would surface to the upload interceptor.
package memblob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/opencontainers/go-digest"

	"github.com/parcelfs/blobstore"
	"github.com/parcelfs/blobstore/immutable"
)

// Service is an in-memory blob service. It is safe for concurrent use.
type Service struct {
	mu    sync.RWMutex
	blobs map[string]*entry
}

// Capability checks.
var (
	_ immutable.Resolver       = (*Service)(nil)
	_ immutable.UploadResolver = (*Service)(nil)
)

type entry struct {
	ref  blobstore.Ref
	data []byte
}

// New creates an empty blob service.
func New() *Service {
	return &Service{blobs: make(map[string]*entry)}
}

// Commit stores data as a finalized blob and returns its reference.
//
// Keys are content digests, so committing identical bytes twice yields the
// same key. The reference is immutable once returned.
func (s *Service) Commit(filename, contentType string, data []byte) blobstore.Ref {
	key := digest.FromBytes(data).String()
	ref := blobstore.Ref{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: contentType,
		Filename:    filename,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = &entry{ref: ref, data: bytes.Clone(data)}
	return ref
}

// Resolve implements immutable.Resolver.
func (s *Service) Resolve(_ context.Context, key string) (blobstore.Ref, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.blobs[key]
	if !ok {
		return blobstore.Ref{}, fmt.Errorf("%w: blob %q", blobstore.ErrNotFound, key)
	}
	return e.ref, nil
}

// Open implements immutable.Resolver.
func (s *Service) Open(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.blobs[key]
	if !ok {
		return nil, fmt.Errorf("%w: blob %q", blobstore.ErrNotFound, key)
	}
	return io.NopCloser(bytes.NewReader(e.data)), nil
}

// Delete implements immutable.Resolver. It returns blobstore.ErrNotFound
// for unknown keys.
func (s *Service) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.blobs[key]; !ok {
		return fmt.Errorf("%w: blob %q", blobstore.ErrNotFound, key)
	}
	delete(s.blobs, key)
	return nil
}

// UploadURL implements immutable.UploadResolver with a synthetic address.
func (s *Service) UploadURL(_ context.Context, returnTo string) (string, error) {
	return "memblob://upload?return_to=" + url.QueryEscape(returnTo), nil
}

// Len returns the number of committed blobs.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
