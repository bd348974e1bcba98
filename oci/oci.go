// Package oci resolves committed blobs out of an OCI registry repository.
//
// Blob keys are content digests. Objects are pushed to the registry by an
// out-of-band uploader; this resolver only resolves, reads, and deletes
// them, which is exactly the contract of the immutable store variant.
package oci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/opencontainers/go-digest"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2/errdef"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/errcode"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/parcelfs/blobstore"
	"github.com/parcelfs/blobstore/immutable"
)

// Resolver resolves blob keys against one registry repository.
type Resolver struct {
	repo      *remote.Repository
	plainHTTP bool
	username  string
	password  string
	logger    *slog.Logger
}

// Capability checks: Resolver also mints direct blob URLs.
var (
	_ immutable.Resolver    = (*Resolver)(nil)
	_ immutable.URLResolver = (*Resolver)(nil)
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithPlainHTTP uses HTTP instead of HTTPS, for local registries.
func WithPlainHTTP() Option {
	return func(r *Resolver) {
		r.plainHTTP = true
	}
}

// WithStaticCredentials sets username/password credentials for the
// repository's registry.
func WithStaticCredentials(username, password string) Option {
	return func(r *Resolver) {
		r.username = username
		r.password = password
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a resolver for the repository named by repoRef, e.g.
// "registry.example.com/media/blobs".
func New(repoRef string, opts ...Option) (*Resolver, error) {
	if repoRef == "" {
		return nil, fmt.Errorf("%w: repository reference is required", blobstore.ErrMisconfigured)
	}

	repo, err := remote.NewRepository(repoRef)
	if err != nil {
		return nil, fmt.Errorf("%w: parse repository %q: %v", blobstore.ErrMisconfigured, repoRef, err)
	}

	r := &Resolver{repo: repo}
	for _, opt := range opts {
		opt(r)
	}

	repo.PlainHTTP = r.plainHTTP
	repo.Client = &auth.Client{
		Client: retry.DefaultClient,
		Cache:  auth.NewCache(),
		Credential: func(_ context.Context, _ string) (auth.Credential, error) {
			if r.username == "" && r.password == "" {
				return auth.EmptyCredential, nil
			}
			return auth.Credential{Username: r.username, Password: r.password}, nil
		},
	}

	return r, nil
}

func (r *Resolver) log() *slog.Logger {
	if r.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.logger
}

// Resolve implements immutable.Resolver. The key must be a blob digest;
// anything else cannot name a committed blob and reports not-found.
func (r *Resolver) Resolve(ctx context.Context, key string) (blobstore.Ref, error) {
	if _, err := digest.Parse(key); err != nil {
		return blobstore.Ref{}, fmt.Errorf("%w: %q is not a blob digest", blobstore.ErrNotFound, key)
	}

	desc, err := r.repo.Blobs().Resolve(ctx, key)
	if err != nil {
		return blobstore.Ref{}, mapError(err, key)
	}

	r.log().Debug("resolved blob", "key", key, "size", desc.Size)
	return refFromDescriptor(key, desc), nil
}

// Open implements immutable.Resolver. The returned reader streams the blob
// from the registry starting at offset zero.
func (r *Resolver) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	desc, err := r.repo.Blobs().Resolve(ctx, key)
	if err != nil {
		return nil, mapError(err, key)
	}

	rc, err := r.repo.Blobs().Fetch(ctx, desc)
	if err != nil {
		return nil, mapError(err, key)
	}
	return rc, nil
}

// Delete implements immutable.Resolver.
func (r *Resolver) Delete(ctx context.Context, key string) error {
	desc, err := r.repo.Blobs().Resolve(ctx, key)
	if err != nil {
		return mapError(err, key)
	}
	if err := r.repo.Blobs().Delete(ctx, desc); err != nil {
		return mapError(err, key)
	}
	return nil
}

// BlobURL implements immutable.URLResolver with the registry's direct
// blob endpoint: <scheme>://<host>/v2/<repository>/blobs/<digest>.
func (r *Resolver) BlobURL(key string) (string, error) {
	scheme := "https"
	if r.plainHTTP {
		scheme = "http"
	}
	ref := r.repo.Reference
	return fmt.Sprintf("%s://%s/v2/%s/blobs/%s", scheme, ref.Host(), ref.Repository, key), nil
}

// refFromDescriptor builds a blob reference from a registry descriptor.
func refFromDescriptor(key string, desc ocispec.Descriptor) blobstore.Ref {
	return blobstore.Ref{
		Key:         key,
		Size:        desc.Size,
		ContentType: desc.MediaType,
	}
}

// mapError converts ORAS errors to the backend taxonomy.
func mapError(err error, key string) error {
	if errors.Is(err, errdef.ErrNotFound) {
		return fmt.Errorf("%w: %q", blobstore.ErrNotFound, key)
	}
	var errResp *errcode.ErrorResponse
	if errors.As(err, &errResp) && errResp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %q", blobstore.ErrNotFound, key)
	}
	return err
}
