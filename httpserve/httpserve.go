// Package httpserve serves stored blobs over HTTP by delegation.
//
// Responses are composed from headers only: a blob-identifier header tells
// the fronting store or proxy which object to stream, and an inbound Range
// header is forwarded verbatim so the store applies the byte slicing. No
// object bytes pass through this process, so serving is O(1) memory
// regardless of object size.
package httpserve

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/parcelfs/blobstore"
)

// Default header names understood by the fronting blob proxy. Deployments
// with a different proxy override them per call.
const (
	// KeyHeader carries the blob key of the object to stream.
	KeyHeader = "X-Blob-Key"

	// RangeHeader carries the client's Range header, forwarded verbatim.
	RangeHeader = "X-Blob-Range"
)

type config struct {
	contentType string
	downloadAs  string
	keyHeader   string
	rangeHeader string
}

// Option configures a single serve call.
type Option func(*config)

// WithContentType overrides the Content-Type of the response. Defaults to
// the blob's committed content type.
func WithContentType(ct string) Option {
	return func(c *config) {
		c.contentType = ct
	}
}

// WithDownloadName forces the response to download as an attachment under
// the given display name.
func WithDownloadName(name string) Option {
	return func(c *config) {
		c.downloadAs = name
	}
}

// WithKeyHeader overrides the blob-identifier header name.
func WithKeyHeader(name string) Option {
	return func(c *config) {
		c.keyHeader = name
	}
}

// WithRangeHeader overrides the header name under which the inbound Range
// header is forwarded.
func WithRangeHeader(name string) Option {
	return func(c *config) {
		c.rangeHeader = name
	}
}

// Blob composes the response headers for serving f by delegation and
// writes a 200 status. The actual byte transfer, including any range
// slicing, is performed by the remote store that recognizes the blob
// headers.
//
// f must be backed by a blob reference, directly or through one level of
// wrapping (a value with an Unwrap method); otherwise Blob returns
// blobstore.ErrInvalidSource and writes nothing.
func Blob(w http.ResponseWriter, r *http.Request, f any, opts ...Option) error {
	cfg := config{
		keyHeader:   KeyHeader,
		rangeHeader: RangeHeader,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	ref, ok := blobRefOf(f)
	if !ok {
		return fmt.Errorf("%w: file is not backed by a committed blob and cannot be served by delegation", blobstore.ErrInvalidSource)
	}

	h := w.Header()
	h.Set(cfg.keyHeader, ref.Key)
	h.Set("Accept-Ranges", "bytes")

	if rng := r.Header.Get("Range"); rng != "" {
		h.Set(cfg.rangeHeader, rng)
	}

	ct := cfg.contentType
	if ct == "" {
		ct = ref.ContentType
	}
	if ct != "" {
		h.Set("Content-Type", ct)
	}

	if cfg.downloadAs != "" {
		h.Set("Content-Disposition", "attachment; filename="+strconv.Quote(cfg.downloadAs))
	}

	if ref.Size >= 0 {
		h.Set("Content-Length", strconv.FormatInt(ref.Size, 10))
	}

	w.WriteHeader(http.StatusOK)
	return nil
}

// blobRefOf extracts the blob reference backing f, unwrapping one level of
// file wrapper if needed.
func blobRefOf(f any) (blobstore.Ref, bool) {
	if bb, ok := f.(blobstore.BlobBacked); ok {
		return bb.BlobRef(), true
	}
	if u, ok := f.(interface{ Unwrap() any }); ok {
		if bb, ok := u.Unwrap().(blobstore.BlobBacked); ok {
			return bb.BlobRef(), true
		}
	}
	return blobstore.Ref{}, false
}
