package upload

import (
	"context"
	"mime/multipart"

	"github.com/parcelfs/blobstore/immutable"
)

// FromPart inspects a single multipart part before its body is read.
//
// When the part references a pre-committed blob it returns the wrapping
// file and true; the part's body carries no payload in that case and must
// not be forwarded to generic handling. Otherwise it returns (nil, false)
// and the caller processes the part as usual.
func FromPart(ctx context.Context, resolver immutable.Resolver, part *multipart.Part) (*File, bool) {
	in := NewInterceptor(resolver)
	if !in.NewPart(part.Header) {
		return nil, false
	}

	f, ok := in.Complete()
	if !ok {
		return nil, false
	}
	f.ctx = ctx
	return f, true
}
