// Package upload recognizes multipart uploads that were already streamed
// directly into a remote blob store.
//
// An [Interceptor] observes each part's headers and raw chunks ahead of
// generic multipart handling. When a part carries a pre-committed blob key
// it short-circuits: no bytes of that part are buffered or forwarded, and
// Complete produces a [File] wrapping the committed blob. Parts without a
// key pass through untouched.
package upload

import (
	"mime"
	"net/textproto"

	"github.com/parcelfs/blobstore/immutable"
)

// KeyParam is the part Content-Type parameter naming a pre-committed blob
// key. Its presence is the sole short-circuit trigger.
const KeyParam = "blob-key"

// State is the interceptor's position in its part-handling state machine.
type State int

const (
	// StateWatching is the initial state, before any part metadata has
	// been inspected.
	StateWatching State = iota

	// StatePassthrough means no pre-committed blob was detected; all
	// chunks are forwarded unchanged to generic handling.
	StatePassthrough

	// StateShortCircuited means a pre-committed blob key was found; the
	// part's bytes already live in the remote store and are dropped here.
	StateShortCircuited
)

// String returns the state name for logging.
func (s State) String() string {
	switch s {
	case StateWatching:
		return "watching"
	case StatePassthrough:
		return "passthrough"
	case StateShortCircuited:
		return "short-circuited"
	default:
		return "unknown"
	}
}

// Interceptor consumes raw upload chunks before generic form parsing.
//
// One Interceptor handles one upload request. It is not safe for
// concurrent use; uploads are processed sequentially per request.
type Interceptor struct {
	resolver immutable.Resolver

	state    State
	key      string
	filename string
}

// NewInterceptor creates an interceptor that resolves short-circuited
// blobs through the given resolver.
func NewInterceptor(resolver immutable.Resolver) *Interceptor {
	return &Interceptor{resolver: resolver}
}

// State returns the interceptor's current state.
func (in *Interceptor) State() State {
	return in.state
}

// NewPart inspects a part's headers and decides how its chunks are handled.
//
// It returns true when the part references a pre-committed blob, signaling
// that all further handlers for this request should stop: the object is
// already in the remote store and nothing needs to be buffered locally.
func (in *Interceptor) NewPart(header textproto.MIMEHeader) (stop bool) {
	in.state = StatePassthrough

	if ct := header.Get("Content-Type"); ct != "" {
		if _, params, err := mime.ParseMediaType(ct); err == nil {
			if key := params[KeyParam]; key != "" {
				in.state = StateShortCircuited
				in.key = key
			}
		}
	}
	if in.state != StateShortCircuited {
		return false
	}

	if cd := header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			in.filename = params["filename"]
		}
	}
	return true
}

// Chunk handles one raw data chunk of the current part. Short-circuited
// parts yield nil (the bytes are already committed remotely); otherwise
// the chunk is returned unchanged for generic handling.
func (in *Interceptor) Chunk(data []byte) []byte {
	if in.state == StateShortCircuited {
		return nil
	}
	return data
}

// Complete finishes the upload. When a part was short-circuited it returns
// the file object wrapping the committed blob; otherwise it returns
// (nil, false), deliberately deferring to generic handling.
//
// The blob key is not resolved here: resolution is lazy, and a key that
// does not exist surfaces as blobstore.ErrNotFound on first read.
func (in *Interceptor) Complete() (*File, bool) {
	if in.state != StateShortCircuited {
		return nil, false
	}
	return NewFile(in.resolver, in.key, WithFilename(in.filename)), true
}
