package oci

import (
	"context"
	"testing"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelfs/blobstore"
)

const testDigest = "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

func TestNewValidatesReference(t *testing.T) {
	_, err := New("")
	assert.ErrorIs(t, err, blobstore.ErrMisconfigured)

	_, err = New("not a valid reference!!")
	assert.ErrorIs(t, err, blobstore.ErrMisconfigured)
}

func TestResolveRejectsNonDigestKeys(t *testing.T) {
	r, err := New("registry.example.com/media/blobs")
	require.NoError(t, err)

	// Invalid keys report not-found without a network round trip.
	_, err = r.Resolve(context.Background(), "latest")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestBlobURL(t *testing.T) {
	tests := []struct {
		name      string
		repoRef   string
		plainHTTP bool
		want      string
	}{
		{
			name:    "https",
			repoRef: "registry.example.com/media/blobs",
			want:    "https://registry.example.com/v2/media/blobs/blobs/" + testDigest,
		},
		{
			name:      "plain http with port",
			repoRef:   "localhost:5000/media",
			plainHTTP: true,
			want:      "http://localhost:5000/v2/media/blobs/" + testDigest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{}
			if tt.plainHTTP {
				opts = append(opts, WithPlainHTTP())
			}
			r, err := New(tt.repoRef, opts...)
			require.NoError(t, err)

			got, err := r.BlobURL(testDigest)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRefFromDescriptor(t *testing.T) {
	ref := refFromDescriptor(testDigest, ocispec.Descriptor{
		MediaType: "application/octet-stream",
		Size:      42,
	})
	assert.Equal(t, blobstore.Ref{
		Key:         testDigest,
		Size:        42,
		ContentType: "application/octet-stream",
	}, ref)
}
