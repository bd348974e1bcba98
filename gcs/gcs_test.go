package gcs

import (
	"context"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelfs/blobstore"
)

func newTestStore(t *testing.T, cfg Config) *Store {
	t.Helper()

	// An unused client is enough for the non-network paths under test.
	s, err := New(context.Background(), cfg, WithClient(&storage.Client{}))
	require.NoError(t, err)
	return s
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New(context.Background(), Config{})
	assert.ErrorIs(t, err, blobstore.ErrMisconfigured)
}

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		obj  string
		want string
	}{
		{
			name: "default endpoint",
			cfg:  Config{Bucket: "media"},
			obj:  "uploads/a.txt",
			want: "https://storage.googleapis.com/media/uploads/a.txt",
		},
		{
			name: "with prefix",
			cfg:  Config{Bucket: "media", Prefix: "prod"},
			obj:  "a.txt",
			want: "https://storage.googleapis.com/media/prod/a.txt",
		},
		{
			name: "custom base url",
			cfg:  Config{Bucket: "media", BaseURL: "https://cdn.example.com/"},
			obj:  "/a.txt",
			want: "https://cdn.example.com/a.txt",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, tt.cfg)
			got, err := s.URL(context.Background(), tt.obj)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOpenWriteUnsupported(t *testing.T) {
	s := newTestStore(t, Config{Bucket: "media"})

	_, err := s.Open(context.Background(), "a.txt", blobstore.ModeWrite)
	assert.ErrorIs(t, err, blobstore.ErrUnsupported)
}

func TestNormalizeIdempotent(t *testing.T) {
	s := newTestStore(t, Config{Bucket: "media"})

	for _, name := range []string{`a\b.txt`, "/a/b.txt", "a//b.txt"} {
		once := s.Normalize(name)
		assert.Equal(t, once, s.Normalize(once))
	}
}
