//go:build integration

package integration

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/parcelfs/blobstore/s3"
)

const (
	minioUser     = "blobstore"
	minioPassword = "blobstore-secret"
)

// --- MinIO Container Setup ---

var (
	minioOnce sync.Once
	minioAddr string
	minioErr  error
)

// getMinio returns the shared MinIO endpoint, starting the container if needed.
// The container is shared across all tests for performance.
func getMinio(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	minioOnce.Do(func() {
		ctx := context.Background()
		minioAddr, minioErr = startMinioContainer(ctx)
	})

	if minioErr != nil {
		tb.Fatalf("start minio container: %v", minioErr)
	}

	return minioAddr
}

// startMinioContainer starts a MinIO container and returns the host:port endpoint.
func startMinioContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "minio/minio:latest",
		ExposedPorts: []string{"9000/tcp"},
		Env: map[string]string{
			"MINIO_ROOT_USER":     minioUser,
			"MINIO_ROOT_PASSWORD": minioPassword,
		},
		Cmd:        []string{"server", "/data"},
		WaitingFor: wait.ForHTTP("/minio/health/live").WithPort("9000/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start minio container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve minio host: %w", err)
	}

	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve minio port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

// --- Registry Container Setup ---

var (
	registryOnce sync.Once
	registryAddr string
	registryErr  error
)

// getRegistry returns the shared registry address, starting the container if needed.
func getRegistry(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("SKIP_DOCKER_TESTS") == "1" {
		tb.Skip("SKIP_DOCKER_TESTS is set")
	}

	registryOnce.Do(func() {
		ctx := context.Background()
		registryAddr, registryErr = startRegistryContainer(ctx)
	})

	if registryErr != nil {
		tb.Fatalf("start registry container: %v", registryErr)
	}

	return registryAddr
}

// startRegistryContainer starts a registry:2 container and returns the host:port address.
func startRegistryContainer(ctx context.Context) (string, error) {
	req := testcontainers.ContainerRequest{
		Image:        "registry:2",
		ExposedPorts: []string{"5000/tcp"},
		WaitingFor:   wait.ForHTTP("/v2/").WithPort("5000/tcp").WithStatusCodeMatcher(isOKStatus),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start registry container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve registry host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5000/tcp")
	if err != nil {
		return "", fmt.Errorf("resolve registry port: %w", err)
	}

	return fmt.Sprintf("%s:%s", host, port.Port()), nil
}

func isOKStatus(status int) bool {
	return status >= 200 && status < 300
}

// --- Store Factories ---

// newS3Store creates an s3 store backed by the shared MinIO container, with
// a fresh bucket per test to avoid collisions.
func newS3Store(tb testing.TB, bucket string) *s3.Store {
	tb.Helper()

	endpoint := getMinio(tb)
	ctx := context.Background()

	admin, err := minio.New(endpoint, &minio.Options{
		Creds: credentials.NewStaticV4(minioUser, minioPassword, ""),
	})
	require.NoError(tb, err, "create minio admin client")
	require.NoError(tb, admin.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}), "create bucket")

	store, err := s3.New(s3.Config{
		Endpoint:  endpoint,
		Bucket:    bucket,
		AccessKey: minioUser,
		SecretKey: minioPassword,
		PathStyle: true,
	})
	require.NoError(tb, err, "create s3 store")

	return store
}

// --- Test Data Helpers ---

// makeRandomContent creates random binary content.
func makeRandomContent(size int) []byte {
	data := make([]byte, size)
	_, _ = rand.Read(data)
	return data
}
