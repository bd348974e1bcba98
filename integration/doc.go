//go:build integration

// Package integration provides integration tests for the storage backends.
//
// These tests require Docker and spin up real services (MinIO, an OCI
// registry) using testcontainers.
// Run with: go test -tags=integration ./integration/...
package integration
