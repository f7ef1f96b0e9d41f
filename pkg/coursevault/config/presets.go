package config

import (
	"fmt"
	"os"
	"testing"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
	memoryrepo "github.com/edupage-labs/coursevault/pkg/coursevault/repo/memory"
	fsstorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/fs"
	memorystorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/memory"
)

// NewDevelopment creates a service configured for local development:
// in-memory records with filesystem uploads under ./dev-data. The returned
// cleanup removes the data directory.
func NewDevelopment() (coursevault.Service, func(), error) {
	const storageDir = "./dev-data"

	fsBackend, err := fsstorage.New(fsstorage.Config{BaseDir: storageDir})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
	}

	svc, err := coursevault.New(
		coursevault.WithRepository(memoryrepo.New()),
		coursevault.WithBlobStore(fsBackend),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	cleanup := func() {
		os.RemoveAll(storageDir)
	}

	return svc, cleanup, nil
}

// NewTesting creates a fully in-memory service for tests. Cleanup is
// automatic; in-memory backends are garbage collected with the test.
func NewTesting(t *testing.T) coursevault.Service {
	svc, err := coursevault.New(
		coursevault.WithRepository(memoryrepo.New()),
		coursevault.WithBlobStore(memorystorage.New()),
	)
	if err != nil {
		t.Fatalf("failed to create test service: %v", err)
	}
	return svc
}
