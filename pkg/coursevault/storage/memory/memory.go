package memory

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// Backend is an in-memory implementation of the coursevault.BlobStore
// interface, used by tests and local development.
type Backend struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// New creates a new in-memory storage backend
func New() coursevault.BlobStore {
	return &Backend{
		blobs: make(map[string][]byte),
	}
}

// Kind reports the reference kind this store serves
func (b *Backend) Kind() coursevault.RefKind {
	return coursevault.RefKindBlobstore
}

func (b *Backend) check(ref coursevault.BlobReference) error {
	if ref.Kind != coursevault.RefKindBlobstore {
		return fmt.Errorf("%w: not a blobstore reference", coursevault.ErrInvalidBlobRef)
	}
	return ref.Validate()
}

// Save reads the stream fully into memory under a generated id
func (b *Backend) Save(ctx context.Context, reader io.Reader, info coursevault.BlobInfo) (coursevault.BlobReference, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return coursevault.BlobReference{}, fmt.Errorf("failed to read stream: %w", err)
	}

	id := uuid.New().String()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[id] = data

	return coursevault.BlobstoreRef(id), nil
}

// Open returns a reader over the stored bytes
func (b *Backend) Open(ctx context.Context, ref coursevault.BlobReference) (io.ReadCloser, error) {
	if err := b.check(ref); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, exists := b.blobs[ref.ID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", coursevault.ErrBlobNotFound, ref.ID)
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the stored bytes
func (b *Backend) Delete(ctx context.Context, ref coursevault.BlobReference) error {
	if err := b.check(ref); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.blobs[ref.ID]; !exists {
		return fmt.Errorf("%w: %s", coursevault.ErrBlobNotFound, ref.ID)
	}

	delete(b.blobs, ref.ID)
	return nil
}
