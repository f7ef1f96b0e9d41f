package memory_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
	"github.com/edupage-labs/coursevault/pkg/coursevault/storage/memory"
)

func TestMemoryBackend(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	content := "Hello, World!"

	ref, err := backend.Save(ctx, strings.NewReader(content), coursevault.BlobInfo{
		FileName: "notes.txt",
		Size:     int64(len(content)),
	})
	require.NoError(t, err)
	assert.Equal(t, coursevault.RefKindBlobstore, ref.Kind)
	assert.NotEmpty(t, ref.ID)
	assert.Empty(t, ref.Path)

	reader, err := backend.Open(ctx, ref)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, content, string(data))

	err = backend.Delete(ctx, ref)
	assert.NoError(t, err)

	_, err = backend.Open(ctx, ref)
	assert.ErrorIs(t, err, coursevault.ErrBlobNotFound)
}

func TestMemoryBackendErrors(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	// Open a blob that was never saved
	_, err := backend.Open(ctx, coursevault.BlobstoreRef("never-saved"))
	assert.ErrorIs(t, err, coursevault.ErrBlobNotFound)

	// Delete a blob that was never saved
	err = backend.Delete(ctx, coursevault.BlobstoreRef("never-saved"))
	assert.ErrorIs(t, err, coursevault.ErrBlobNotFound)

	// A filesystem reference is not valid here
	_, err = backend.Open(ctx, coursevault.FilesystemRef("2024/notes.pdf"))
	assert.ErrorIs(t, err, coursevault.ErrInvalidBlobRef)
}

func TestMemoryBackendIsolation(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	ref1, err := backend.Save(ctx, strings.NewReader("first"), coursevault.BlobInfo{FileName: "a.txt"})
	require.NoError(t, err)
	ref2, err := backend.Save(ctx, strings.NewReader("second"), coursevault.BlobInfo{FileName: "a.txt"})
	require.NoError(t, err)

	assert.NotEqual(t, ref1.ID, ref2.ID)

	reader, err := backend.Open(ctx, ref1)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}
