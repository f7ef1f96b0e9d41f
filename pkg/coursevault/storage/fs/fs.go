package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// Backend is a filesystem implementation of the coursevault.BlobStore interface
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (coursevault.BlobStore, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	if err := os.MkdirAll(config.BaseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: config.BaseDir}, nil
}

// Kind reports the reference kind this store serves
func (b *Backend) Kind() coursevault.RefKind {
	return coursevault.RefKindFilesystem
}

// Save writes the stream to a generated file name under the base directory.
// The bytes land in a temp file first and are renamed into place after a
// successful sync, so a failed upload never leaves a readable partial file.
func (b *Backend) Save(ctx context.Context, reader io.Reader, info coursevault.BlobInfo) (coursevault.BlobReference, error) {
	storageName := generateStorageName(info.FileName)
	fullPath := filepath.Join(b.baseDir, storageName)
	tmpPath := fullPath + ".tmp"

	file, err := os.Create(tmpPath)
	if err != nil {
		return coursevault.BlobReference{}, fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return coursevault.BlobReference{}, fmt.Errorf("failed to write file: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpPath)
		return coursevault.BlobReference{}, fmt.Errorf("failed to sync file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tmpPath)
		return coursevault.BlobReference{}, fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return coursevault.BlobReference{}, fmt.Errorf("failed to rename file: %w", err)
	}

	return coursevault.FilesystemRef(storageName), nil
}

// Open opens the referenced file for reading
func (b *Backend) Open(ctx context.Context, ref coursevault.BlobReference) (io.ReadCloser, error) {
	fullPath, err := b.resolve(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", coursevault.ErrBlobNotFound, ref.Path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return file, nil
}

// Delete removes the referenced file. Deleting a file that is already gone
// returns ErrBlobNotFound so the caller can log the signal.
func (b *Backend) Delete(ctx context.Context, ref coursevault.BlobReference) error {
	fullPath, err := b.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", coursevault.ErrBlobNotFound, ref.Path)
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// resolve maps a reference to an absolute path under the base directory.
// References whose path would escape the base directory are rejected.
func (b *Backend) resolve(ref coursevault.BlobReference) (string, error) {
	if ref.Kind != coursevault.RefKindFilesystem {
		return "", fmt.Errorf("%w: not a filesystem reference", coursevault.ErrInvalidBlobRef)
	}
	if err := ref.Validate(); err != nil {
		return "", err
	}

	rel := filepath.Clean(ref.Path)
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: path escapes storage root", coursevault.ErrInvalidBlobRef)
	}

	return filepath.Join(b.baseDir, rel), nil
}

// generateStorageName builds the on-disk name for an upload.
// Format: {name}_{timestamp}_{uuid8}{ext}
// Example: notes_20260823150405_a1b2c3d4.pdf
func generateStorageName(originalFilename string) string {
	ext := filepath.Ext(originalFilename)
	name := sanitize(strings.TrimSuffix(originalFilename, ext))

	// Keep names short enough for any filesystem
	if len(name) > 50 {
		name = name[:50]
	}

	ts := time.Now().UTC().Format("20060102150405")
	uid := uuid.New().String()[:8]

	return fmt.Sprintf("%s_%s_%s%s", name, ts, uid, ext)
}

// sanitize keeps letters, digits, hyphen and underscore; everything else is
// dropped so the original name cannot smuggle path separators.
func sanitize(s string) string {
	var result strings.Builder
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "file"
	}
	return result.String()
}
