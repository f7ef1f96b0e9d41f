package coursevault

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
)

// DefaultMaxUploadBytes is the ceiling applied when no explicit limit is
// configured (50 MiB).
const DefaultMaxUploadBytes = 50 << 20

// Extensions the portal accepts. Matching is case-insensitive on the
// original file name, so "NOTES.PDF" passes and "archive.file.txt" matches
// on its final extension.
var allowedExtPattern = regexp.MustCompile(`(?i)\.(pdf|docx?|pptx?|xlsx?|txt|jpe?g|png|gif|mp4|mp3|zip|rar)$`)

// UploadPolicy gates incoming files before any bytes reach a blob store.
type UploadPolicy struct {
	MaxBytes int64
}

// DefaultUploadPolicy returns the policy applied when none is configured.
func DefaultUploadPolicy() *UploadPolicy {
	return &UploadPolicy{MaxBytes: DefaultMaxUploadBytes}
}

// Check validates a declared file name and size against the policy. A
// failure here is a client error; nothing has been persisted yet.
func (p *UploadPolicy) Check(fileName string, size int64) error {
	if fileName == "" {
		return ErrMissingFile
	}
	if !allowedExtPattern.MatchString(fileName) {
		return fmt.Errorf("%w: %q", ErrFileTypeNotAllowed, filepath.Ext(fileName))
	}
	if size > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes (limit %d)", ErrFileTooLarge, size, p.MaxBytes)
	}
	return nil
}

// CapReader wraps reader so that reads past MaxBytes fail with
// ErrFileTooLarge. Declared sizes come from the client; the cap holds even
// when the declaration lies.
func (p *UploadPolicy) CapReader(reader io.Reader) io.Reader {
	return &cappedReader{reader: reader, remaining: p.MaxBytes}
}

type cappedReader struct {
	reader    io.Reader
	remaining int64
}

func (c *cappedReader) Read(b []byte) (int, error) {
	if c.remaining < 0 {
		return 0, ErrFileTooLarge
	}
	n, err := c.reader.Read(b)
	c.remaining -= int64(n)
	if c.remaining < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
