package coursevault

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// BlobStore defines the interface for blob storage backends
type BlobStore interface {
	// Kind reports which reference kind the store produces and serves.
	Kind() RefKind

	// Save persists the stream and returns a reference to the stored blob.
	// Implementations must not leave partial blobs behind on failure.
	Save(ctx context.Context, reader io.Reader, info BlobInfo) (BlobReference, error)

	// Open returns a reader over the blob bytes. A dangling reference yields
	// an error wrapping ErrBlobNotFound.
	Open(ctx context.Context, ref BlobReference) (io.ReadCloser, error)

	// Delete removes the blob. Deleting an already-absent blob returns an
	// error wrapping ErrBlobNotFound; callers treat that as a signal to log,
	// not as a failure.
	Delete(ctx context.Context, ref BlobReference) error
}

// BlobInfo describes an incoming file for a Save call
type BlobInfo struct {
	FileName string
	MimeType string
	Size     int64
}

// ContentRepository defines persistence for content records
type ContentRepository interface {
	CreateContent(ctx context.Context, record *ContentRecord) error
	GetContent(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRecord, error)
	ListContent(ctx context.Context, kind ContentKind, filter ContentFilter) ([]*ContentRecord, error)
	DeleteContent(ctx context.Context, kind ContentKind, id uuid.UUID) error
	CountContent(ctx context.Context, kind ContentKind) (int64, error)
}

// RecordStore defines persistence for people, attendance and SMS logs
type RecordStore interface {
	// People operations
	CreatePerson(ctx context.Context, person *Person) error
	GetPerson(ctx context.Context, role Role, id uuid.UUID) (*Person, error)
	GetPersonByUserID(ctx context.Context, role Role, userID string) (*Person, error)
	ListPeople(ctx context.Context, role Role, filter PersonFilter) ([]*Person, error)
	DeletePerson(ctx context.Context, role Role, id uuid.UUID) error
	// DeletePeople removes every person of the role matching the filter and
	// reports how many rows went away. No match is not an error.
	DeletePeople(ctx context.Context, role Role, filter PersonFilter) (int64, error)
	CountPeople(ctx context.Context, role Role) (int64, error)

	// Attendance operations
	CreateAttendance(ctx context.Context, record *AttendanceRecord) error
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]*AttendanceRecord, error)
	DeleteAttendance(ctx context.Context, filter AttendanceFilter) (int64, error)

	// SMS log operations
	CreateSMSLog(ctx context.Context, entry *SMSLog) error
	ListSMSLogs(ctx context.Context, filter SMSFilter) ([]*SMSLog, error)
}

// Repository combines content and portal record persistence. The bundled
// implementations (repo/memory, repo/postgres) provide the full surface.
type Repository interface {
	ContentRepository
	RecordStore
}
