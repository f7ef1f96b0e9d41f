package coursevault

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface for the coursevault library
type Service interface {
	// Content operations
	UploadContent(ctx context.Context, req UploadContentRequest) (*ContentRecord, error)
	GetContent(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRecord, error)
	ResolveContent(ctx context.Context, id uuid.UUID) (*ContentRecord, error)
	ListContent(ctx context.Context, kind ContentKind, filter ContentFilter) ([]*ContentRecord, error)
	DeleteContent(ctx context.Context, kind ContentKind, id uuid.UUID) error

	// File retrieval operations
	OpenContentFile(ctx context.Context, id uuid.UUID) (*ContentRecord, io.ReadCloser, error)

	// People operations
	AddPerson(ctx context.Context, req AddPersonRequest) (*Person, error)
	BulkAddPeople(ctx context.Context, role Role, reqs []AddPersonRequest) (*BulkAddResult, error)
	Login(ctx context.Context, req LoginRequest) (*Person, error)
	GetPerson(ctx context.Context, role Role, id uuid.UUID) (*Person, error)
	ListPeople(ctx context.Context, role Role, filter PersonFilter) ([]*Person, error)
	DeletePerson(ctx context.Context, role Role, id uuid.UUID) error
	DeletePeople(ctx context.Context, role Role, filter PersonFilter) (int64, error)

	// Attendance operations
	MarkAttendance(ctx context.Context, entries []AttendanceEntry) (int, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) ([]*AttendanceRecord, error)
	ClearAttendance(ctx context.Context, filter AttendanceFilter) (int64, error)

	// SMS log operations
	LogSMS(ctx context.Context, req LogSMSRequest) (*SMSLog, error)
	ListSMSLogs(ctx context.Context, filter SMSFilter) ([]*SMSLog, error)

	// Statistics
	Stats(ctx context.Context) (*PortalStats, error)
}
