package coursevault

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentKind is the domain type for content partitions.
type ContentKind string

// Content kind constants (typed).
const (
	ContentKindMaterial     ContentKind = "material"
	ContentKindQuestionBank ContentKind = "question_bank"
	ContentKindUpdate       ContentKind = "update"
)

// KindResolveOrder is the fixed order in which cross-kind lookups probe the
// partitions. First match wins.
var KindResolveOrder = []ContentKind{
	ContentKindMaterial,
	ContentKindQuestionBank,
	ContentKindUpdate,
}

// Valid reports whether k names a known content kind.
func (k ContentKind) Valid() bool {
	switch k {
	case ContentKindMaterial, ContentKindQuestionBank, ContentKindUpdate:
		return true
	}
	return false
}

// RefKind is the domain type for blob reference kinds.
type RefKind string

// Blob reference kind constants (typed).
const (
	RefKindFilesystem RefKind = "filesystem"
	RefKindBlobstore  RefKind = "blobstore"
)

// BlobReference locates the stored bytes behind a content record.
//
// A reference carries exactly one payload: Path for filesystem-backed blobs,
// ID for blobstore-backed blobs. Which field is meaningful is determined by
// Kind alone; the other field stays empty. Use FilesystemRef and BlobstoreRef
// to construct well-formed references.
type BlobReference struct {
	Kind RefKind `json:"kind"`
	Path string  `json:"path,omitempty"`
	ID   string  `json:"id,omitempty"`
}

// FilesystemRef builds a filesystem-backed blob reference.
func FilesystemRef(path string) BlobReference {
	return BlobReference{Kind: RefKindFilesystem, Path: path}
}

// BlobstoreRef builds a blobstore-backed blob reference.
func BlobstoreRef(id string) BlobReference {
	return BlobReference{Kind: RefKindBlobstore, ID: id}
}

// Validate checks that the reference carries exactly the payload its kind
// requires.
func (r BlobReference) Validate() error {
	switch r.Kind {
	case RefKindFilesystem:
		if r.Path == "" || r.ID != "" {
			return fmt.Errorf("%w: filesystem reference carries a path only", ErrInvalidBlobRef)
		}
	case RefKindBlobstore:
		if r.ID == "" || r.Path != "" {
			return fmt.Errorf("%w: blobstore reference carries an id only", ErrInvalidBlobRef)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidBlobRef, r.Kind)
	}
	return nil
}

// Value returns the payload the reference carries: the path for filesystem
// references, the id for blobstore references.
func (r BlobReference) Value() string {
	if r.Kind == RefKindFilesystem {
		return r.Path
	}
	return r.ID
}

func (r BlobReference) String() string {
	return string(r.Kind) + ":" + r.Value()
}

// ContentRecord represents an uploaded piece of portal content.
//
// Kind partitions records into materials, question banks and updates; all
// three share this schema. FileRef is nil when no file is attached, which is
// a legitimate state for metadata-only records.
type ContentRecord struct {
	ID          uuid.UUID      `json:"id"`
	Kind        ContentKind    `json:"kind"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Year        string         `json:"year,omitempty"`
	Department  string         `json:"department,omitempty"`
	CreatedBy   string         `json:"created_by,omitempty"`
	FileRef     *BlobReference `json:"file_ref,omitempty"`
	FileName    string         `json:"file_name,omitempty"`
	FileSize    int64          `json:"file_size,omitempty"`
	FileType    string         `json:"file_type,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// ContentFilter defines filtering options for listing content
type ContentFilter struct {
	Year       string
	Department string
}

// Role is the domain type for person partitions.
type Role string

// Role constants (typed).
const (
	RoleStudent Role = "student"
	RoleFaculty Role = "faculty"
	RoleAdmin   Role = "admin"
)

// Valid reports whether ro names a known role.
func (ro Role) Valid() bool {
	switch ro {
	case RoleStudent, RoleFaculty, RoleAdmin:
		return true
	}
	return false
}

// Person represents a registered portal user. Students, faculty and admins
// share this schema; Role selects the partition. UserID is the human-readable
// identifier (roll number, staff id) and is unique within a role.
type Person struct {
	ID         uuid.UUID `json:"id"`
	Role       Role      `json:"role"`
	UserID     string    `json:"user_id"`
	Password   string    `json:"-"`
	Name       string    `json:"name"`
	Year       string    `json:"year,omitempty"`
	Department string    `json:"department,omitempty"`
	Phone      string    `json:"phone,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// PersonFilter defines filtering options for listing people
type PersonFilter struct {
	Year       string
	Department string
}

// Attendance status constants
const (
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
)

// AttendanceRecord represents one student's attendance for one period.
type AttendanceRecord struct {
	ID         uuid.UUID `json:"id"`
	StudentID  string    `json:"student_id"`
	Date       string    `json:"date"`
	Period     string    `json:"period,omitempty"`
	Subject    string    `json:"subject,omitempty"`
	Status     string    `json:"status"`
	MarkedBy   string    `json:"marked_by,omitempty"`
	Year       string    `json:"year,omitempty"`
	Department string    `json:"department,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// AttendanceFilter defines filtering options for listing attendance. Either
// StudentID is set, or all of Year, Department, Date and Period are.
type AttendanceFilter struct {
	StudentID  string
	Year       string
	Department string
	Date       string
	Period     string
}

// SMSLog records one outbound notification for auditing.
type SMSLog struct {
	ID        uuid.UUID `json:"id"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	SentBy    string    `json:"sent_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SMSFilter defines filtering options for listing SMS logs
type SMSFilter struct {
	Recipient string
}

// BulkAddResult reports the outcome of a bulk person insert. Duplicates
// lists the user ids that were already present; those rows are skipped, not
// treated as failures.
type BulkAddResult struct {
	Added      int      `json:"added"`
	Duplicates []string `json:"duplicates"`
}

// PortalStats aggregates record counts across the portal.
type PortalStats struct {
	Materials     int64 `json:"materials"`
	QuestionBanks int64 `json:"question_banks"`
	Updates       int64 `json:"updates"`
	Students      int64 `json:"students"`
	Faculty       int64 `json:"faculty"`
	Admins        int64 `json:"admins"`
}
