package coursevault

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrContentNotFound indicates a content record was not found in any
	// probed partition
	ErrContentNotFound = errors.New("content not found")

	// ErrNoFileAttached indicates a content record exists but carries no file
	ErrNoFileAttached = errors.New("content has no file attached")

	// ErrBlobNotFound indicates a blob reference points at bytes that are
	// no longer (or never were) present in the backend
	ErrBlobNotFound = errors.New("blob not found")

	// ErrInvalidBlobRef indicates a malformed blob reference
	ErrInvalidBlobRef = errors.New("invalid blob reference")

	// ErrBackendUnavailable indicates no store is mounted for a reference kind
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrMissingFile indicates an upload request arrived without a file
	ErrMissingFile = errors.New("no file provided")

	// ErrFileTypeNotAllowed indicates the file extension is outside the allow-list
	ErrFileTypeNotAllowed = errors.New("file type not allowed")

	// ErrFileTooLarge indicates the file exceeds the configured size ceiling
	ErrFileTooLarge = errors.New("file exceeds size limit")

	// ErrPersonNotFound indicates a person was not found
	ErrPersonNotFound = errors.New("person not found")

	// ErrDuplicateUserID indicates the user id is already registered for the role
	ErrDuplicateUserID = errors.New("user id already exists")
)

// ValidationError reports a request field that failed an existence or shape
// check. It maps to a client error at the HTTP layer.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ContentError represents an error related to content operations
type ContentError struct {
	ContentID uuid.UUID
	Kind      ContentKind
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for %s %s: %v", e.Op, e.Kind, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend RefKind
	Ref     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for ref %s on backend %s: %v", e.Op, e.Ref, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PersonError represents an error related to people operations
type PersonError struct {
	Role   Role
	UserID string
	Op     string
	Err    error
}

func (e *PersonError) Error() string {
	return fmt.Sprintf("person operation %s failed for %s %s: %v", e.Op, e.Role, e.UserID, e.Err)
}

func (e *PersonError) Unwrap() error {
	return e.Err
}
