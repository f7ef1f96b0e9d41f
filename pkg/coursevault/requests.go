package coursevault

import "io"

// Request/Response DTOs

// UploadContentRequest contains parameters for uploading new content.
//
// Reader supplies the file bytes and Size the declared length. The service
// gates the request against its upload policy before any bytes reach a
// store, and additionally caps the stream while copying so a declared size
// smaller than the actual stream cannot bypass the ceiling.
type UploadContentRequest struct {
	Kind        ContentKind
	Title       string
	Description string
	Year        string
	Department  string
	CreatedBy   string
	FileName    string
	MimeType    string
	Size        int64
	Reader      io.Reader
}

// AddPersonRequest contains parameters for registering a person
type AddPersonRequest struct {
	Role       Role
	UserID     string
	Password   string
	Name       string
	Year       string
	Department string
	Phone      string
}

// LoginRequest contains credentials for a login attempt
type LoginRequest struct {
	Role     Role
	UserID   string
	Password string
}

// AttendanceEntry contains parameters for one attendance row in a batch
type AttendanceEntry struct {
	StudentID  string
	Date       string
	Period     string
	Subject    string
	Status     string
	MarkedBy   string
	Year       string
	Department string
}

// LogSMSRequest contains parameters for recording an outbound notification
type LogSMSRequest struct {
	Recipient string
	Message   string
	Status    string
	SentBy    string
}
