package coursevault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStores map[RefKind]BlobStore
	uploadKind RefKind
	policy     *UploadPolicy
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore mounts a blob storage backend under its reference kind.
// At most one store per kind; a later option replaces an earlier one.
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		if s.blobStores == nil {
			s.blobStores = make(map[RefKind]BlobStore)
		}
		s.blobStores[store.Kind()] = store
	}
}

// WithUploadBackend selects which mounted store receives new uploads.
// Records written earlier against the other kind stay readable as long as
// that store remains mounted.
func WithUploadBackend(kind RefKind) Option {
	return func(s *service) {
		s.uploadKind = kind
	}
}

// WithUploadPolicy overrides the default upload gate
func WithUploadPolicy(policy *UploadPolicy) Option {
	return func(s *service) {
		s.policy = policy
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{
		blobStores: make(map[RefKind]BlobStore),
	}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.policy == nil {
		s.policy = DefaultUploadPolicy()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	// All backends are mounted before the service takes traffic; a request
	// for an unmounted kind fails, it never lazily constructs one.
	if s.uploadKind == "" && len(s.blobStores) == 1 {
		for kind := range s.blobStores {
			s.uploadKind = kind
		}
	}
	if s.uploadKind == "" && len(s.blobStores) > 1 {
		return nil, fmt.Errorf("upload backend must be selected when multiple stores are mounted")
	}
	if s.uploadKind != "" {
		if _, ok := s.blobStores[s.uploadKind]; !ok {
			return nil, fmt.Errorf("upload backend %q is not mounted", s.uploadKind)
		}
	}

	return s, nil
}

func (s *service) getStore(kind RefKind) (BlobStore, error) {
	store, ok := s.blobStores[kind]
	if !ok {
		return nil, fmt.Errorf("%w: no store mounted for %s references", ErrBackendUnavailable, kind)
	}
	return store, nil
}

// Content operations

func (s *service) UploadContent(ctx context.Context, req UploadContentRequest) (*ContentRecord, error) {
	if !req.Kind.Valid() {
		return nil, &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown content kind %q", req.Kind)}
	}
	if req.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if req.Reader == nil || req.FileName == "" {
		return nil, ErrMissingFile
	}
	if err := s.policy.Check(req.FileName, req.Size); err != nil {
		return nil, err
	}

	store, err := s.getStore(s.uploadKind)
	if err != nil {
		return nil, err
	}

	info := BlobInfo{
		FileName: req.FileName,
		MimeType: req.MimeType,
		Size:     req.Size,
	}
	ref, err := store.Save(ctx, s.policy.CapReader(req.Reader), info)
	if err != nil {
		return nil, &StorageError{
			Backend: store.Kind(),
			Ref:     req.FileName,
			Op:      "save",
			Err:     err,
		}
	}

	now := time.Now().UTC()
	record := &ContentRecord{
		ID:          uuid.New(),
		Kind:        req.Kind,
		Title:       req.Title,
		Description: req.Description,
		Year:        req.Year,
		Department:  req.Department,
		CreatedBy:   req.CreatedBy,
		FileRef:     &ref,
		FileName:    req.FileName,
		FileSize:    req.Size,
		FileType:    req.MimeType,
		CreatedAt:   now,
	}

	if err := s.repository.CreateContent(ctx, record); err != nil {
		// The blob is orphaned now. Record the ref so it can be reclaimed
		// by hand; there is no automatic retry or cleanup.
		s.logger.Warn("Orphaned blob after metadata failure", "ref", ref.String(), "error", err)
		return nil, &ContentError{
			ContentID: record.ID,
			Kind:      record.Kind,
			Op:        "create",
			Err:       err,
		}
	}

	return record, nil
}

func (s *service) GetContent(ctx context.Context, kind ContentKind, id uuid.UUID) (*ContentRecord, error) {
	return s.repository.GetContent(ctx, kind, id)
}

// ResolveContent looks an id up across all partitions in KindResolveOrder.
// The first match wins.
func (s *service) ResolveContent(ctx context.Context, id uuid.UUID) (*ContentRecord, error) {
	for _, kind := range KindResolveOrder {
		record, err := s.repository.GetContent(ctx, kind, id)
		if err == nil {
			return record, nil
		}
		if !errors.Is(err, ErrContentNotFound) {
			return nil, err
		}
	}
	return nil, ErrContentNotFound
}

func (s *service) ListContent(ctx context.Context, kind ContentKind, filter ContentFilter) ([]*ContentRecord, error) {
	return s.repository.ListContent(ctx, kind, filter)
}

func (s *service) DeleteContent(ctx context.Context, kind ContentKind, id uuid.UUID) error {
	record, err := s.repository.GetContent(ctx, kind, id)
	if err != nil {
		return &ContentError{ContentID: id, Kind: kind, Op: "delete", Err: err}
	}

	// Blob first, then the record. Blob failures are logged, never fatal.
	if record.FileRef != nil {
		s.deleteBlob(ctx, *record.FileRef)
	}

	if err := s.repository.DeleteContent(ctx, kind, id); err != nil {
		return &ContentError{ContentID: id, Kind: kind, Op: "delete", Err: err}
	}

	return nil
}

func (s *service) deleteBlob(ctx context.Context, ref BlobReference) {
	store, err := s.getStore(ref.Kind)
	if err != nil {
		s.logger.Warn("No store mounted for blob delete", "ref", ref.String(), "error", err)
		return
	}
	if err := store.Delete(ctx, ref); err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			s.logger.Warn("Blob already absent on delete", "ref", ref.String())
			return
		}
		s.logger.Warn("Failed to delete blob", "ref", ref.String(), "error", err)
	}
}

// File retrieval operations

func (s *service) OpenContentFile(ctx context.Context, id uuid.UUID) (*ContentRecord, io.ReadCloser, error) {
	record, err := s.ResolveContent(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if record.FileRef == nil {
		return nil, nil, &ContentError{
			ContentID: record.ID,
			Kind:      record.Kind,
			Op:        "open_file",
			Err:       ErrNoFileAttached,
		}
	}

	ref := *record.FileRef
	store, err := s.getStore(ref.Kind)
	if err != nil {
		return nil, nil, err
	}

	reader, err := store.Open(ctx, ref)
	if err != nil {
		return nil, nil, &StorageError{
			Backend: ref.Kind,
			Ref:     ref.Value(),
			Op:      "open",
			Err:     err,
		}
	}

	return record, reader, nil
}

// People operations

func (s *service) AddPerson(ctx context.Context, req AddPersonRequest) (*Person, error) {
	if !req.Role.Valid() {
		return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", req.Role)}
	}
	if req.UserID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "required"}
	}
	if req.Password == "" {
		return nil, &ValidationError{Field: "password", Reason: "required"}
	}
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "required"}
	}

	person := &Person{
		ID:         uuid.New(),
		Role:       req.Role,
		UserID:     req.UserID,
		Password:   req.Password,
		Name:       req.Name,
		Year:       req.Year,
		Department: req.Department,
		Phone:      req.Phone,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repository.CreatePerson(ctx, person); err != nil {
		return nil, &PersonError{
			Role:   req.Role,
			UserID: req.UserID,
			Op:     "create",
			Err:    err,
		}
	}

	return person, nil
}

// BulkAddPeople inserts people one row at a time. Duplicate user ids are
// skipped and reported, not treated as failures; any other error aborts the
// batch with rows inserted so far left in place.
func (s *service) BulkAddPeople(ctx context.Context, role Role, reqs []AddPersonRequest) (*BulkAddResult, error) {
	result := &BulkAddResult{Duplicates: []string{}}
	for _, req := range reqs {
		req.Role = role
		if _, err := s.AddPerson(ctx, req); err != nil {
			if errors.Is(err, ErrDuplicateUserID) {
				result.Duplicates = append(result.Duplicates, req.UserID)
				continue
			}
			return nil, err
		}
		result.Added++
	}
	return result, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*Person, error) {
	if !req.Role.Valid() {
		return nil, &ValidationError{Field: "role", Reason: fmt.Sprintf("unknown role %q", req.Role)}
	}
	if req.UserID == "" || req.Password == "" {
		return nil, &ValidationError{Field: "credentials", Reason: "user_id and password are required"}
	}

	person, err := s.repository.GetPersonByUserID(ctx, req.Role, req.UserID)
	if err != nil {
		return nil, err
	}

	// Same signal for an unknown user and a wrong password.
	if person.Password != req.Password {
		return nil, ErrPersonNotFound
	}

	return person, nil
}

func (s *service) GetPerson(ctx context.Context, role Role, id uuid.UUID) (*Person, error) {
	return s.repository.GetPerson(ctx, role, id)
}

func (s *service) ListPeople(ctx context.Context, role Role, filter PersonFilter) ([]*Person, error) {
	return s.repository.ListPeople(ctx, role, filter)
}

func (s *service) DeletePerson(ctx context.Context, role Role, id uuid.UUID) error {
	return s.repository.DeletePerson(ctx, role, id)
}

// DeletePeople removes everyone of the role matching year and department.
// An empty filter is refused; wiping a whole role partition takes a
// deliberate per-person loop, not one unfiltered call.
func (s *service) DeletePeople(ctx context.Context, role Role, filter PersonFilter) (int64, error) {
	if filter.Year == "" && filter.Department == "" {
		return 0, &ValidationError{Field: "filter", Reason: "year or department is required"}
	}
	return s.repository.DeletePeople(ctx, role, filter)
}

// Attendance operations

func (s *service) MarkAttendance(ctx context.Context, entries []AttendanceEntry) (int, error) {
	if len(entries) == 0 {
		return 0, &ValidationError{Field: "records", Reason: "required"}
	}
	for _, entry := range entries {
		if entry.StudentID == "" || entry.Date == "" || entry.Status == "" {
			return 0, &ValidationError{Field: "records", Reason: "student_id, date and status are required"}
		}
	}

	marked := 0
	for _, entry := range entries {
		record := &AttendanceRecord{
			ID:         uuid.New(),
			StudentID:  entry.StudentID,
			Date:       entry.Date,
			Period:     entry.Period,
			Subject:    entry.Subject,
			Status:     entry.Status,
			MarkedBy:   entry.MarkedBy,
			Year:       entry.Year,
			Department: entry.Department,
			CreatedAt:  time.Now().UTC(),
		}
		if err := s.repository.CreateAttendance(ctx, record); err != nil {
			return marked, err
		}
		marked++
	}

	return marked, nil
}

// validAttendanceFilter accepts a per-student query or a full class session
// (year, department, date, period). Anything looser is refused.
func validAttendanceFilter(filter AttendanceFilter) error {
	byStudent := filter.StudentID != ""
	byClass := filter.Year != "" && filter.Department != "" && filter.Date != "" && filter.Period != ""
	if !byStudent && !byClass {
		return &ValidationError{Field: "filter", Reason: "requires student_id, or year, department, date and period"}
	}
	return nil
}

func (s *service) ListAttendance(ctx context.Context, filter AttendanceFilter) ([]*AttendanceRecord, error) {
	if err := validAttendanceFilter(filter); err != nil {
		return nil, err
	}
	return s.repository.ListAttendance(ctx, filter)
}

// ClearAttendance removes the records matching the filter, with the same
// filter shapes ListAttendance accepts, and reports how many were removed.
// Re-marking a session that was taken wrong starts with a clear.
func (s *service) ClearAttendance(ctx context.Context, filter AttendanceFilter) (int64, error) {
	if err := validAttendanceFilter(filter); err != nil {
		return 0, err
	}
	return s.repository.DeleteAttendance(ctx, filter)
}

// SMS log operations

func (s *service) LogSMS(ctx context.Context, req LogSMSRequest) (*SMSLog, error) {
	if req.Recipient == "" || req.Message == "" {
		return nil, &ValidationError{Field: "sms", Reason: "recipient and message are required"}
	}

	status := req.Status
	if status == "" {
		status = "sent"
	}

	entry := &SMSLog{
		ID:        uuid.New(),
		Recipient: req.Recipient,
		Message:   req.Message,
		Status:    status,
		SentBy:    req.SentBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repository.CreateSMSLog(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

func (s *service) ListSMSLogs(ctx context.Context, filter SMSFilter) ([]*SMSLog, error) {
	return s.repository.ListSMSLogs(ctx, filter)
}

// Statistics

func (s *service) Stats(ctx context.Context) (*PortalStats, error) {
	stats := &PortalStats{}

	contentCounts := []struct {
		kind ContentKind
		dst  *int64
	}{
		{ContentKindMaterial, &stats.Materials},
		{ContentKindQuestionBank, &stats.QuestionBanks},
		{ContentKindUpdate, &stats.Updates},
	}
	for _, c := range contentCounts {
		n, err := s.repository.CountContent(ctx, c.kind)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	peopleCounts := []struct {
		role Role
		dst  *int64
	}{
		{RoleStudent, &stats.Students},
		{RoleFaculty, &stats.Faculty},
		{RoleAdmin, &stats.Admins},
	}
	for _, p := range peopleCounts {
		n, err := s.repository.CountPeople(ctx, p.role)
		if err != nil {
			return nil, err
		}
		*p.dst = n
	}

	return stats, nil
}
