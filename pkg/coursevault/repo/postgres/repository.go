package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements coursevault.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) coursevault.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) coursevault.Repository {
	return &Repository{db: pool}
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "people") {
				return coursevault.ErrDuplicateUserID
			}
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("record not found")
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// refToColumns splits a reference into the nullable column pair. Both
// columns are NULL when no file is attached.
func refToColumns(ref *coursevault.BlobReference) (*string, *string) {
	if ref == nil {
		return nil, nil
	}
	kind := string(ref.Kind)
	value := ref.Value()
	return &kind, &value
}

// refFromColumns rebuilds a reference from the column pair. An unknown kind
// is preserved so the service can refuse it instead of the row silently
// losing its file.
func refFromColumns(kind, value *string) *coursevault.BlobReference {
	if kind == nil || value == nil {
		return nil
	}
	k := coursevault.RefKind(*kind)
	if k == coursevault.RefKindFilesystem {
		ref := coursevault.FilesystemRef(*value)
		return &ref
	}
	ref := coursevault.BlobReference{Kind: k, ID: *value}
	return &ref
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, record *coursevault.ContentRecord) error {
	query := `
		INSERT INTO content (
			id, kind, title, description, year, department, created_by,
			file_ref_kind, file_ref_value, file_name, file_size, file_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	refKind, refValue := refToColumns(record.FileRef)

	_, err := r.db.Exec(ctx, query,
		record.ID, record.Kind, record.Title, record.Description,
		record.Year, record.Department, record.CreatedBy,
		refKind, refValue, record.FileName, record.FileSize, record.FileType,
		record.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create content", err)
	}

	return nil
}

func (r *Repository) GetContent(ctx context.Context, kind coursevault.ContentKind, id uuid.UUID) (*coursevault.ContentRecord, error) {
	query := `
		SELECT id, kind, title, description, year, department, created_by,
		       file_ref_kind, file_ref_value, file_name, file_size, file_type, created_at
		FROM content WHERE kind = $1 AND id = $2`

	record, err := r.scanContentRow(r.db.QueryRow(ctx, query, kind, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursevault.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}

	return record, nil
}

func (r *Repository) ListContent(ctx context.Context, kind coursevault.ContentKind, filter coursevault.ContentFilter) ([]*coursevault.ContentRecord, error) {
	query := `
		SELECT id, kind, title, description, year, department, created_by,
		       file_ref_kind, file_ref_value, file_name, file_size, file_type, created_at
		FROM content WHERE kind = $1`

	args := []interface{}{kind}
	argIndex := 2

	if filter.Year != "" {
		query += fmt.Sprintf(" AND year = $%d", argIndex)
		args = append(args, filter.Year)
		argIndex++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, filter.Department)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list content", err)
	}
	defer rows.Close()

	var records []*coursevault.ContentRecord
	for rows.Next() {
		record, err := r.scanContentRow(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan content", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate content rows", err)
	}

	return records, nil
}

func (r *Repository) DeleteContent(ctx context.Context, kind coursevault.ContentKind, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content WHERE kind = $1 AND id = $2`, kind, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return coursevault.ErrContentNotFound
	}
	return nil
}

func (r *Repository) CountContent(ctx context.Context, kind coursevault.ContentKind) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM content WHERE kind = $1`, kind).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("count content", err)
	}
	return count, nil
}

func (r *Repository) scanContentRow(row pgx.Row) (*coursevault.ContentRecord, error) {
	var record coursevault.ContentRecord
	var refKind, refValue *string

	err := row.Scan(
		&record.ID, &record.Kind, &record.Title, &record.Description,
		&record.Year, &record.Department, &record.CreatedBy,
		&refKind, &refValue, &record.FileName, &record.FileSize, &record.FileType,
		&record.CreatedAt)
	if err != nil {
		return nil, err
	}

	record.FileRef = refFromColumns(refKind, refValue)
	return &record, nil
}

// People operations

func (r *Repository) CreatePerson(ctx context.Context, person *coursevault.Person) error {
	query := `
		INSERT INTO people (
			id, role, user_id, password, name, year, department, phone, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		person.ID, person.Role, person.UserID, person.Password,
		person.Name, person.Year, person.Department, person.Phone,
		person.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create person", err)
	}

	return nil
}

func (r *Repository) GetPerson(ctx context.Context, role coursevault.Role, id uuid.UUID) (*coursevault.Person, error) {
	query := `
		SELECT id, role, user_id, password, name, year, department, phone, created_at
		FROM people WHERE role = $1 AND id = $2`

	person, err := r.scanPersonRow(r.db.QueryRow(ctx, query, role, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursevault.ErrPersonNotFound
		}
		return nil, r.handlePostgresError("get person", err)
	}

	return person, nil
}

func (r *Repository) GetPersonByUserID(ctx context.Context, role coursevault.Role, userID string) (*coursevault.Person, error) {
	query := `
		SELECT id, role, user_id, password, name, year, department, phone, created_at
		FROM people WHERE role = $1 AND user_id = $2`

	person, err := r.scanPersonRow(r.db.QueryRow(ctx, query, role, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coursevault.ErrPersonNotFound
		}
		return nil, r.handlePostgresError("get person by user id", err)
	}

	return person, nil
}

func (r *Repository) ListPeople(ctx context.Context, role coursevault.Role, filter coursevault.PersonFilter) ([]*coursevault.Person, error) {
	query := `
		SELECT id, role, user_id, password, name, year, department, phone, created_at
		FROM people WHERE role = $1`

	args := []interface{}{role}
	argIndex := 2

	if filter.Year != "" {
		query += fmt.Sprintf(" AND year = $%d", argIndex)
		args = append(args, filter.Year)
		argIndex++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, filter.Department)
		argIndex++
	}

	query += " ORDER BY user_id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list people", err)
	}
	defer rows.Close()

	var people []*coursevault.Person
	for rows.Next() {
		person, err := r.scanPersonRow(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan person", err)
		}
		people = append(people, person)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate people rows", err)
	}

	return people, nil
}

func (r *Repository) DeletePerson(ctx context.Context, role coursevault.Role, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM people WHERE role = $1 AND id = $2`, role, id)
	if err != nil {
		return r.handlePostgresError("delete person", err)
	}
	if tag.RowsAffected() == 0 {
		return coursevault.ErrPersonNotFound
	}
	return nil
}

func (r *Repository) DeletePeople(ctx context.Context, role coursevault.Role, filter coursevault.PersonFilter) (int64, error) {
	query := `DELETE FROM people WHERE role = $1`

	args := []interface{}{role}
	argIndex := 2

	if filter.Year != "" {
		query += fmt.Sprintf(" AND year = $%d", argIndex)
		args = append(args, filter.Year)
		argIndex++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, filter.Department)
		argIndex++
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.handlePostgresError("delete people", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) CountPeople(ctx context.Context, role coursevault.Role) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM people WHERE role = $1`, role).Scan(&count)
	if err != nil {
		return 0, r.handlePostgresError("count people", err)
	}
	return count, nil
}

func (r *Repository) scanPersonRow(row pgx.Row) (*coursevault.Person, error) {
	var person coursevault.Person
	err := row.Scan(
		&person.ID, &person.Role, &person.UserID, &person.Password,
		&person.Name, &person.Year, &person.Department, &person.Phone,
		&person.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &person, nil
}

// Attendance operations

func (r *Repository) CreateAttendance(ctx context.Context, record *coursevault.AttendanceRecord) error {
	query := `
		INSERT INTO attendance (
			id, student_id, date, period, subject, status, marked_by,
			year, department, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		record.ID, record.StudentID, record.Date, record.Period,
		record.Subject, record.Status, record.MarkedBy,
		record.Year, record.Department, record.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create attendance", err)
	}

	return nil
}

func (r *Repository) ListAttendance(ctx context.Context, filter coursevault.AttendanceFilter) ([]*coursevault.AttendanceRecord, error) {
	query := `
		SELECT id, student_id, date, period, subject, status, marked_by,
		       year, department, created_at
		FROM attendance WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", argIndex)
		args = append(args, filter.StudentID)
		argIndex++
	}
	if filter.Year != "" {
		query += fmt.Sprintf(" AND year = $%d", argIndex)
		args = append(args, filter.Year)
		argIndex++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, filter.Department)
		argIndex++
	}
	if filter.Date != "" {
		query += fmt.Sprintf(" AND date = $%d", argIndex)
		args = append(args, filter.Date)
		argIndex++
	}
	if filter.Period != "" {
		query += fmt.Sprintf(" AND period = $%d", argIndex)
		args = append(args, filter.Period)
		argIndex++
	}

	query += " ORDER BY date DESC, created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list attendance", err)
	}
	defer rows.Close()

	var records []*coursevault.AttendanceRecord
	for rows.Next() {
		var record coursevault.AttendanceRecord
		if err := rows.Scan(
			&record.ID, &record.StudentID, &record.Date, &record.Period,
			&record.Subject, &record.Status, &record.MarkedBy,
			&record.Year, &record.Department, &record.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan attendance", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate attendance rows", err)
	}

	return records, nil
}

func (r *Repository) DeleteAttendance(ctx context.Context, filter coursevault.AttendanceFilter) (int64, error) {
	query := `DELETE FROM attendance WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", argIndex)
		args = append(args, filter.StudentID)
		argIndex++
	}
	if filter.Year != "" {
		query += fmt.Sprintf(" AND year = $%d", argIndex)
		args = append(args, filter.Year)
		argIndex++
	}
	if filter.Department != "" {
		query += fmt.Sprintf(" AND department = $%d", argIndex)
		args = append(args, filter.Department)
		argIndex++
	}
	if filter.Date != "" {
		query += fmt.Sprintf(" AND date = $%d", argIndex)
		args = append(args, filter.Date)
		argIndex++
	}
	if filter.Period != "" {
		query += fmt.Sprintf(" AND period = $%d", argIndex)
		args = append(args, filter.Period)
		argIndex++
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.handlePostgresError("delete attendance", err)
	}
	return tag.RowsAffected(), nil
}

// SMS log operations

func (r *Repository) CreateSMSLog(ctx context.Context, entry *coursevault.SMSLog) error {
	query := `
		INSERT INTO sms_log (
			id, recipient, message, status, sent_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.Recipient, entry.Message, entry.Status,
		entry.SentBy, entry.CreatedAt)

	if err != nil {
		return r.handlePostgresError("create sms log", err)
	}

	return nil
}

func (r *Repository) ListSMSLogs(ctx context.Context, filter coursevault.SMSFilter) ([]*coursevault.SMSLog, error) {
	query := `
		SELECT id, recipient, message, status, sent_by, created_at
		FROM sms_log WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filter.Recipient != "" {
		query += fmt.Sprintf(" AND recipient = $%d", argIndex)
		args = append(args, filter.Recipient)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list sms logs", err)
	}
	defer rows.Close()

	var entries []*coursevault.SMSLog
	for rows.Next() {
		var entry coursevault.SMSLog
		if err := rows.Scan(
			&entry.ID, &entry.Recipient, &entry.Message, &entry.Status,
			&entry.SentBy, &entry.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan sms log", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate sms log rows", err)
	}

	return entries, nil
}
