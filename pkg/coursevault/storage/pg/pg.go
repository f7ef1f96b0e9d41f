package pg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// chunkSize is the payload per chunk row. 256 KiB keeps rows well under
// the TOAST threshold trouble zone while holding round trips down.
const chunkSize = 256 * 1024

// Bucket names become table identifiers, so only plain lowercase names are
// accepted.
var bucketNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Config options for the database-hosted blob store
type Config struct {
	Pool   *pgxpool.Pool
	Bucket string // Table name prefix, default "uploads"
}

// Backend stores blobs as chunk rows in PostgreSQL. Each named bucket is a
// pair of tables: {bucket}_blobs for the descriptor rows and
// {bucket}_blob_chunks for the bytes. Buckets are created on first use.
type Backend struct {
	pool   *pgxpool.Pool
	bucket string
}

// New creates a database-hosted blob store and ensures its bucket tables
// exist.
func New(config Config) (coursevault.BlobStore, error) {
	if config.Pool == nil {
		return nil, errors.New("connection pool is required")
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = "uploads"
	}
	if !bucketNamePattern.MatchString(bucket) {
		return nil, fmt.Errorf("invalid bucket name %q", bucket)
	}

	backend := &Backend{
		pool:   config.Pool,
		bucket: bucket,
	}

	if err := backend.ensureSchema(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to create bucket tables: %w", err)
	}

	return backend, nil
}

func (b *Backend) ensureSchema(ctx context.Context) error {
	blobs := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s_blobs (
			id         UUID PRIMARY KEY,
			file_name  TEXT NOT NULL DEFAULT '',
			media_type TEXT NOT NULL DEFAULT '',
			size_bytes BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, b.bucket)

	chunks := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s_blob_chunks (
			blob_id UUID NOT NULL REFERENCES %s_blobs (id) ON DELETE CASCADE,
			seq     INT NOT NULL,
			data    BYTEA NOT NULL,
			PRIMARY KEY (blob_id, seq)
		)`, b.bucket, b.bucket)

	if _, err := b.pool.Exec(ctx, blobs); err != nil {
		return err
	}
	if _, err := b.pool.Exec(ctx, chunks); err != nil {
		return err
	}
	return nil
}

// Kind reports the reference kind this store serves
func (b *Backend) Kind() coursevault.RefKind {
	return coursevault.RefKindBlobstore
}

// Save streams the upload into chunk rows inside one transaction, so a
// failed upload rolls back to nothing rather than leaving a partial blob.
func (b *Backend) Save(ctx context.Context, reader io.Reader, info coursevault.BlobInfo) (coursevault.BlobReference, error) {
	id := uuid.New()

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return coursevault.BlobReference{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insertBlob := fmt.Sprintf(
		`INSERT INTO %s_blobs (id, file_name, media_type, size_bytes) VALUES ($1, $2, $3, 0)`,
		b.bucket)
	if _, err := tx.Exec(ctx, insertBlob, id, info.FileName, info.MimeType); err != nil {
		return coursevault.BlobReference{}, fmt.Errorf("failed to insert blob row: %w", err)
	}

	insertChunk := fmt.Sprintf(
		`INSERT INTO %s_blob_chunks (blob_id, seq, data) VALUES ($1, $2, $3)`,
		b.bucket)

	buf := make([]byte, chunkSize)
	var size int64
	seq := 0
	for {
		n, readErr := io.ReadFull(reader, buf)
		if n > 0 {
			if _, err := tx.Exec(ctx, insertChunk, id, seq, buf[:n]); err != nil {
				return coursevault.BlobReference{}, fmt.Errorf("failed to insert chunk: %w", err)
			}
			size += int64(n)
			seq++
		}
		if readErr == io.EOF || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			return coursevault.BlobReference{}, fmt.Errorf("failed to read stream: %w", readErr)
		}
	}

	updateSize := fmt.Sprintf(`UPDATE %s_blobs SET size_bytes = $2 WHERE id = $1`, b.bucket)
	if _, err := tx.Exec(ctx, updateSize, id, size); err != nil {
		return coursevault.BlobReference{}, fmt.Errorf("failed to finalize blob: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return coursevault.BlobReference{}, fmt.Errorf("failed to commit blob: %w", err)
	}

	return coursevault.BlobstoreRef(id.String()), nil
}

// Open verifies the blob row, then returns a reader that streams the chunk
// rows in order. The caller must close the reader to release the
// underlying connection.
func (b *Backend) Open(ctx context.Context, ref coursevault.BlobReference) (io.ReadCloser, error) {
	id, err := b.blobID(ref)
	if err != nil {
		return nil, err
	}

	exists := fmt.Sprintf(`SELECT 1 FROM %s_blobs WHERE id = $1`, b.bucket)
	var one int
	if err := b.pool.QueryRow(ctx, exists, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", coursevault.ErrBlobNotFound, ref.ID)
		}
		return nil, fmt.Errorf("failed to check blob: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT data FROM %s_blob_chunks WHERE blob_id = $1 ORDER BY seq`,
		b.bucket)
	rows, err := b.pool.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	return &chunkReader{rows: rows}, nil
}

// Delete removes the blob row; chunk rows go with it via the cascade.
func (b *Backend) Delete(ctx context.Context, ref coursevault.BlobReference) error {
	id, err := b.blobID(ref)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`DELETE FROM %s_blobs WHERE id = $1`, b.bucket)
	tag, err := b.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", coursevault.ErrBlobNotFound, ref.ID)
	}

	return nil
}

func (b *Backend) blobID(ref coursevault.BlobReference) (uuid.UUID, error) {
	if ref.Kind != coursevault.RefKindBlobstore {
		return uuid.Nil, fmt.Errorf("%w: not a blobstore reference", coursevault.ErrInvalidBlobRef)
	}
	if err := ref.Validate(); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(ref.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: malformed id %q", coursevault.ErrInvalidBlobRef, ref.ID)
	}
	return id, nil
}

// chunkReader adapts a chunk-row result set to io.ReadCloser
type chunkReader struct {
	rows pgx.Rows
	buf  []byte
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	for len(cr.buf) == 0 {
		if !cr.rows.Next() {
			if err := cr.rows.Err(); err != nil {
				return 0, fmt.Errorf("failed to read chunk: %w", err)
			}
			return 0, io.EOF
		}
		if err := cr.rows.Scan(&cr.buf); err != nil {
			return 0, fmt.Errorf("failed to scan chunk: %w", err)
		}
	}

	n := copy(p, cr.buf)
	cr.buf = cr.buf[n:]
	return n, nil
}

func (cr *chunkReader) Close() error {
	cr.rows.Close()
	return nil
}
