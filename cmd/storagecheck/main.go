package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
	fsstorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/fs"
	memorystorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/memory"
	pgstorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/pg"
	s3storage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/s3"
)

// storagecheck exercises one blob store end to end: save, open, verify,
// delete, reopen. Run it against a freshly configured backend before
// pointing the server at it.
func main() {
	backend := flag.String("backend", "memory", "Backend to check: memory, fs, pg or s3")

	// Filesystem options
	dir := flag.String("dir", "./data/uploads", "Base directory (fs)")

	// Database-hosted bucket options
	databaseURL := flag.String("database-url", "", "postgresql:// connection string (pg)")
	bucket := flag.String("bucket", "uploads", "Bucket table prefix (pg)")

	// S3 options
	s3Bucket := flag.String("s3-bucket", "", "S3 bucket name")
	region := flag.String("region", "us-east-1", "AWS region")
	accessKey := flag.String("access-key", "", "AWS access key ID")
	secretKey := flag.String("secret-key", "", "AWS secret access key")
	endpoint := flag.String("endpoint", "", "Custom S3 endpoint (for MinIO, etc.)")
	usePathStyle := flag.Bool("use-path-style", false, "Use path-style addressing")
	createBucket := flag.Bool("create-bucket", false, "Create the bucket if it doesn't exist")

	// MinIO shortcut
	useMinio := flag.Bool("use-minio", false, "Use MinIO defaults (endpoint, path style, credentials)")
	minioEndpoint := flag.String("minio-endpoint", "http://localhost:9000", "MinIO server endpoint")

	flag.Parse()

	if *useMinio {
		*endpoint = *minioEndpoint
		*usePathStyle = true
		*createBucket = true
		if *accessKey == "" {
			*accessKey = "minioadmin"
		}
		if *secretKey == "" {
			*secretKey = "minioadmin"
		}
	}

	if *accessKey == "" {
		*accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if *secretKey == "" {
		*secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}

	store, err := buildStore(*backend, storeOptions{
		dir:          *dir,
		databaseURL:  *databaseURL,
		bucket:       *bucket,
		s3Bucket:     *s3Bucket,
		region:       *region,
		accessKey:    *accessKey,
		secretKey:    *secretKey,
		endpoint:     *endpoint,
		usePathStyle: *usePathStyle,
		createBucket: *createBucket,
	})
	if err != nil {
		log.Fatalf("Failed to initialize %s backend: %v", *backend, err)
	}

	fmt.Printf("Checking %s backend (reference kind %q)\n\n", *backend, store.Kind())

	if err := runCheck(context.Background(), store); err != nil {
		log.Fatalf("Check failed: %v", err)
	}

	fmt.Println("\nStorage backend OK")
}

type storeOptions struct {
	dir          string
	databaseURL  string
	bucket       string
	s3Bucket     string
	region       string
	accessKey    string
	secretKey    string
	endpoint     string
	usePathStyle bool
	createBucket bool
}

func buildStore(backend string, opts storeOptions) (coursevault.BlobStore, error) {
	switch backend {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{BaseDir: opts.dir})

	case "pg":
		if opts.databaseURL == "" {
			return nil, errors.New("-database-url is required for the pg backend")
		}
		pool, err := pgxpool.New(context.Background(), opts.databaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return pgstorage.New(pgstorage.Config{Pool: pool, Bucket: opts.bucket})

	case "s3":
		if opts.s3Bucket == "" {
			return nil, errors.New("-s3-bucket is required for the s3 backend")
		}
		return s3storage.New(s3storage.Config{
			Region:                 opts.region,
			Bucket:                 opts.s3Bucket,
			AccessKeyID:            opts.accessKey,
			SecretAccessKey:        opts.secretKey,
			Endpoint:               opts.endpoint,
			UsePathStyle:           opts.usePathStyle,
			CreateBucketIfNotExist: opts.createBucket,
		})

	default:
		return nil, fmt.Errorf("unknown backend %q (use memory, fs, pg or s3)", backend)
	}
}

func runCheck(ctx context.Context, store coursevault.BlobStore) error {
	payload := fmt.Sprintf("coursevault storage check %s\n", time.Now().UTC().Format(time.RFC3339))

	fmt.Print("Saving check blob... ")
	start := time.Now()
	ref, err := store.Save(ctx, strings.NewReader(payload), coursevault.BlobInfo{
		FileName: "storagecheck.txt",
		MimeType: "text/plain",
		Size:     int64(len(payload)),
	})
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	fmt.Printf("ok (%v)\n  ref: %s\n", time.Since(start), ref)

	fmt.Print("Reading it back... ")
	start = time.Now()
	rc, err := store.Open(ctx, ref)
	if err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("read failed: %w", err)
	}
	if string(data) != payload {
		return fmt.Errorf("payload mismatch: saved %d bytes, read %d", len(payload), len(data))
	}
	fmt.Printf("ok, %d bytes (%v)\n", len(data), time.Since(start))

	fmt.Print("Deleting it... ")
	start = time.Now()
	if err := store.Delete(ctx, ref); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	fmt.Printf("ok (%v)\n", time.Since(start))

	fmt.Print("Reopening the deleted blob... ")
	if _, err := store.Open(ctx, ref); !errors.Is(err, coursevault.ErrBlobNotFound) {
		return fmt.Errorf("expected a blob-not-found error, got: %v", err)
	}
	fmt.Println("correctly reported missing")

	return nil
}
