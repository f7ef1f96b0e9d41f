package config

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
	memoryrepo "github.com/edupage-labs/coursevault/pkg/coursevault/repo/memory"
	repopg "github.com/edupage-labs/coursevault/pkg/coursevault/repo/postgres"
	fsstorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/fs"
	memorystorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/memory"
	pgstorage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/pg"
	s3storage "github.com/edupage-labs/coursevault/pkg/coursevault/storage/s3"
)

// ServerConfig represents server configuration for the portal service
type ServerConfig struct {
	Port        string `env:"PORT" env-default:"8080"`
	Environment string `env:"ENVIRONMENT" env-default:"development"` // development, production, testing

	// DatabaseURL selects the record repository: "memory" (or empty) for the
	// in-memory repository, a postgresql:// URL for Postgres.
	DatabaseURL string `env:"DATABASE_URL" env-default:"memory"`

	Storage StorageConfig

	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" env-default:"52428800"`
	EnableMetrics  bool  `env:"ENABLE_METRICS" env-default:"true"`
}

// StorageConfig selects where new uploads go. The filesystem store is
// mounted whenever FSDir is set, so records holding filesystem references
// stay readable even when uploads target another backend.
type StorageConfig struct {
	Backend string `env:"STORAGE_BACKEND" env-default:"fs"` // "fs", "pg", "s3", "memory"
	FSDir   string `env:"STORAGE_FS_DIR" env-default:"./data/uploads"`
	Bucket  string `env:"STORAGE_PG_BUCKET" env-default:"uploads"`
	S3      S3Config
}

// S3Config carries the credentials and endpoint for the S3 backend.
type S3Config struct {
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	Bucket          string `env:"AWS_S3_BUCKET" env-default:""`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	dbKind, err := c.databaseKind()
	if err != nil {
		return err
	}

	switch c.Storage.Backend {
	case "fs":
		if c.Storage.FSDir == "" {
			return errors.New("STORAGE_FS_DIR is required when STORAGE_BACKEND is 'fs'")
		}
	case "memory":
	case "pg":
		if dbKind != "postgres" {
			return errors.New("STORAGE_BACKEND 'pg' requires a postgres DATABASE_URL")
		}
		if c.Storage.Bucket == "" {
			return errors.New("STORAGE_PG_BUCKET is required when STORAGE_BACKEND is 'pg'")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return errors.New("AWS_S3_BUCKET is required when STORAGE_BACKEND is 's3'")
		}
	default:
		return fmt.Errorf("storage backend must be 'fs', 'pg', 's3' or 'memory', got: %s", c.Storage.Backend)
	}

	return nil
}

// DatabaseKind reports which repository flavor DatabaseURL selects,
// "memory" or "postgres". Call Validate first; unknown formats come back
// empty here.
func (c *ServerConfig) DatabaseKind() string {
	kind, _ := c.databaseKind()
	return kind
}

// databaseKind derives the repository flavor from DatabaseURL.
func (c *ServerConfig) databaseKind() (string, error) {
	switch {
	case c.DatabaseURL == "" || c.DatabaseURL == "memory":
		return "memory", nil
	case strings.HasPrefix(c.DatabaseURL, "postgres://"),
		strings.HasPrefix(c.DatabaseURL, "postgresql://"):
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory' or 'postgresql://...')", c.DatabaseURL)
	}
}

// BuildService creates a Service instance from the server configuration.
// The returned cleanup closes the database pool when one was opened.
func (c *ServerConfig) BuildService(ctx context.Context) (coursevault.Service, func(), error) {
	dbKind, err := c.databaseKind()
	if err != nil {
		return nil, nil, err
	}

	var (
		repo coursevault.Repository
		pool *pgxpool.Pool
	)
	switch dbKind {
	case "memory":
		repo = memoryrepo.New()
	case "postgres":
		pool, err = repopg.Connect(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		repo = repopg.NewWithPool(pool)
	}

	cleanup := func() {
		if pool != nil {
			pool.Close()
		}
	}

	options := []coursevault.Option{coursevault.WithRepository(repo)}

	if c.Storage.FSDir != "" {
		fsBackend, err := fsstorage.New(fsstorage.Config{BaseDir: c.Storage.FSDir})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to create filesystem storage: %w", err)
		}
		options = append(options, coursevault.WithBlobStore(fsBackend))
	}

	blobStore, err := c.buildBlobBackend(pool)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Backend, err)
	}
	if blobStore != nil {
		options = append(options, coursevault.WithBlobStore(blobStore))
	}

	uploadKind := coursevault.RefKindFilesystem
	if c.Storage.Backend != "fs" {
		uploadKind = coursevault.RefKindBlobstore
	}
	options = append(options, coursevault.WithUploadBackend(uploadKind))

	if c.MaxUploadBytes > 0 {
		options = append(options, coursevault.WithUploadPolicy(&coursevault.UploadPolicy{MaxBytes: c.MaxUploadBytes}))
	}

	svc, err := coursevault.New(options...)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create service: %w", err)
	}

	return svc, cleanup, nil
}

// buildBlobBackend creates the blobstore-kind store selected by
// Storage.Backend, or nil when uploads target the filesystem.
func (c *ServerConfig) buildBlobBackend(pool *pgxpool.Pool) (coursevault.BlobStore, error) {
	switch c.Storage.Backend {
	case "fs":
		return nil, nil
	case "memory":
		return memorystorage.New(), nil
	case "pg":
		return pgstorage.New(pgstorage.Config{Pool: pool, Bucket: c.Storage.Bucket})
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.Storage.S3.Region,
			Bucket:                 c.Storage.S3.Bucket,
			AccessKeyID:            c.Storage.S3.AccessKeyID,
			SecretAccessKey:        c.Storage.S3.SecretAccessKey,
			Endpoint:               c.Storage.S3.Endpoint,
			UsePathStyle:           c.Storage.S3.UsePathStyle,
			CreateBucketIfNotExist: c.Storage.S3.CreateBucket,
		})
	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", c.Storage.Backend)
	}
}
