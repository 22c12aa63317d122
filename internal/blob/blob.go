// Package blob provides the archive storage used for dated export
// snapshots. It is a thin S3-like abstraction with filesystem, memory,
// and S3/MinIO backends.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// Driver identifies a concrete blob storage backend implementation.
type Driver string

const (
	// DriverFilesystem represents the local filesystem implementation.
	DriverFilesystem Driver = "fs" // local filesystem (default, dev)
	// DriverS3 represents an S3 / MinIO compatible implementation.
	DriverS3 Driver = "s3" // S3 / MinIO compatible
	// DriverMemory represents an in-memory implementation typically used in tests.
	DriverMemory Driver = "memory" // in-memory (tests)
)

// Info describes a stored archive object.
type Info struct {
	Key          string    `json:"key"`
	Size         int64     `json:"size_bytes"`
	ContentType  string    `json:"content_type,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// Store is the minimal surface the archive flow needs.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound is returned when a requested archive object does not exist.
var ErrNotFound = errors.New("blob: not found")

// Open selects a backend using environment variables. Defaults to the
// filesystem driver.
//
//	BISTROCORE_BLOB_DRIVER: fs|memory|s3 (default fs)
//	BISTROCORE_BLOB_FS_ROOT: filesystem root (default ./archive)
//	BISTROCORE_BLOB_S3_BUCKET / _REGION / _ENDPOINT / _PATH_STYLE: s3 config
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("BISTROCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("BISTROCORE_BLOB_FS_ROOT"))
	case DriverS3:
		return NewS3(ctx, S3Config{
			Bucket:    os.Getenv("BISTROCORE_BLOB_S3_BUCKET"),
			Region:    os.Getenv("BISTROCORE_BLOB_S3_REGION"),
			Endpoint:  os.Getenv("BISTROCORE_BLOB_S3_ENDPOINT"),
			PathStyle: os.Getenv("BISTROCORE_BLOB_S3_PATH_STYLE") == "true",
		})
	default:
		return nil, fmt.Errorf("unknown blob driver %s", driver)
	}
}
