// Package sink defines where generated artifacts (documents, logs, traces, CSV rows and
// codebooks) are stored. Stores are create-only: an existing key is never overwritten.
package sink

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Driver identifies a concrete store.
type Driver string

const (
	// DriverFilesystem writes under a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 writes to an S3 compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps artifacts in process, for tests and dry runs.
	DriverMemory Driver = "memory"
)

// ErrExists is returned by Put when the key is already stored.
var ErrExists = errors.New("artifact already exists")

// Info describes a stored artifact.
type Info struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
	// URL locates the artifact: a file path for fs, s3://bucket/key for s3.
	URL string
}

// Store is the artifact sink.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// SanitizeKey rejects empty, absolute and escaping keys and normalizes separators.
func SanitizeKey(key string) (clean string, err error) {
	if strings.TrimSpace(key) == "" {
		err = errors.New("empty key")
		return clean, err
	}
	if strings.HasPrefix(key, "/") {
		err = errors.Errorf("invalid absolute key: %s", key)
		return clean, err
	}
	clean = path.Clean(strings.ReplaceAll(key, "\\", "/"))
	if clean == ".." || strings.HasPrefix(clean, "../") || strings.Contains(clean, "/../") {
		err = errors.Errorf("invalid key traversal: %s", key)
		return clean, err
	}
	return clean, err
}

// ContentType guesses the MIME type of an artifact from its extension.
func ContentType(key string) (ct string) {
	switch strings.ToLower(path.Ext(key)) {
	case ".csv":
		ct = "text/csv"
	case ".xlsx":
		ct = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".pdf":
		ct = "application/pdf"
	default:
		ct = "text/plain; charset=utf-8"
	}
	return ct
}
