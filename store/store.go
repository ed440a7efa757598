// Package store defines the object store the mirror writes into and its
// backends: S3-compatible buckets, MinIO (see fs/minio) and a local
// directory used for dry runs.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3"
)

// DefaultPageSize is the listing page size when none is given.
const DefaultPageSize = 1000

var (
	// ErrNotFound is returned by Get when the key does not exist.
	ErrNotFound = errors.New("store: object not found")
	// ErrAccessDenied means the backend refused the credentials.
	ErrAccessDenied = errors.New("store: access denied")
	// ErrInvalidKey means the backend rejected the key or bucket name.
	ErrInvalidKey = errors.New("store: invalid key")
)

// ObjectInfo describes one stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ListPage is one page of a listing. NextToken is only meaningful when
// Truncated is set.
type ListPage struct {
	Objects   []ObjectInfo
	NextToken string
	Truncated bool
}

// ObjectStore is the flat key/value store maps are mirrored into.
// Implementations must be safe for concurrent use.
type ObjectStore interface {
	// List returns one page of keys, starting after token ("" for the first page).
	List(ctx context.Context, token string, pageSize int) (*ListPage, error)
	// Get returns the object's bytes or an error wrapping ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put creates or replaces key.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
}

// ContentTypeFor picks the content type to upload key with. Mirrored files
// (those ending in mirrorExt) are always application/octet-stream; other keys
// are typed by extension and, failing that, by sniffing data.
func ContentTypeFor(key string, data []byte, mirrorExt string) string {
	if mirrorExt != "" && strings.HasSuffix(key, mirrorExt) {
		return s3.DefaultContentType
	}
	return s3.DetectContentType(key, data)
}
