// Package minio implements store.ObjectStore on a MinIO (or any S3-compatible)
// bucket through minio-go.
package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// Store is a MinIO bucket seen as a flat object store.
type Store struct {
	client *minio.Client
	bucket string
}

// Config holds the connection settings for New.
type Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	Secure          bool
}

// New connects to the MinIO endpoint described by cfg.
func New(cfg Config) (*Store, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("minio: endpoint and bucket are required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client for %s: %w", cfg.Endpoint, err)
	}

	return NewWithClient(client, cfg.Bucket), nil
}

// NewWithClient wraps an existing minio-go client.
func NewWithClient(client *minio.Client, bucket string) *Store {
	return &Store{
		client: client,
		bucket: bucket,
	}
}

// List implements store.ObjectStore. The token is the last key of the
// previous page, passed to MinIO as StartAfter.
func (s *Store) List(ctx context.Context, token string, pageSize int) (*store.ListPage, error) {
	if pageSize <= 0 {
		pageSize = store.DefaultPageSize
	}

	// Stop the listing goroutine once a page plus one lookahead key is read.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	page := &store.ListPage{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		StartAfter: token,
		Recursive:  true,
		MaxKeys:    pageSize,
	}) {
		if obj.Err != nil {
			return nil, translateError(obj.Err)
		}
		if len(page.Objects) == pageSize {
			page.Truncated = true
			page.NextToken = page.Objects[len(page.Objects)-1].Key
			break
		}
		page.Objects = append(page.Objects, store.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}

	return page, nil
}

// Get implements store.ObjectStore.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", key, translateError(err))
	}
	defer func() {
		_ = obj.Close()
	}()

	// minio-go defers the request until the first read, so a missing key
	// surfaces here.
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("minio: get %s: %w", key, translateError(err))
	}
	return data, nil
}

// Put implements store.ObjectStore.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if contentType == "" {
		contentType = store.ContentTypeFor(key, data, "")
	}

	_, err := s.client.PutObject(
		ctx,
		s.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		return fmt.Errorf("minio: put %s: %w", key, translateError(err))
	}
	return nil
}

// Delete implements store.ObjectStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("minio: delete %s: %w", key, translateError(err))
	}
	return nil
}

// translateError maps MinIO "not found" responses onto store.ErrNotFound.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return err
	}
	if resp.Code == "NoSuchKey" || (resp.StatusCode == http.StatusNotFound && resp.Code != "NoSuchBucket") {
		return errors.Join(store.ErrNotFound, err)
	}
	return err
}

var _ store.ObjectStore = (*Store)(nil)
