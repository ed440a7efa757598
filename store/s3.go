package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3"
	s3errors "github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

// S3Client is the part of *s3.Client the S3 backend uses.
type S3Client interface {
	Put(ctx context.Context, bucket, key string, data []byte, opts ...s3types.UploadOption) error
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	List(ctx context.Context, bucket, prefix string, opts ...s3types.ListOption) (*s3types.ListResult, error)
}

var _ S3Client = (*s3.Client)(nil)

// S3 stores objects in an S3-compatible bucket, optionally under a key prefix.
type S3 struct {
	client S3Client
	bucket string
	prefix string
}

// S3Option configures an S3 backend.
type S3Option func(*S3)

// WithPrefix stores every key under prefix. The prefix is stripped again
// from listed keys.
func WithPrefix(prefix string) S3Option {
	return func(s *S3) {
		if prefix != "" && !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		s.prefix = prefix
	}
}

// NewS3 creates an S3 backend for bucket.
func NewS3(client S3Client, bucket string, opts ...S3Option) *S3 {
	s := &S3{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List implements ObjectStore.
func (s *S3) List(ctx context.Context, token string, pageSize int) (*ListPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	result, err := s.client.List(ctx, s.bucket, s.prefix,
		s3.WithListMaxKeys(int32(min(pageSize, DefaultPageSize))), //nolint:gosec // bounded above
		s3.WithContinuationToken(token),
	)
	if err != nil {
		return nil, s.translate("listing bucket "+s.bucket, err)
	}

	page := &ListPage{
		Objects:   make([]ObjectInfo, 0, len(result.Objects)),
		NextToken: result.NextContinuationToken,
		Truncated: result.IsTruncated,
	}
	for _, obj := range result.Objects {
		page.Objects = append(page.Objects, ObjectInfo{
			Key:          strings.TrimPrefix(obj.Key, s.prefix),
			Size:         obj.Size,
			LastModified: obj.LastModified,
		})
	}
	return page, nil
}

// Get implements ObjectStore.
func (s *S3) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.bucket, s.prefix+key)
	if err != nil {
		return nil, s.translate("getting "+key, err)
	}
	return data, nil
}

// Put implements ObjectStore.
func (s *S3) Put(ctx context.Context, key string, data []byte, contentType string) error {
	var opts []s3types.UploadOption
	if contentType != "" {
		opts = append(opts, s3.WithContentType(contentType))
	}
	if err := s.client.Put(ctx, s.bucket, s.prefix+key, data, opts...); err != nil {
		return s.translate("putting "+key, err)
	}
	return nil
}

// Delete implements ObjectStore.
func (s *S3) Delete(ctx context.Context, key string) error {
	if err := s.client.Delete(ctx, s.bucket, s.prefix+key); err != nil {
		return s.translate("deleting "+key, err)
	}
	return nil
}

// translate puts the matching store sentinel in front of an S3 error.
func (s *S3) translate(what string, err error) error {
	switch {
	case s3errors.IsObjectNotFound(err):
		return fmt.Errorf("%s: %w: %w", what, ErrNotFound, err)
	case s3errors.IsAccessDenied(err):
		return fmt.Errorf("%s: %w: %w", what, ErrAccessDenied, err)
	case s3errors.IsInvalidInput(err):
		return fmt.Errorf("%s: %w: %w", what, ErrInvalidKey, err)
	}
	return fmt.Errorf("%s: %w", what, err)
}
