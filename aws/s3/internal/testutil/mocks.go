// Package testutil holds fakes and fixtures for the S3 client tests.
package testutil

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/internal/s3api"
)

type optFns = []func(*s3.Options)

// MockS3Client answers each call with the matching func field, or with an
// empty output when the field is nil.
type MockS3Client struct {
	PutObjectFunc     func(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObjectFunc     func(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObjectFunc  func(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2Func func(context.Context, *s3.ListObjectsV2Input, ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var _ s3api.S3API = (*MockS3Client)(nil)

func (m *MockS3Client) PutObject(ctx context.Context, in *s3.PutObjectInput, fns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return call(m.PutObjectFunc, ctx, in, fns)
}

func (m *MockS3Client) GetObject(ctx context.Context, in *s3.GetObjectInput, fns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return call(m.GetObjectFunc, ctx, in, fns)
}

func (m *MockS3Client) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, fns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return call(m.DeleteObjectFunc, ctx, in, fns)
}

func (m *MockS3Client) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, fns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	return call(m.ListObjectsV2Func, ctx, in, fns)
}

func call[In, Out any](fn func(context.Context, In, ...func(*s3.Options)) (*Out, error), ctx context.Context, in In, fns optFns) (*Out, error) {
	if fn == nil {
		return new(Out), nil
	}
	return fn(ctx, in, fns...)
}
