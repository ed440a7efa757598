// Package s3 provides the main S3 client and core operations.
package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/gabriel-vasile/mimetype"

	s3errors "github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

const (
	// DefaultContentType is the default content type used when content type detection fails
	DefaultContentType = "application/octet-stream"

	// maxListKeys is the S3 upper bound for one ListObjectsV2 page.
	maxListKeys int32 = 1000
)

// Put uploads byte data to S3 with a single PutObject call.
//
// When no content type is given it is derived from the key's extension and,
// failing that, sniffed from the data.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty or key is invalid
//   - ErrAccessDenied: If the credentials lack permission to upload
//   - ErrBucketNotFound: If the specified bucket doesn't exist
//   - Network errors or AWS SDK errors wrapped in Error type
//
// Example:
//
//	err := client.Put(ctx, "maps", "index.html", page,
//	    s3.WithContentType("text/html; charset=utf-8"),
//	)
func (c *Client) Put(ctx context.Context, bucket, key string, data []byte, opts ...s3types.UploadOption) error {
	if bucket == "" {
		return s3errors.NewError("put", s3errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3errors.NewError("put", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	config := &s3types.UploadOptionConfig{
		Metadata: make(map[string]string),
	}
	for _, opt := range opts {
		opt(config)
	}

	if config.ContentType == "" {
		config.ContentType = DetectContentType(key, data)
	}

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(config.ContentType),
	}
	if config.CacheControl != "" {
		input.CacheControl = aws.String(config.CacheControl)
	}
	if len(config.Metadata) > 0 {
		input.Metadata = config.Metadata
	}

	if _, err := c.s3Client.PutObject(ctx, input); err != nil {
		return s3errors.NewError("put", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// Get downloads an entire object from S3 and returns it as a byte slice.
//
// Errors:
//   - ErrInvalidInput: If bucket is empty or key is invalid
//   - ErrObjectNotFound: If the specified object doesn't exist
//   - Network errors or AWS SDK errors wrapped in Error type
func (c *Client) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		return nil, s3errors.NewError("get", s3errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return nil, s3errors.NewError("get", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	output, err := c.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s3errors.NewError("get", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}
	if output.Body == nil {
		return nil, nil
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, s3errors.NewError("get", err).WithBucket(bucket).WithKey(key)
	}

	return data, nil
}

// Delete deletes a single object from S3.
// Deleting a key that does not exist is not an error in S3.
func (c *Client) Delete(ctx context.Context, bucket, key string) error {
	if bucket == "" {
		return s3errors.NewError("delete", s3errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("bucket name cannot be empty")
	}
	if err := validation.ValidateObjectKey(key); err != nil {
		return s3errors.NewError("delete", s3errors.ErrInvalidInput).
			WithBucket(bucket).
			WithKey(key).
			WithMessage(err.Error())
	}

	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return s3errors.NewError("delete", convertAWSError(err)).WithBucket(bucket).WithKey(key)
	}

	return nil
}

// List returns one page of objects. Pass the previous page's
// NextContinuationToken through WithContinuationToken to continue.
//
// Example:
//
//	token := ""
//	for {
//	    page, err := client.List(ctx, "maps", "", s3.WithContinuationToken(token))
//	    if err != nil {
//	        return err
//	    }
//	    // use page.Objects
//	    if !page.IsTruncated {
//	        break
//	    }
//	    token = page.NextContinuationToken
//	}
func (c *Client) List(
	ctx context.Context,
	bucket, prefix string,
	opts ...s3types.ListOption,
) (*s3types.ListResult, error) {
	if bucket == "" {
		return nil, s3errors.NewError("list", s3errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	config := &s3types.ListOptionConfig{
		Prefix:  prefix,
		MaxKeys: maxListKeys,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.MaxKeys <= 0 || config.MaxKeys > maxListKeys {
		config.MaxKeys = maxListKeys
	}

	startTime := time.Now()

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(config.MaxKeys),
	}
	if config.Prefix != "" {
		input.Prefix = aws.String(config.Prefix)
	}
	if config.ContinuationToken != "" {
		input.ContinuationToken = aws.String(config.ContinuationToken)
	}

	result, err := c.s3Client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, s3errors.NewError("list", convertAWSError(err)).WithBucket(bucket)
	}

	listResult := &s3types.ListResult{
		Objects:               make([]s3types.Object, 0, len(result.Contents)),
		IsTruncated:           aws.ToBool(result.IsTruncated),
		NextContinuationToken: aws.ToString(result.NextContinuationToken),
		Duration:              time.Since(startTime),
	}

	for _, obj := range result.Contents {
		listResult.Objects = append(listResult.Objects, s3types.Object{
			Key:          aws.ToString(obj.Key),
			Size:         aws.ToInt64(obj.Size),
			LastModified: aws.ToTime(obj.LastModified),
			ETag:         strings.Trim(aws.ToString(obj.ETag), `"`),
		})
	}

	return listResult, nil
}

// DetectContentType returns the content type for key: the extension's
// registered MIME type if there is one, otherwise a sniff of data.
func DetectContentType(key string, data []byte) string {
	ext := strings.ToLower(path.Ext(key))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	if len(data) > 0 {
		if mt := mimetype.Detect(data); mt != nil {
			return mt.String()
		}
	}

	return DefaultContentType
}

// convertAWSError maps SDK errors onto the package's sentinel errors,
// keeping the original error in the chain.
func convertAWSError(err error) error {
	if err == nil {
		return nil
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return errors.Join(s3errors.ErrObjectNotFound, err)
	}

	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return errors.Join(s3errors.ErrBucketNotFound, err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return errors.Join(s3errors.ErrObjectNotFound, err)
		case "NoSuchBucket":
			return errors.Join(s3errors.ErrBucketNotFound, err)
		case "AccessDenied", "Forbidden":
			return errors.Join(s3errors.ErrAccessDenied, err)
		}
	}

	return err
}
