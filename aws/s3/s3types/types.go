// Package s3types provides shared type definitions for the S3 module.
package s3types

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

// Object represents an S3 object with its basic metadata.
type Object struct {
	// Key is the S3 object key (path)
	Key string

	// Size is the object size in bytes
	Size int64

	// LastModified is when the object was last modified
	LastModified time.Time

	// ETag is the S3 entity tag for the object
	ETag string
}

// ListResult contains one page of a ListObjectsV2 call.
type ListResult struct {
	// Objects contains the objects on this page
	Objects []Object

	// IsTruncated indicates whether more pages follow
	IsTruncated bool

	// NextContinuationToken is passed to the next List call when IsTruncated is set
	NextContinuationToken string

	// Duration is how long the list call took
	Duration time.Duration
}

// ClientConfig holds client-level configuration assembled from Options.
type ClientConfig struct {
	Region           string
	Endpoint         string
	AccessKeyID      string
	SecretAccessKey  string
	MaxRetries       int
	Timeout          time.Duration
	ForcePathStyle   bool
	CustomAWSConfig  *aws.Config
	CustomHTTPClient *http.Client
}

// UploadOptionConfig holds configuration for upload operations via functional options.
type UploadOptionConfig struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// ListOptionConfig holds configuration for list operations via functional options.
type ListOptionConfig struct {
	Prefix            string
	MaxKeys           int32
	ContinuationToken string
}

type (
	// Option is a functional option for configuring the S3 client.
	Option func(*ClientConfig)
	// UploadOption is a functional option for configuring S3 upload operations.
	UploadOption func(*UploadOptionConfig)
	// ListOption is a functional option for configuring S3 list operations.
	ListOption func(*ListOptionConfig)
)
