// Package s3 provides functional options for configuring S3 client behavior.
package s3

import (
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// Needed for S3-compatible services such as Tencent COS, MinIO or LocalStack.
func WithEndpoint(endpoint string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithStaticCredentials uses the given key pair instead of the default credential chain.
func WithStaticCredentials(accessKeyID, secretAccessKey string) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.AccessKeyID = accessKeyID
		c.SecretAccessKey = secretAccessKey
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed operations.
// Default is 3 retries.
func WithMaxRetries(maxRetries int) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP timeout for individual S3 operations.
// Default is no timeout (0).
func WithTimeout(timeout time.Duration) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
func WithForcePathStyle(forcePathStyle bool) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
func WithAWSConfig(config *aws.Config) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithCustomHTTPClient allows providing a custom HTTP client.
// It takes precedence over WithTimeout.
func WithCustomHTTPClient(client *http.Client) s3types.Option {
	return func(c *s3types.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithContentType sets the content type for upload operations.
func WithContentType(contentType string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.ContentType = contentType
	}
}

// WithCacheControl sets the Cache-Control header for upload operations.
func WithCacheControl(cacheControl string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		c.CacheControl = cacheControl
	}
}

// WithMetadata sets metadata for upload operations.
func WithMetadata(metadata map[string]string) s3types.UploadOption {
	return func(c *s3types.UploadOptionConfig) {
		if c.Metadata == nil {
			c.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			c.Metadata[k] = v
		}
	}
}

// WithListMaxKeys sets the page size for list operations. S3 caps it at 1000.
func WithListMaxKeys(maxKeys int32) s3types.ListOption {
	return func(c *s3types.ListOptionConfig) {
		if maxKeys > 0 {
			c.MaxKeys = maxKeys
		}
	}
}

// WithContinuationToken resumes a listing from a previous page.
func WithContinuationToken(token string) s3types.ListOption {
	return func(c *s3types.ListOptionConfig) {
		c.ContinuationToken = token
	}
}
