// Package s3 provides client initialization and configuration.
package s3

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/internal/s3api"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

// Client represents an S3 client with configurable options.
// It is safe for concurrent use; the underlying AWS SDK client is.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config
}

// New creates a new S3 client with the provided options.
// Credentials come from the options when both keys are set, otherwise from
// the default AWS credential chain.
//
// Example:
//
//	client, err := s3.New(ctx,
//	    s3.WithRegion("ap-shanghai"),
//	    s3.WithEndpoint("https://cos.ap-shanghai.myqcloud.com"),
//	)
func New(ctx context.Context, opts ...s3types.Option) (*Client, error) {
	clientCfg := &s3types.ClientConfig{
		MaxRetries:     3,
		ForcePathStyle: false,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		var loadOpts []func(*config.LoadOptions) error
		if clientCfg.AccessKeyID != "" && clientCfg.SecretAccessKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(clientCfg.AccessKeyID, clientCfg.SecretAccessKey, ""),
			))
		}
		cfg, err = config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.NewError("client initialization", err)
		}
	}

	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	return &Client{
		s3Client: s3.NewFromConfig(cfg, s3Opts...),
		config:   cfg,
	}, nil
}

// NewWithClient creates a new S3 client with a custom S3API implementation.
// This is primarily used for testing with mocked clients.
func NewWithClient(s3Client s3api.S3API) *Client {
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
	}
}

// Region returns the region the client was configured with.
func (c *Client) Region() string {
	return c.config.Region
}
