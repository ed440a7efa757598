// Package testutil provides LocalStack integration test utilities.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/localstack"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
)

// LocalStack wraps a running LocalStack container for S3 tests.
type LocalStack struct {
	container *localstack.LocalStackContainer
	endpoint  string
	region    string
}

// StartLocalStack starts a LocalStack container with S3 enabled.
func StartLocalStack(ctx context.Context) (*LocalStack, error) {
	container, err := localstack.Run(ctx,
		"localstack/localstack:latest",
		testcontainers.WithEnv(map[string]string{"SERVICES": "s3"}),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/_localstack/health").
				WithPort("4566").
				WithStartupTimeout(2*time.Minute),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start LocalStack container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "4566")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}

	return &LocalStack{
		container: container,
		endpoint:  fmt.Sprintf("http://%s:%s", host, port.Port()),
		region:    "us-east-1",
	}, nil
}

// Options returns the client options that point a client at the container.
func (l *LocalStack) Options() []s3types.Option {
	return []s3types.Option{
		func(c *s3types.ClientConfig) {
			c.Region = l.region
			c.Endpoint = l.endpoint
			c.AccessKeyID = "test"
			c.SecretAccessKey = "test"
			c.ForcePathStyle = true
		},
	}
}

// CreateBucket creates a bucket through the raw SDK client, since the
// library itself never manages buckets.
func (l *LocalStack) CreateBucket(ctx context.Context, bucket string) error {
	client := s3.New(s3.Options{
		Region:       l.region,
		BaseEndpoint: aws.String(l.endpoint),
		UsePathStyle: true,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "test", SecretAccessKey: "test"}, nil
		}),
	})

	if _, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// Terminate stops and removes the LocalStack container.
func (l *LocalStack) Terminate(ctx context.Context) error {
	if l.container != nil {
		if err := l.container.Terminate(ctx); err != nil {
			return fmt.Errorf("failed to terminate container: %w", err)
		}
	}
	return nil
}

// SetupLocalStackTest starts LocalStack, creates a fresh bucket and registers
// the container's teardown with t.Cleanup. It skips in short mode.
func SetupLocalStackTest(t *testing.T) (*LocalStack, string) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	ls, err := StartLocalStack(ctx)
	if err != nil {
		t.Fatalf("Failed to create LocalStack container: %v", err)
	}
	t.Cleanup(func() {
		if err := ls.Terminate(context.Background()); err != nil {
			t.Logf("Failed to terminate LocalStack container: %v", err)
		}
	})

	bucket := GenerateTestBucketName("mapmirror")
	if err := ls.CreateBucket(ctx, bucket); err != nil {
		t.Fatalf("Failed to create bucket: %v", err)
	}

	return ls, bucket
}
