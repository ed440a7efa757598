package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/smithy-go"
)

// AWS error codes mapped to this package's sentinel errors.
const (
	ResourceNotFoundException = "ResourceNotFoundException"
	AccessDeniedException     = "AccessDeniedException"
)

// Client reads secrets. Safe for concurrent use.
type Client struct {
	api    ManagerAPI
	logger *slog.Logger
}

// NewClient creates a client from the default AWS configuration chain.
func NewClient(ctx context.Context, opts ...Option) (*Client, error) {
	o := defaultOptions()
	applyOptions(o, opts)

	var loadOpts []func(*config.LoadOptions) error
	if o.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(o.region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	api := secretsmanager.NewFromConfig(cfg, func(so *secretsmanager.Options) {
		if o.endpoint != "" {
			so.BaseEndpoint = aws.String(o.endpoint)
		}
	})
	return &Client{api: api, logger: o.logger}, nil
}

// NewClientWithAPI creates a client over an existing API implementation.
func NewClientWithAPI(api ManagerAPI, opts ...Option) *Client {
	o := defaultOptions()
	applyOptions(o, opts)
	return &Client{api: api, logger: o.logger}
}

// GetSecretString returns the value of the secret name. Binary secrets are
// returned as their raw bytes.
func (c *Client) GetSecretString(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("secret name cannot be empty")
	}

	c.logger.DebugContext(ctx, "retrieving secret", "secret_name", name)

	out, err := c.api.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		err = translateError(err)
		c.logger.ErrorContext(ctx, "failed to retrieve secret", "secret_name", name, "error", err)
		return "", err
	}

	switch {
	case out.SecretString != nil && *out.SecretString != "":
		c.logger.InfoContext(ctx, "secret retrieved", "secret_name", name)
		return *out.SecretString, nil
	case len(out.SecretBinary) > 0:
		c.logger.InfoContext(ctx, "secret retrieved", "secret_name", name)
		return string(out.SecretBinary), nil
	default:
		return "", fmt.Errorf("GetSecret %s: %w", name, ErrSecretEmpty)
	}
}

// GetSecretJSON decodes the JSON value of the secret name into v.
func (c *Client) GetSecretJSON(ctx context.Context, name string, v any) error {
	value, err := c.GetSecretString(ctx, name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(value), v); err != nil {
		// The decode error may quote the value, so it is not wrapped.
		return fmt.Errorf("secret %s is not valid JSON", name)
	}
	return nil
}

func translateError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case ResourceNotFoundException:
			return ErrSecretNotFound
		case AccessDeniedException:
			return ErrAccessDenied
		}
		return fmt.Errorf("GetSecret operation failed: %s: %s", apiErr.ErrorCode(), apiErr.ErrorMessage())
	}
	return fmt.Errorf("GetSecret operation failed: %w", err)
}
