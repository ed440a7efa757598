package secrets

import (
	"log/slog"
)

// Option configures a Client.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	region   string
	endpoint string
}

func defaultOptions() *options {
	return &options{
		logger: slog.New(slog.DiscardHandler),
	}
}

func applyOptions(o *options, opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRegion overrides the region from the default AWS configuration.
func WithRegion(region string) Option {
	return func(o *options) {
		o.region = region
	}
}

// WithEndpoint points the client at a custom endpoint such as LocalStack.
func WithEndpoint(endpoint string) Option {
	return func(o *options) {
		o.endpoint = endpoint
	}
}
