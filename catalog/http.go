package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

const (
	// DefaultURL is the DDNet map listing.
	DefaultURL = "https://maps.ddnet.org/"

	// DefaultTimeout bounds the listing request.
	DefaultTimeout = 60 * time.Second
)

// HTTPOption configures HTTPCatalog and HTTPFetcher.
type HTTPOption func(*httpOptions)

type httpOptions struct {
	client  *http.Client
	ext     string
	timeout time.Duration
	logger  *slog.Logger
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(o *httpOptions) {
		if c != nil {
			o.client = c
		}
	}
}

// WithExtension sets the extension of listed files.
func WithExtension(ext string) HTTPOption {
	return func(o *httpOptions) {
		if ext != "" {
			o.ext = ext
		}
	}
}

// WithTimeout bounds the listing request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(o *httpOptions) {
		o.timeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) HTTPOption {
	return func(o *httpOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func newHTTPOptions(opts []HTTPOption) httpOptions {
	o := httpOptions{
		client:  http.DefaultClient,
		ext:     mirrortypes.DefaultExtension,
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// HTTPCatalog lists the files linked from an HTML directory listing.
type HTTPCatalog struct {
	base *url.URL
	opts httpOptions
}

// NewHTTPCatalog creates a catalog for the listing at rawURL.
func NewHTTPCatalog(rawURL string, opts ...HTTPOption) (*HTTPCatalog, error) {
	base, err := parseBase(rawURL)
	if err != nil {
		return nil, err
	}
	return &HTTPCatalog{base: base, opts: newHTTPOptions(opts)}, nil
}

// List fetches the listing page and returns one entry per linked file. Each
// SourceRef is the file's absolute URL.
func (c *HTTPCatalog) List(ctx context.Context) ([]mirrortypes.CatalogEntry, error) {
	if c.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.timeout)
		defer cancel()
	}

	body, err := get(ctx, c.opts.client, c.base.String())
	if err != nil {
		return nil, err
	}
	defer body.Close()

	names, err := ParseListing(body, c.opts.ext)
	if err != nil {
		return nil, err
	}

	entries := make([]mirrortypes.CatalogEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, mirrortypes.CatalogEntry{
			Filename:  name,
			SourceRef: c.base.JoinPath(url.PathEscape(name)).String(),
		})
	}
	c.opts.logger.Info("catalog listed", "url", c.base.String(), "files", len(entries))
	return entries, nil
}

// HTTPFetcher downloads entries whose SourceRef is a URL.
type HTTPFetcher struct {
	opts httpOptions
}

// NewHTTPFetcher creates a fetcher. The timeout option is not applied here;
// the mirror bounds each fetch itself.
func NewHTTPFetcher(opts ...HTTPOption) *HTTPFetcher {
	return &HTTPFetcher{opts: newHTTPOptions(opts)}
}

// Fetch implements mirrortypes.Fetcher.
func (f *HTTPFetcher) Fetch(ctx context.Context, entry mirrortypes.CatalogEntry) (io.ReadCloser, error) {
	return get(ctx, f.opts.client, entry.SourceRef)
}

func get(ctx context.Context, client *http.Client, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "building request")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeNetwork, "request failed",
			map[string]interface{}{"url": rawURL})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()

		code := errors.CodeNetwork
		if resp.StatusCode == http.StatusNotFound {
			code = errors.CodeNotFound
		}
		return nil, errors.Newf(code, "GET %s: %s", rawURL, resp.Status)
	}
	return resp.Body, nil
}

func parseBase(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "parsing catalog url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf(errors.CodeInvalidConfig, "catalog url %q must be http or https", rawURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}
