package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/aws/s3/s3types"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/catalog"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/config"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/fs/billy"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/fs/minio"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/render"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/services/aws/secrets"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// loadConfig reads the configuration named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the logger selected by --log-format, --verbose and --quiet.
func newLogger(w io.Writer) (*slog.Logger, error) {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}
	opts := &slog.HandlerOptions{Level: level}

	switch logFormat {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, errors.Newf(errors.CodeInvalidInput, "unknown log format %q", logFormat)
	}
}

// buildMirror wires the configured catalog, store, spool and renderer. The
// returned func releases the spool.
func buildMirror(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	dryRun bool,
	progress mirrortypes.ProgressReporter,
) (*mirror.Mirror, func(), error) {
	objects, err := buildStore(ctx, cfg, logger, dryRun)
	if err != nil {
		return nil, nil, err
	}

	cat, fetcher, err := buildCatalog(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	loc, err := cfg.Render.Location()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.CodeInvalidConfig, "loading time zone")
	}
	renderer := render.New(render.Options{
		Title:          cfg.Render.Title,
		LastSyncLabel:  cfg.Render.LastSyncLabel,
		LastSyncBadge:  cfg.Render.LastSyncBadge,
		SyncCountBadge: cfg.Render.SyncCountBadge,
		Location:       loc,
	})

	opts := []mirror.Option{
		mirror.WithMaxInFlight(cfg.Sync.MaxInFlight),
		mirror.WithMaxBuffered(cfg.Sync.MaxBuffered),
		mirror.WithLimit(cfg.Sync.Limit),
		mirror.WithFetchTimeout(cfg.Sync.FetchTimeout),
		mirror.WithPageSize(cfg.Sync.PageSize),
		mirror.WithSnapshotKey(cfg.Sync.SnapshotKey),
		mirror.WithExtension(cfg.Catalog.Extension),
		mirror.WithLogger(logger),
		mirror.WithProgress(progress),
	}

	done := func() {}
	if cfg.Sync.SpoolDir != "" {
		spool, err := billy.NewOSSpool(cfg.Sync.SpoolDir)
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeInvalidConfig, "creating spool directory")
		}
		opts = append(opts, mirror.WithSpool(spool))
		done = func() {
			if err := spool.RemoveAll(); err != nil {
				logger.Warn("failed to clean spool", "dir", cfg.Sync.SpoolDir, "error", err)
			}
		}
	}

	return mirror.New(objects, cat, fetcher, renderer, opts...), done, nil
}

func buildCatalog(cfg *config.Config, logger *slog.Logger) (mirrortypes.Catalog, mirrortypes.Fetcher, error) {
	if cfg.Catalog.Dir != "" {
		return catalog.NewLocalDirCatalog(cfg.Catalog.Dir, cfg.Catalog.Extension),
			catalog.NewLocalDirFetcher(cfg.Catalog.Dir), nil
	}

	cat, err := catalog.NewHTTPCatalog(cfg.Catalog.URL,
		catalog.WithExtension(cfg.Catalog.Extension),
		catalog.WithTimeout(cfg.Catalog.Timeout),
		catalog.WithLogger(logger),
	)
	if err != nil {
		return nil, nil, err
	}
	return cat, catalog.NewHTTPFetcher(catalog.WithLogger(logger)), nil
}

// buildStore returns the configured object store. Without uploading, or in
// a dry run, maps are written to the local directory.
func buildStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, dryRun bool) (store.ObjectStore, error) {
	sc := cfg.Storage
	if dryRun || !sc.Upload {
		logger.Info("writing to local directory", "dir", sc.LocalDir)
		local, err := store.NewLocalDir(sc.LocalDir)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "opening local directory")
		}
		return local, nil
	}

	accessKey, secretKey, err := resolveCredentials(ctx, sc, logger)
	if err != nil {
		return nil, err
	}

	switch sc.Backend {
	case config.BackendMinIO:
		ms, err := minio.New(minio.Config{
			Endpoint:        sc.Endpoint,
			AccessKeyID:     accessKey,
			SecretAccessKey: secretKey,
			Region:          sc.Region,
			Bucket:          sc.Bucket,
			Secure:          !sc.Insecure,
		})
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "creating minio client")
		}
		return ms, nil
	default:
		opts := []s3types.Option{s3.WithForcePathStyle(sc.ForcePathStyle)}
		if sc.Region != "" {
			opts = append(opts, s3.WithRegion(sc.Region))
		}
		if endpoint := sc.EffectiveEndpoint(); endpoint != "" {
			opts = append(opts, s3.WithEndpoint(endpoint))
		}
		if accessKey != "" {
			opts = append(opts, s3.WithStaticCredentials(accessKey, secretKey))
		}
		client, err := s3.New(ctx, opts...)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidConfig, "creating s3 client")
		}
		logger.Info("writing to bucket", "backend", sc.Backend, "bucket", sc.Bucket, "region", client.Region())
		return store.NewS3(client, sc.Bucket, store.WithPrefix(sc.Prefix)), nil
	}
}

// storageCredentials is the JSON layout of storage.credentials_secret.
type storageCredentials struct {
	AccessKeyID     string `json:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key"`
}

func resolveCredentials(ctx context.Context, sc config.Storage, logger *slog.Logger) (string, string, error) {
	if sc.CredentialsSecret == "" {
		return sc.AccessKeyID, sc.SecretAccessKey, nil
	}

	client, err := secrets.NewClient(ctx, secrets.WithLogger(logger))
	if err != nil {
		return "", "", errors.Wrap(err, errors.CodeInvalidConfig, "creating secrets client")
	}
	return fetchCredentials(ctx, client, sc.CredentialsSecret)
}

type secretReader interface {
	GetSecretJSON(ctx context.Context, name string, v any) error
}

func fetchCredentials(ctx context.Context, client secretReader, name string) (string, string, error) {
	var creds storageCredentials
	if err := client.GetSecretJSON(ctx, name, &creds); err != nil {
		return "", "", errors.WrapWithContext(err, errors.CodeInvalidConfig, "reading storage credentials",
			map[string]interface{}{"secret": name})
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return "", "", errors.Newf(errors.CodeInvalidConfig, "secret %s lacks access_key_id or secret_access_key", name)
	}
	return creds.AccessKeyID, creds.SecretAccessKey, nil
}
