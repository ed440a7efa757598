package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
)

// DefaultFile is the config file looked up under the XDG config dirs when no
// path is given.
const DefaultFile = "mapmirror/config.yaml"

// LookupEnv reads an environment variable. os.LookupEnv satisfies it.
type LookupEnv func(key string) (string, bool)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Catalog: Catalog{
			URL:       "https://maps.ddnet.org/",
			Extension: ".map",
			Timeout:   60 * time.Second,
		},
		Storage: Storage{
			Backend:  BackendS3,
			LocalDir: "./tmp",
		},
		Sync: Sync{
			FetchTimeout: 60 * time.Second,
			PageSize:     1000,
			SnapshotKey:  "maps.json",
			SpoolDir:     filepath.Join(xdg.CacheHome, "mapmirror", "spool"),
		},
		Render: Render{
			Title:    "DDNet map mirror",
			TimeZone: "Asia/Shanghai",
		},
	}
}

// Load reads the configuration from path and the process environment. An
// empty path searches the XDG config dirs for DefaultFile; finding none is
// not an error.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment.
func LoadWithEnv(path string, env LookupEnv) (*Config, error) {
	cfg := Default()

	if path == "" {
		if found, err := xdg.SearchConfigFile(DefaultFile); err == nil {
			path = found
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			code := errors.CodeInvalidConfig
			if errors.Is(err, fs.ErrNotExist) {
				code = errors.CodeNotFound
			}
			return nil, errors.WrapWithContext(err, code, "reading config",
				map[string]interface{}{"path": path})
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "parsing config",
				map[string]interface{}{"path": path})
		}
	}

	if err := applyEnv(cfg, env); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides cfg from the environment. The COS_* names and TMP_PATH
// and UPLOAD are kept for compatibility with existing deployments.
func applyEnv(cfg *Config, env LookupEnv) error {
	var problems []string

	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := env(k); ok && v != "" {
				*dst = v
				return
			}
		}
	}
	num := func(dst *int, key string) {
		if v, ok := env(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %q is not an integer", key, v))
				return
			}
			*dst = n
		}
	}
	dur := func(dst *time.Duration, key string) {
		if v, ok := env(key); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				problems = append(problems, fmt.Sprintf("%s: %q is not a duration", key, v))
				return
			}
			*dst = d
		}
	}

	str(&cfg.Storage.AccessKeyID, "MAPMIRROR_ACCESS_KEY_ID", "COS_SECRET")
	str(&cfg.Storage.SecretAccessKey, "MAPMIRROR_SECRET_ACCESS_KEY", "COS_SECRET_KEY")
	str(&cfg.Storage.Region, "MAPMIRROR_REGION", "COS_REGION")
	str(&cfg.Storage.Bucket, "MAPMIRROR_BUCKET", "COS_MAP_BUCKET")
	str(&cfg.Storage.LocalDir, "MAPMIRROR_LOCAL_DIR", "TMP_PATH")
	str(&cfg.Storage.Backend, "MAPMIRROR_BACKEND")
	str(&cfg.Storage.Endpoint, "MAPMIRROR_ENDPOINT")
	str(&cfg.Storage.Prefix, "MAPMIRROR_PREFIX")
	str(&cfg.Storage.CredentialsSecret, "MAPMIRROR_CREDENTIALS_SECRET")
	str(&cfg.Catalog.URL, "MAPMIRROR_CATALOG_URL")
	str(&cfg.Catalog.Dir, "MAPMIRROR_CATALOG_DIR")
	str(&cfg.Sync.SpoolDir, "MAPMIRROR_SPOOL_DIR")
	str(&cfg.Render.TimeZone, "MAPMIRROR_TIME_ZONE")
	num(&cfg.Sync.MaxInFlight, "MAPMIRROR_MAX_IN_FLIGHT")
	num(&cfg.Sync.MaxBuffered, "MAPMIRROR_MAX_BUFFERED")
	num(&cfg.Sync.Limit, "MAPMIRROR_LIMIT")
	dur(&cfg.Sync.FetchTimeout, "MAPMIRROR_FETCH_TIMEOUT")

	// Any non-empty UPLOAD enables uploading, as before.
	if v, ok := env("UPLOAD"); ok && v != "" {
		cfg.Storage.Upload = true
	}
	if _, ok := env("COS_REGION"); ok && cfg.Storage.Backend == BackendS3 && cfg.Storage.Endpoint == "" {
		cfg.Storage.Backend = BackendCOS
	}

	if len(problems) > 0 {
		return errors.Wrap(&ValidationError{Errors: problems}, errors.CodeInvalidConfig, "invalid environment")
	}
	return nil
}

// ValidationError holds every problem found in a configuration.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// Validate checks cfg and reports all problems at once as an
// INVALID_CONFIGURATION error.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Catalog.Dir == "" && cfg.Catalog.URL == "" {
		errs = append(errs, "catalog: either 'url' or 'dir' is required")
	}
	if !strings.HasPrefix(cfg.Catalog.Extension, ".") {
		errs = append(errs, fmt.Sprintf("catalog: extension %q must start with '.'", cfg.Catalog.Extension))
	}

	if cfg.Storage.Upload {
		switch cfg.Storage.Backend {
		case BackendS3, BackendCOS, BackendMinIO:
		default:
			errs = append(errs, fmt.Sprintf("storage: unknown backend %q", cfg.Storage.Backend))
		}
		if cfg.Storage.Bucket == "" {
			errs = append(errs, "storage: 'bucket' is required when uploading")
		}
		if cfg.Storage.Backend == BackendCOS && cfg.Storage.Region == "" {
			errs = append(errs, "storage: 'region' is required for the cos backend")
		}
		if cfg.Storage.Backend == BackendMinIO && cfg.Storage.Endpoint == "" {
			errs = append(errs, "storage: 'endpoint' is required for the minio backend")
		}
		if (cfg.Storage.AccessKeyID == "") != (cfg.Storage.SecretAccessKey == "") {
			errs = append(errs, "storage: 'access_key_id' and 'secret_access_key' must be set together")
		}
	} else if cfg.Storage.LocalDir == "" {
		errs = append(errs, "storage: 'local_dir' is required when not uploading")
	}

	if cfg.Sync.MaxInFlight < 0 {
		errs = append(errs, "sync: 'max_in_flight' must not be negative")
	}
	if cfg.Sync.MaxBuffered < 0 {
		errs = append(errs, "sync: 'max_buffered' must not be negative")
	}
	if cfg.Sync.MaxBuffered > 0 && cfg.Sync.MaxBuffered < cfg.Sync.MaxInFlight {
		errs = append(errs, "sync: 'max_buffered' must be at least 'max_in_flight'")
	}
	if cfg.Sync.Limit < 0 {
		errs = append(errs, "sync: 'limit' must not be negative")
	}
	if cfg.Sync.PageSize < 0 || cfg.Sync.PageSize > 1000 {
		errs = append(errs, "sync: 'page_size' must be between 1 and 1000")
	}

	if _, err := cfg.Render.Location(); err != nil {
		errs = append(errs, fmt.Sprintf("render: unknown time zone %q", cfg.Render.TimeZone))
	}

	if len(errs) > 0 {
		return errors.Wrap(&ValidationError{Errors: errs}, errors.CodeInvalidConfig, "invalid configuration")
	}
	return nil
}
