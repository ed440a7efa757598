// Package config loads the mapmirror configuration: built-in defaults, then
// an optional YAML file, then environment variables.
package config

import (
	"time"
	_ "time/tzdata" // time zones resolve without a system database
)

// Storage backends.
const (
	BackendS3    = "s3"
	BackendCOS   = "cos"
	BackendMinIO = "minio"
	BackendLocal = "local"
)

// Config is the mapmirror.yaml configuration file.
type Config struct {
	Catalog Catalog `yaml:"catalog"`
	Storage Storage `yaml:"storage"`
	Sync    Sync    `yaml:"sync"`
	Render  Render  `yaml:"render"`
}

// Catalog selects where map files are listed and fetched from. Dir takes
// precedence over URL.
type Catalog struct {
	URL       string        `yaml:"url,omitempty"`
	Dir       string        `yaml:"dir,omitempty"`
	Extension string        `yaml:"extension,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Storage selects the object store. Unless Upload is set, the local backend
// writing into LocalDir is used whatever Backend says.
type Storage struct {
	Upload  bool   `yaml:"upload"`
	Backend string `yaml:"backend,omitempty"` // "s3", "cos", "minio"

	Bucket         string `yaml:"bucket,omitempty"`
	Region         string `yaml:"region,omitempty"`
	Endpoint       string `yaml:"endpoint,omitempty"`
	Prefix         string `yaml:"prefix,omitempty"`
	ForcePathStyle bool   `yaml:"force_path_style,omitempty"`
	Insecure       bool   `yaml:"insecure,omitempty"`

	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
	// CredentialsSecret names a Secrets Manager secret holding
	// {"access_key_id": ..., "secret_access_key": ...}.
	CredentialsSecret string `yaml:"credentials_secret,omitempty"`

	LocalDir string `yaml:"local_dir,omitempty"`
}

// Sync tunes the sync pipeline.
type Sync struct {
	MaxInFlight  int           `yaml:"max_in_flight,omitempty"`
	MaxBuffered  int           `yaml:"max_buffered,omitempty"`
	Limit        int           `yaml:"limit,omitempty"`
	FetchTimeout time.Duration `yaml:"fetch_timeout,omitempty"`
	PageSize     int           `yaml:"page_size,omitempty"`
	SnapshotKey  string        `yaml:"snapshot_key,omitempty"`
	SpoolDir     string        `yaml:"spool_dir,omitempty"`
}

// Render configures the index page and badges.
type Render struct {
	Title          string `yaml:"title,omitempty"`
	TimeZone       string `yaml:"time_zone,omitempty"`
	LastSyncLabel  string `yaml:"last_sync_label,omitempty"`
	LastSyncBadge  string `yaml:"last_sync_badge,omitempty"`
	SyncCountBadge string `yaml:"sync_count_badge,omitempty"`
}

// Location returns the configured time zone.
func (r Render) Location() (*time.Location, error) {
	if r.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(r.TimeZone)
}

// EffectiveEndpoint returns the storage endpoint, deriving the COS endpoint from the
// region when none is set.
func (s Storage) EffectiveEndpoint() string {
	if s.Endpoint == "" && s.Backend == BackendCOS && s.Region != "" {
		return "https://cos." + s.Region + ".myqcloud.com"
	}
	return s.Endpoint
}
