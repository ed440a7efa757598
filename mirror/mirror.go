// Package mirror keeps an object store in sync with a remote catalog of map
// files.
//
// A sync run loads the mirrored state, diffs the catalog against it, fetches
// the missing files under bounded concurrency, validates each one against the
// checksum embedded in its filename, uploads and commits it, then renders the
// index page and badges and persists the state snapshot. Items are committed
// strictly in catalog order whatever order their fetches complete in.
//
// Basic usage:
//
//	m := mirror.New(objects, catalog, fetcher, render.New(render.Options{}),
//		mirror.WithMaxInFlight(8),
//		mirror.WithLogger(logger),
//	)
//	result, err := m.Sync(ctx)
package mirror

import (
	"io"
	"log/slog"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/checksum"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/internal/statestore"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/render"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// Spool holds fetched bytes between fetch and upload. *billy.Spool
// implements it.
type Spool interface {
	Write(name string, r io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, error)
	Remove(name string) error
}

// Mirror runs sync and cleanup passes against one object store.
type Mirror struct {
	objects  store.ObjectStore
	catalog  mirrortypes.Catalog
	fetcher  mirrortypes.Fetcher
	renderer mirrortypes.Renderer

	maxInFlight  int
	maxBuffered  int
	ext          string
	snapshotKey  string
	pageSize     int
	spool        Spool
	fetchTimeout time.Duration
	limit        int
	logger       *slog.Logger
	progress     mirrortypes.ProgressReporter
	now          func() time.Time

	validator *checksum.Validator
	states    *statestore.Store
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithMaxInFlight bounds concurrent fetches. Defaults to the CPU count.
func WithMaxInFlight(n int) Option {
	return func(m *Mirror) {
		m.maxInFlight = n
	}
}

// WithMaxBuffered bounds fetches started but not yet consumed. Defaults to
// four times the in-flight limit.
func WithMaxBuffered(n int) Option {
	return func(m *Mirror) {
		m.maxBuffered = n
	}
}

// WithExtension sets the extension of mirrored files.
func WithExtension(ext string) Option {
	return func(m *Mirror) {
		if ext != "" {
			m.ext = ext
		}
	}
}

// WithSnapshotKey sets the key of the state snapshot.
func WithSnapshotKey(key string) Option {
	return func(m *Mirror) {
		if key != "" {
			m.snapshotKey = key
		}
	}
}

// WithPageSize sets the page size used when enumerating the store.
func WithPageSize(n int) Option {
	return func(m *Mirror) {
		m.pageSize = n
	}
}

// WithSpool spools fetched bytes instead of holding them in memory.
func WithSpool(spool Spool) Option {
	return func(m *Mirror) {
		m.spool = spool
	}
}

// WithFetchTimeout bounds a single fetch. A negative value disables it.
func WithFetchTimeout(d time.Duration) Option {
	return func(m *Mirror) {
		m.fetchTimeout = d
	}
}

// WithLimit caps the number of files fetched per run. Zero means no cap.
func WithLimit(n int) Option {
	return func(m *Mirror) {
		m.limit = n
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mirror) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithProgress reports state changes and item outcomes to p.
func WithProgress(p mirrortypes.ProgressReporter) Option {
	return func(m *Mirror) {
		if p != nil {
			m.progress = p
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Mirror) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a Mirror. The renderer may be nil, in which case no artifacts
// are written.
func New(
	objects store.ObjectStore,
	catalog mirrortypes.Catalog,
	fetcher mirrortypes.Fetcher,
	renderer mirrortypes.Renderer,
	opts ...Option,
) *Mirror {
	m := &Mirror{
		objects:     objects,
		catalog:     catalog,
		fetcher:     fetcher,
		renderer:    renderer,
		ext:         mirrortypes.DefaultExtension,
		snapshotKey: render.SnapshotKey,
		pageSize:    store.DefaultPageSize,
		logger:      slog.New(slog.DiscardHandler),
		progress:    nopProgress{},
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.validator = checksum.New(m.ext)
	m.states = statestore.New(objects,
		statestore.WithExtension(m.ext),
		statestore.WithSnapshotKey(m.snapshotKey),
		statestore.WithPageSize(m.pageSize),
		statestore.WithLogger(m.logger),
	)
	return m
}

type nopProgress struct{}

func (nopProgress) StateChanged(_, _ mirrortypes.RunState) {}
func (nopProgress) ItemDone(mirrortypes.ItemReport)        {}
