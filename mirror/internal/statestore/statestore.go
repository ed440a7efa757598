// Package statestore loads and persists the mirror state: from the snapshot
// object when it is readable, otherwise by enumerating the store.
package statestore

import (
	"context"
	"log/slog"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/render"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// Source says where a loaded state came from.
type Source string

const (
	SourceSnapshot    Source = "snapshot"
	SourceEnumeration Source = "enumeration"
)

// Store reads and writes the state of one mirror.
type Store struct {
	objects     store.ObjectStore
	snapshotKey string
	ext         string
	pageSize    int
	logger      *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithSnapshotKey sets the snapshot object key (default maps.json).
func WithSnapshotKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.snapshotKey = key
		}
	}
}

// WithExtension sets the extension of mirrored keys (default .map).
func WithExtension(ext string) Option {
	return func(s *Store) {
		if ext != "" {
			s.ext = ext
		}
	}
}

// WithPageSize sets the enumeration page size (default 1000).
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store over objects.
func New(objects store.ObjectStore, opts ...Option) *Store {
	s := &Store{
		objects:     objects,
		snapshotKey: render.SnapshotKey,
		ext:         mirrortypes.DefaultExtension,
		pageSize:    store.DefaultPageSize,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SnapshotKey returns the key the snapshot is stored under.
func (s *Store) SnapshotKey() string {
	return s.snapshotKey
}

// Load returns the state from the snapshot, falling back to a full
// enumeration when the snapshot is missing or unreadable. Only an
// enumeration failure is returned as an error.
func (s *Store) Load(ctx context.Context) (mirrortypes.State, Source, error) {
	data, err := s.objects.Get(ctx, s.snapshotKey)
	if err == nil {
		state, derr := render.DecodeSnapshot(data, s.ext)
		if derr == nil {
			s.logger.Info("loaded state from snapshot", "key", s.snapshotKey, "records", len(state))
			return state, SourceSnapshot, nil
		}
		err = derr
	}

	if ctx.Err() != nil {
		return nil, "", errors.Wrap(ctx.Err(), errors.CodeStateLoadFailed, "loading state")
	}

	s.logger.Warn("snapshot unavailable, enumerating store", "key", s.snapshotKey, "error", err)

	state, err := s.Enumerate(ctx)
	if err != nil {
		return nil, "", err
	}
	return state, SourceEnumeration, nil
}

// Enumerate lists the whole store, keeping keys with the mirrored extension.
func (s *Store) Enumerate(ctx context.Context) (mirrortypes.State, error) {
	state := make(mirrortypes.State)
	token := ""
	total := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, errors.CodeStateLoadFailed, "enumerating store")
		}

		page, err := s.objects.List(ctx, token, s.pageSize)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeStateLoadFailed, "enumerating store")
		}

		for _, obj := range page.Objects {
			if !strings.HasSuffix(obj.Key, s.ext) {
				continue
			}
			state.Put(mirrortypes.Record{
				Key:          obj.Key,
				LastModified: obj.LastModified,
				Size:         obj.Size,
			})
		}
		total += len(page.Objects)
		s.logger.Debug("store page listed", "objects", total, "records", len(state))

		if !page.Truncated {
			break
		}
		if page.NextToken == "" {
			return nil, errors.New(errors.CodeStateLoadFailed, "truncated listing without continuation token")
		}
		token = page.NextToken
	}

	s.logger.Info("enumerated store", "objects", total, "records", len(state))
	return state, nil
}

// Save writes the snapshot of state.
func (s *Store) Save(ctx context.Context, state mirrortypes.State) error {
	data, err := render.EncodeSnapshot(state)
	if err != nil {
		return errors.Wrap(err, errors.CodeStatePersistFailed, "encoding snapshot")
	}
	if err := s.objects.Put(ctx, s.snapshotKey, data, "application/json"); err != nil {
		return errors.WrapWithContext(err, errors.CodeStatePersistFailed, "writing snapshot",
			map[string]interface{}{"key": s.snapshotKey})
	}
	s.logger.Info("state persisted", "key", s.snapshotKey, "records", len(state))
	return nil
}
