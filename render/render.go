// Package render produces the artifacts published next to the mirrored
// files: the index page, two status badges and the state snapshot.
package render

import (
	"fmt"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// Artifact keys.
const (
	IndexKey     = "index.html"
	LastSyncKey  = "last-sync.svg"
	SyncCountKey = "sync-count.svg"
	SnapshotKey  = "maps.json"
)

// Options configures the rendered text. Zero values select the defaults.
type Options struct {
	Title          string
	LastSyncLabel  string
	LastSyncBadge  string
	SyncCountBadge string
	// SyncCountFormat formats the item count, e.g. "%d maps".
	SyncCountFormat string
	Location        *time.Location
}

func (o Options) withDefaults() Options {
	if o.Title == "" {
		o.Title = "DDNet map mirror"
	}
	if o.LastSyncLabel == "" {
		o.LastSyncLabel = "Last sync"
	}
	if o.LastSyncBadge == "" {
		o.LastSyncBadge = "last sync"
	}
	if o.SyncCountBadge == "" {
		o.SyncCountBadge = "synced"
	}
	if o.SyncCountFormat == "" {
		o.SyncCountFormat = "%d maps"
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Renderer implements mirrortypes.Renderer.
type Renderer struct {
	opts Options
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	return &Renderer{opts: opts.withDefaults()}
}

// Render returns the index page and both badges for state. The snapshot is
// written separately when state is persisted.
func (r *Renderer) Render(state mirrortypes.State, now time.Time) ([]mirrortypes.Artifact, error) {
	index, err := r.Index(state, now)
	if err != nil {
		return nil, err
	}

	stamp := now.In(r.opts.Location).Format(time.DateTime)
	lastSync, err := Badge(r.opts.LastSyncBadge, stamp, ColorBlue)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", LastSyncKey, err)
	}
	syncCount, err := Badge(r.opts.SyncCountBadge, fmt.Sprintf(r.opts.SyncCountFormat, len(state)), ColorLightGrey)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", SyncCountKey, err)
	}

	return []mirrortypes.Artifact{
		{Key: IndexKey, Data: index, ContentType: "text/html; charset=utf-8"},
		{Key: LastSyncKey, Data: lastSync, ContentType: "image/svg+xml"},
		{Key: SyncCountKey, Data: syncCount, ContentType: "image/svg+xml"},
	}, nil
}

var _ mirrortypes.Renderer = (*Renderer)(nil)
