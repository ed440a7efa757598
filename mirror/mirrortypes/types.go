// Package mirrortypes defines the data model shared by the mirror pipeline
// and its collaborators.
package mirrortypes

import (
	"context"
	"io"
	"sort"
	"time"
)

// DefaultExtension is the extension of mirrored files.
const DefaultExtension = ".map"

// Record describes one mirrored file.
type Record struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// State maps mirrored keys to their records. It only ever holds files that
// were validated and uploaded.
type State map[string]Record

// Has reports whether key is mirrored.
func (s State) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Put adds or replaces r.
func (s State) Put(r Record) {
	s[r.Key] = r
}

// Keys returns the set of mirrored keys.
func (s State) Keys() Set {
	set := make(Set, len(s))
	for k := range s {
		set[k] = struct{}{}
	}
	return set
}

// Clone returns a shallow copy of s.
func (s State) Clone() State {
	c := make(State, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Set is a set of keys.
type Set map[string]struct{}

// NewSet returns a set holding keys.
func NewSet(keys ...string) Set {
	s := make(Set, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether key is in the set.
func (s Set) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Sorted returns the keys in lexical order.
func (s Set) Sorted() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CatalogEntry is one file offered by the catalog. SourceRef is whatever the
// fetcher needs to retrieve it, a URL or a path.
type CatalogEntry struct {
	Filename  string
	SourceRef string
}

// WorkItem is one catalog entry scheduled for fetching. Seq is its position
// in processing order.
type WorkItem struct {
	Entry CatalogEntry
	Seq   int
}

// Content gives access to fetched bytes held by the pipeline.
type Content interface {
	Open() (io.ReadCloser, error)
}

// FetchOutcome is the result of fetching one WorkItem: either Content with
// its Size, or Err.
type FetchOutcome struct {
	Item    WorkItem
	Content Content
	Size    int64
	Err     error
}

// Fetched reports whether the fetch succeeded.
func (o FetchOutcome) Fetched() bool {
	return o.Err == nil
}

// InvalidKind classifies a validation failure.
type InvalidKind string

const (
	InvalidHashMismatch      InvalidKind = "hash-mismatch"
	InvalidCRCMismatch       InvalidKind = "crc-mismatch"
	InvalidPatternNotFound   InvalidKind = "pattern-not-found"
	InvalidUnreadableContent InvalidKind = "unreadable-content"
)

// ValidationOutcome is either Valid or Invalid with a Kind and Reason.
type ValidationOutcome struct {
	Valid  bool
	Kind   InvalidKind
	Reason string
}

// Valid returns a passing outcome.
func Valid() ValidationOutcome {
	return ValidationOutcome{Valid: true}
}

// Invalid returns a failing outcome.
func Invalid(kind InvalidKind, reason string) ValidationOutcome {
	return ValidationOutcome{Kind: kind, Reason: reason}
}

// Artifact is a rendered output written next to the mirrored files.
type Artifact struct {
	Key         string
	Data        []byte
	ContentType string
}

// Catalog lists the files available to mirror, in catalog order.
type Catalog interface {
	List(ctx context.Context) ([]CatalogEntry, error)
}

// Fetcher retrieves the bytes of a catalog entry.
type Fetcher interface {
	Fetch(ctx context.Context, entry CatalogEntry) (io.ReadCloser, error)
}

// Renderer turns the final state into artifacts.
type Renderer interface {
	Render(state State, now time.Time) ([]Artifact, error)
}
