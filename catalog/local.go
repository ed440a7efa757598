package catalog

import (
	"context"
	"io"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// LocalCatalog lists the files with the mirrored extension at the top level
// of a directory.
type LocalCatalog struct {
	fs  billy.Filesystem
	ext string
}

// NewLocalCatalog creates a catalog over fsys. An empty ext selects the
// default extension.
func NewLocalCatalog(fsys billy.Filesystem, ext string) *LocalCatalog {
	if ext == "" {
		ext = mirrortypes.DefaultExtension
	}
	return &LocalCatalog{fs: fsys, ext: ext}
}

// NewLocalDirCatalog creates a catalog over the directory dir.
func NewLocalDirCatalog(dir, ext string) *LocalCatalog {
	return NewLocalCatalog(osfs.New(dir), ext)
}

// List implements mirrortypes.Catalog. Entries are sorted by name and their
// SourceRef is the path relative to the directory.
func (c *LocalCatalog) List(ctx context.Context) ([]mirrortypes.CatalogEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := c.fs.ReadDir("/")
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeNotFound, "reading catalog directory",
			map[string]interface{}{"dir": c.fs.Root()})
	}

	var entries []mirrortypes.CatalogEntry
	for _, info := range infos {
		if info.IsDir() || !strings.HasSuffix(info.Name(), c.ext) {
			continue
		}
		entries = append(entries, mirrortypes.CatalogEntry{
			Filename:  info.Name(),
			SourceRef: info.Name(),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Filename < entries[j].Filename })
	return entries, nil
}

// LocalFetcher opens entries whose SourceRef is a path within a directory.
type LocalFetcher struct {
	fs billy.Filesystem
}

// NewLocalFetcher creates a fetcher over fsys.
func NewLocalFetcher(fsys billy.Filesystem) *LocalFetcher {
	return &LocalFetcher{fs: fsys}
}

// Fetch implements mirrortypes.Fetcher.
func (f *LocalFetcher) Fetch(ctx context.Context, entry mirrortypes.CatalogEntry) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := f.fs.Open(entry.SourceRef)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeNotFound, "opening file",
			map[string]interface{}{"path": entry.SourceRef})
	}
	return file, nil
}

// NewLocalDirFetcher creates a fetcher over the directory dir.
func NewLocalDirFetcher(dir string) *LocalFetcher {
	return NewLocalFetcher(osfs.New(dir))
}
