package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Local stores objects as files in a directory. Keys map to slash-separated
// relative paths. It backs dry runs, where nothing is uploaded.
type Local struct {
	fs billy.Filesystem
	mu sync.RWMutex
}

// NewLocal creates a Local store on fsys.
func NewLocal(fsys billy.Filesystem) *Local {
	return &Local{fs: fsys}
}

// NewLocalDir creates a Local store rooted at dir, creating it if needed.
func NewLocalDir(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dir, err)
	}
	return NewLocal(osfs.New(dir)), nil
}

// NewMemory creates a Local store held in memory.
func NewMemory() *Local {
	return NewLocal(memfs.New())
}

// List implements ObjectStore. Keys are returned in lexical order and the
// token is the last key of the previous page.
func (l *Local) List(ctx context.Context, token string, pageSize int) (*ListPage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	l.mu.RLock()
	var objects []ObjectInfo
	err := util.Walk(l.fs, "/", func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		objects = append(objects, ObjectInfo{
			Key:          strings.TrimPrefix(path.Clean("/"+toSlash(p)), "/"),
			Size:         info.Size(),
			LastModified: info.ModTime(),
		})
		return nil
	})
	l.mu.RUnlock()
	// An in-memory filesystem has no root until the first write.
	if err != nil && !(errors.Is(err, os.ErrNotExist) && len(objects) == 0) {
		return nil, fmt.Errorf("walking local store: %w", err)
	}

	sort.Slice(objects, func(i, j int) bool { return objects[i].Key < objects[j].Key })

	start := sort.Search(len(objects), func(i int) bool { return objects[i].Key > token })
	end := min(start+pageSize, len(objects))

	page := &ListPage{Objects: objects[start:end]}
	if end < len(objects) {
		page.Truncated = true
		page.NextToken = objects[end-1].Key
	}
	return page, nil
}

// Get implements ObjectStore.
func (l *Local) Get(_ context.Context, key string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	data, err := util.ReadFile(l.fs, key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return data, nil
}

// Put implements ObjectStore. The content type is not recorded.
func (l *Local) Put(_ context.Context, key string, data []byte, _ string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := path.Dir(key); dir != "." {
		if err := l.fs.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(l.fs, key, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete implements ObjectStore. Deleting a missing key is not an error.
func (l *Local) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.fs.Remove(key); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}
