// Package billy provides a scratch spool on top of go-billy. Fetched map
// files are written here while they wait for validation and upload, so the
// number of buffered items bounds disk usage rather than memory.
package billy

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Spool is a flat directory of scratch files. It tracks every file it
// creates so RemoveAll can clean up after a cancelled run. Safe for
// concurrent use.
type Spool struct {
	fs billy.Filesystem

	mu    sync.Mutex
	files map[string]struct{}
}

// Write creates name and copies r into it, returning the number of bytes
// written. A partially written file is removed on error.
func (s *Spool) Write(name string, r io.Reader) (int64, error) {
	s.mu.Lock()
	f, err := s.fs.Create(name)
	if err == nil {
		s.files[name] = struct{}{}
	}
	s.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("billy: create %q: %w", name, err)
	}

	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("billy: close %q: %w", name, cerr)
	}
	if err != nil {
		_ = s.Remove(name)
		return n, fmt.Errorf("billy: write %q: %w", name, err)
	}

	return n, nil
}

// Open opens name for reading.
//
//nolint:ireturn // callers only need the reader.
func (s *Spool) Open(name string) (io.ReadCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := s.fs.Open(name)
	if err != nil {
		return nil, fmt.Errorf("billy: open %q: %w", name, err)
	}
	return f, nil
}

// ReadFile returns the full contents of name.
func (s *Spool) ReadFile(name string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bts, err := util.ReadFile(s.fs, name)
	if err != nil {
		return nil, fmt.Errorf("billy: readfile %q: %w", name, err)
	}
	return bts, nil
}

// Remove deletes name. Removing a file that does not exist is not an error.
func (s *Spool) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.files, name)
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("billy: remove %q: %w", name, err)
	}
	return nil
}

// RemoveAll deletes every file this spool created and has not yet removed.
func (s *Spool) RemoveAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name := range s.files {
		if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) && firstErr == nil {
			firstErr = fmt.Errorf("billy: remove %q: %w", name, err)
		}
		delete(s.files, name)
	}
	return firstErr
}

// Len returns the number of files currently held.
func (s *Spool) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// NewSpool creates a Spool on the given go-billy filesystem.
func NewSpool(fsys billy.Filesystem) *Spool {
	return &Spool{
		fs:    fsys,
		files: make(map[string]struct{}),
	}
}

// NewInMemorySpool creates a Spool backed by memory.
func NewInMemorySpool() *Spool {
	return NewSpool(memfs.New())
}

// NewOSSpool creates a Spool rooted at dir, creating dir if needed.
func NewOSSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("billy: mkdirall %q: %w", dir, err)
	}
	return NewSpool(osfs.New(dir)), nil
}
