package billy

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func testWriteReadRemove(t *testing.T, s *Spool) {
	t.Helper()

	n, err := s.Write("item-0", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Write = %d bytes, want 5", n)
	}

	b, err := s.ReadFile("item-0")
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(b) != "hello" {
		t.Errorf("ReadFile = %q, want %q", string(b), "hello")
	}

	f, err := s.Open("item-0")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	b, err = io.ReadAll(f)
	_ = f.Close()
	if err != nil || string(b) != "hello" {
		t.Errorf("Open read = %q, %v", string(b), err)
	}

	if e := s.Remove("item-0"); e != nil {
		t.Fatalf("Remove failed: %v", e)
	}
	if e := s.Remove("item-0"); e != nil {
		t.Errorf("second Remove should be a no-op, got %v", e)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after remove, want 0", s.Len())
	}
}

func testRemoveAll(t *testing.T, s *Spool) {
	t.Helper()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := s.Write(name, strings.NewReader(name)); err != nil {
			t.Fatalf("Write %q failed: %v", name, err)
		}
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	if err := s.RemoveAll(); err != nil {
		t.Fatalf("RemoveAll failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after RemoveAll, want 0", s.Len())
	}
	if _, err := s.ReadFile("a"); err == nil {
		t.Errorf("expected ReadFile to fail after RemoveAll")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func testWriteFailureCleansUp(t *testing.T, s *Spool) {
	t.Helper()

	if _, err := s.Write("broken", failingReader{}); err == nil {
		t.Fatalf("expected Write to fail")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after failed write, want 0", s.Len())
	}
	if _, err := s.ReadFile("broken"); err == nil {
		t.Errorf("partial file should have been removed")
	}
}

func TestInMemorySpool(t *testing.T) {
	testWriteReadRemove(t, NewInMemorySpool())
	testRemoveAll(t, NewInMemorySpool())
	testWriteFailureCleansUp(t, NewInMemorySpool())
}

func TestOSSpool(t *testing.T) {
	newSpool := func() *Spool {
		s, err := NewOSSpool(t.TempDir())
		if err != nil {
			t.Fatalf("NewOSSpool failed: %v", err)
		}
		return s
	}

	testWriteReadRemove(t, newSpool())
	testRemoveAll(t, newSpool())
	testWriteFailureCleansUp(t, newSpool())
}
