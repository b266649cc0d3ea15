package storage

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/mindvault/internal/checksum"
)

func tempVault(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	v, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return v
}

func TestWriteAndRead(t *testing.T) {
	s := tempVault(t)
	content := []byte("# Hello\nWorld\n")
	if err := s.Write("card.md", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("card.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempVault(t)
	if err := s.Write("a/b/c.md", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestTrash(t *testing.T) {
	s := tempVault(t)
	s.now = func() time.Time { return time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC) }
	_ = s.Write("sub/del.md", []byte("bye"))

	dst, err := s.Trash("sub/del.md")
	if err != nil {
		t.Fatalf("Trash: %v", err)
	}
	if dst != ".trash/20250305T100000.000000000-sub_del.md" {
		t.Errorf("trash path = %q", dst)
	}
	if _, err := s.Read("sub/del.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("read after trash: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(s.Root(), filepath.FromSlash(dst)))
	if err != nil || string(got) != "bye" {
		t.Errorf("trashed content = %q, %v", got, err)
	}

	items, _ := s.List()
	if len(items) != 0 {
		t.Errorf("trash should not be listed: %+v", items)
	}
}

func TestTrash_Missing(t *testing.T) {
	s := tempVault(t)
	if _, err := s.Trash("nope.md"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestList(t *testing.T) {
	s := tempVault(t)
	_ = s.Write("a.md", []byte("a"))
	_ = s.Write("sub/b.md", []byte("b"))
	_ = s.Write("readme.txt", []byte("not md"))
	_ = s.Write(".trash/gone.md", []byte("hidden dir"))
	_ = s.Write(".draft.md", []byte("hidden file"))

	items, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(items), items)
	}
	if items[0].Path != "a.md" || items[1].Path != "sub/b.md" {
		t.Errorf("paths = %q, %q", items[0].Path, items[1].Path)
	}
	if items[0].Checksum != checksum.Sum([]byte("a")) {
		t.Errorf("checksum = %q", items[0].Checksum)
	}
}

func TestIsCardFile(t *testing.T) {
	cases := map[string]bool{
		"a.md":                    true,
		"dir/b.md":                true,
		"c.txt":                   false,
		".hidden.md":              false,
		".mindvault-tmp-123":      false,
		"dir/.mindvault-tmp-1.md": false,
	}
	for name, want := range cases {
		if got := IsCardFile(name); got != want {
			t.Errorf("IsCardFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestRoot(t *testing.T) {
	s := tempVault(t)
	if !filepath.IsAbs(s.Root()) {
		t.Errorf("root %q is not absolute", s.Root())
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempVault(t)

	cases := []string{
		"",
		"../../etc/passwd",
		"../outside.md",
		"sub/../../outside.md",
		"/etc/shadow",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
		if _, err := s.Trash(p); err == nil {
			t.Errorf("expected error for trash of %q", p)
		}
	}
}

func TestAtomicWriteNoCorruption(t *testing.T) {
	// Verify that if we read during a write the old content is intact
	// (the rename is atomic on POSIX).
	s := tempVault(t)
	original := []byte("original content")
	_ = s.Write("atomic.md", original)

	// Overwrite with new content.
	updated := []byte("updated content")
	if err := s.Write("atomic.md", updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.md")
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	// Confirm no leftover temp files.
	matches, _ := filepath.Glob(filepath.Join(s.root, tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS("/tmp/mindvault-does-not-exist-" + t.Name())
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "mindvault-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}
