package storage

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/starford/mindvault/internal/checksum"
	"github.com/starford/mindvault/internal/models"
)

// TrashDir holds deleted card files. Being hidden, it is never indexed.
const TrashDir = ".trash"

const tmpPrefix = ".mindvault-tmp-"

// IsCardFile reports whether name is a card file the vault should index:
// a visible .md file. In-flight temp files start with a dot.
func IsCardFile(name string) bool {
	base := filepath.Base(name)
	return strings.HasSuffix(base, ".md") && !strings.HasPrefix(base, ".")
}

// IsHiddenDir reports whether a directory is skipped by listings and the
// watcher (.git, .trash and similar).
func IsHiddenDir(name string) bool {
	base := filepath.Base(name)
	return len(base) > 1 && strings.HasPrefix(base, ".")
}

// FS implements Provider on the local file system.
type FS struct {
	root string // absolute
	now  func() time.Time
}

// NewFS opens the vault at root, which must be an existing directory.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs, now: time.Now}, nil
}

// Root returns the absolute vault directory.
func (f *FS) Root() string { return f.root }

// resolve maps a vault-relative card path to an absolute one. Paths that are
// absolute or climb out of the vault are rejected.
func (f *FS) resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) || path.IsAbs(rel) {
		return "", fmt.Errorf("storage: invalid card path %q", rel)
	}
	abs := filepath.Join(f.root, filepath.FromSlash(rel))
	inside, err := filepath.Rel(f.root, abs)
	if err != nil || inside == "." || inside == ".." || strings.HasPrefix(inside, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes vault root: %s", rel)
	}
	return abs, nil
}

// List implements Provider.
func (f *FS) List() ([]models.CardMetadata, error) {
	var out []models.CardMetadata
	err := filepath.WalkDir(f.root, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if p != f.root && IsHiddenDir(p) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsCardFile(d.Name()) {
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(f.root, p)
		out = append(out, models.CardMetadata{
			Path:     filepath.ToSlash(rel),
			Checksum: checksum.Sum(data),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	return out, nil
}

// Read implements Provider. A missing file wraps fs.ErrNotExist.
func (f *FS) Read(rel string) ([]byte, error) {
	abs, err := f.resolve(rel)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", rel, err)
	}
	return data, nil
}

// Write implements Provider: temp file, fsync, rename. The watcher sees a
// single create or write on the final name.
func (f *FS) Write(rel string, content []byte) error {
	abs, err := f.resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tmpPrefix+"*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	committed = true
	return nil
}

// Trash implements Provider. The file lands in TrashDir under a
// timestamped name so repeated deletes of the same path never collide.
func (f *FS) Trash(rel string) (string, error) {
	abs, err := f.resolve(rel)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("storage: trash %s: %w", rel, err)
	}

	stamp := f.now().UTC().Format("20060102T150405.000000000")
	dst := path.Join(TrashDir, stamp+"-"+strings.ReplaceAll(rel, "/", "_"))
	absDst := filepath.Join(f.root, filepath.FromSlash(dst))
	if err := os.MkdirAll(filepath.Dir(absDst), 0o755); err != nil {
		return "", fmt.Errorf("storage: mkdir trash: %w", err)
	}
	if err := os.Rename(abs, absDst); err != nil {
		return "", fmt.Errorf("storage: trash %s: %w", rel, err)
	}
	return dst, nil
}
