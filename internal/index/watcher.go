package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/mindvault/internal/storage"
)

const reconcileDelay = 200 * time.Millisecond

// vaultWatcher turns fsnotify events under one vault root into index
// mutations. It is owned by the Watch loop goroutine.
type vaultWatcher struct {
	fsw    *fsnotify.Watcher
	db     CardIndex
	store  storage.Provider
	root   string
	logger *slog.Logger
	emit   EventCallback
}

// Watch keeps the index in step with card files edited outside the
// service until ctx is cancelled. cb (may be nil) sees every index
// mutation the watcher makes.
//
// Directories created at runtime are watched too; hidden ones are not.
// fsnotify reports a rename on the old name only, so a rename drops the old
// row at once and schedules a debounced resync to pick up the new name.
func Watch(ctx context.Context, db CardIndex, store storage.Provider, vaultRoot string, logger *slog.Logger, cb EventCallback) error {
	if cb == nil {
		cb = func(Event) {}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	vw := &vaultWatcher{fsw: fsw, db: db, store: store, root: vaultRoot, logger: logger, emit: cb}
	if err := vw.addTree(vaultRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", vaultRoot))

	reconcile := time.NewTimer(reconcileDelay)
	reconcile.Stop()
	defer reconcile.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case <-reconcile.C:
			if err := syncVault(db, store, logger, cb); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if vw.handle(ev) {
				reconcile.Reset(reconcileDelay)
			}

		case watchErr, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// handle applies one fsnotify event and reports whether a resync is due.
func (vw *vaultWatcher) handle(ev fsnotify.Event) bool {
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			vw.watchNewDir(ev.Name)
			return false
		}
	}
	if !storage.IsCardFile(ev.Name) {
		return false
	}
	rel, ok := vw.rel(ev.Name)
	if !ok {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		vw.index(rel)
	case ev.Op&fsnotify.Remove != 0:
		vw.remove(rel)
	case ev.Op&fsnotify.Rename != 0:
		vw.remove(rel)
		return true
	}
	return false
}

func (vw *vaultWatcher) rel(abs string) (string, bool) {
	rel, err := filepath.Rel(vw.root, abs)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// index reindexes the card at rel. Content the index already holds, such as
// the service's own atomic writes, produces no event.
func (vw *vaultWatcher) index(rel string) {
	data, err := vw.store.Read(rel)
	if err != nil {
		vw.logger.Warn("watcher: read failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	prev, _ := vw.db.GetChecksum(rel)
	c, err := IndexFile(vw.db, rel, data)
	if err != nil {
		vw.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if prev == c.Checksum {
		return
	}
	kind := EventUpdated
	if prev == "" {
		kind = EventCreated
	}
	vw.logger.Debug("watcher: indexed", slog.String("path", rel), slog.String("id", c.ID), slog.String("op", kind))
	vw.emit(Event{Kind: kind, ID: c.ID, Path: rel})
}

// remove drops the row for rel. Group memberships are kept so a card that
// reappears under another name stays in its groups.
func (vw *vaultWatcher) remove(rel string) {
	id, err := vw.db.DeleteCardByPath(rel)
	if err != nil {
		vw.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if id == "" {
		return
	}
	vw.logger.Debug("watcher: deleted", slog.String("path", rel), slog.String("id", id))
	vw.emit(Event{Kind: EventDeleted, ID: id, Path: rel})
}

// watchNewDir starts watching a directory created at runtime and indexes
// the cards that were moved or written into it before the watch began.
func (vw *vaultWatcher) watchNewDir(dir string) {
	if storage.IsHiddenDir(dir) {
		return
	}
	if err := vw.addTree(dir); err != nil {
		vw.logger.Warn("watcher: add new dir failed", slog.String("path", dir), slog.String("error", err.Error()))
		return
	}
	vw.logger.Debug("watcher: watching new dir", slog.String("path", dir))

	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !storage.IsCardFile(p) {
			return nil
		}
		if rel, ok := vw.rel(p); ok {
			vw.index(rel)
		}
		return nil
	})
}

// addTree watches root and every non-hidden directory below it.
func (vw *vaultWatcher) addTree(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && storage.IsHiddenDir(p) {
			return filepath.SkipDir
		}
		return vw.fsw.Add(p)
	})
}
