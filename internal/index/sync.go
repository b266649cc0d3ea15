package index

import (
	"log/slog"

	"github.com/starford/mindvault/internal/models"
	"github.com/starford/mindvault/internal/parser"
	"github.com/starford/mindvault/internal/storage"
)

// Event kinds reported by Sync, Watch and the card service.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// Event describes one index mutation.
type Event struct {
	Kind string
	ID   string
	Path string
}

// EventCallback is called after an index change driven by the vault.
type EventCallback func(Event)

// Sync walks the vault and brings the index up to date: changed files are
// parsed and upserted, files gone from disk are dropped from the index.
func Sync(db CardIndex, store storage.Provider, logger *slog.Logger) error {
	return syncVault(db, store, logger, nil)
}

// syncVault is Sync that reports every mutation to cb when cb is non-nil.
// The watcher uses it to reconcile after renames.
func syncVault(db CardIndex, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	emit := func(Event) {}
	if cb != nil {
		emit = cb
	}

	metas, err := store.List()
	if err != nil {
		return err
	}
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	onDisk := make(map[string]struct{}, len(metas))
	indexed := 0
	for _, m := range metas {
		onDisk[m.Path] = struct{}{}

		prev, known := checksums[m.Path]
		if known && prev == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		c, err := IndexFile(db, m.Path, data)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		indexed++
		kind := EventUpdated
		if !known {
			kind = EventCreated
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path), slog.String("id", c.ID))
		emit(Event{Kind: kind, ID: c.ID, Path: m.Path})
	}

	removed := 0
	for p := range checksums {
		if _, ok := onDisk[p]; ok {
			continue
		}
		id, err := db.DeleteCardByPath(p)
		if err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		removed++
		logger.Debug("sync: removed stale", slog.String("path", p))
		if id != "" {
			emit(Event{Kind: EventDeleted, ID: id, Path: p})
		}
	}

	if indexed > 0 || removed > 0 || cb == nil {
		logger.Info("sync: done",
			slog.Int("files", len(metas)),
			slog.Int("indexed", indexed),
			slog.Int("removed", removed))
	}
	return nil
}

// IndexFile parses data as the card file at path and upserts it.
func IndexFile(db CardIndex, path string, data []byte) (*models.Card, error) {
	c := parser.Parse(path, data)
	if err := db.UpsertCard(c); err != nil {
		return nil, err
	}
	return c, nil
}
