// Package testutil provides shared test helpers for setting up vaults,
// databases and cards.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/mindvault/internal/index"
	"github.com/starford/mindvault/internal/models"
	"github.com/starford/mindvault/internal/parser"
	"github.com/starford/mindvault/internal/storage"
)

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "mindvault-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// CardOption customizes a card built by NewCard.
type CardOption func(*models.Card)

// NewCard returns a text card with the given id and content.
func NewCard(id, content string, opts ...CardOption) models.Card {
	c := models.Card{
		ID:        id,
		Path:      id + ".md",
		Content:   content,
		Tags:      []string{},
		Type:      models.CardTypeText,
		CreatedAt: "2025-01-01T00:00:00Z",
	}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// WithTitle sets the title.
func WithTitle(title string) CardOption { return func(c *models.Card) { c.Title = title } }

// WithTags sets the user tags.
func WithTags(tags ...string) CardOption { return func(c *models.Card) { c.Tags = tags } }

// WithType sets the card type.
func WithType(typ string) CardOption { return func(c *models.Card) { c.Type = typ } }

// WithCreated sets the creation timestamp.
func WithCreated(ts string) CardOption { return func(c *models.Card) { c.CreatedAt = ts } }

// WriteCards renders cards into the vault so a sync picks them up.
func WriteCards(t *testing.T, store storage.Provider, cards ...models.Card) {
	t.Helper()
	for i := range cards {
		data, err := parser.Render(&cards[i])
		if err != nil {
			t.Fatalf("render %s: %v", cards[i].ID, err)
		}
		if err := store.Write(cards[i].Path, data); err != nil {
			t.Fatalf("write %s: %v", cards[i].Path, err)
		}
	}
}
