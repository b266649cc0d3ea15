package index

import (
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"

	"github.com/starford/mindvault/internal/apperr"
	"github.com/starford/mindvault/internal/models"
	"github.com/starford/mindvault/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "mindvault-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"cards", "card_groups", "group_members"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetCard(t *testing.T) {
	db := testDB(t)
	in := &models.Card{
		ID:                "c1",
		Path:              "c1.md",
		Title:             "Hello",
		Content:           "world",
		Caption:           "cap",
		Comment:           "com",
		OCRText:           "ocr",
		Tags:              []string{"go", "test"},
		SemanticTags:      []string{"greeting"},
		CreatedAt:         "2025-03-05T10:00:00Z",
		UpdatedAt:         "2025-03-06",
		Type:              models.CardTypeImage,
		CopyRef:           "c0",
		CopiedAt:          "2025-03-05",
		OriginalCreatedAt: "2024-01-01",
		Checksum:          "abc123",
	}
	if err := db.UpsertCard(in); err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}

	got, err := db.GetCard("c1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if !reflect.DeepEqual(in, got) {
		t.Errorf("card mismatch:\n in = %+v\ngot = %+v", in, got)
	}

	cs, err := db.GetChecksum("c1.md")
	if err != nil || cs != "abc123" {
		t.Errorf("checksum = %q, %v", cs, err)
	}
}

func TestGetCard_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.GetCard("nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUpsertCard_NilTags(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(&models.Card{ID: "n", Path: "n.md"})
	got, err := db.GetCard("n")
	if err != nil {
		t.Fatal(err)
	}
	if got.Tags == nil || got.SemanticTags == nil {
		t.Error("tags should come back non-nil")
	}
}

func TestUpsertCard_IDChangeAtSamePath(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(&models.Card{ID: "old", Path: "x.md", Checksum: "1"})
	if err := db.UpsertCard(&models.Card{ID: "new", Path: "x.md", Checksum: "2"}); err != nil {
		t.Fatalf("UpsertCard: %v", err)
	}
	if _, err := db.GetCard("old"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("old id should be gone")
	}
	all, _ := db.AllCards()
	if len(all) != 1 || all[0].ID != "new" {
		t.Errorf("cards = %+v", all)
	}
}

func TestUpsertCard_MovesPath(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(&models.Card{ID: "m", Path: "a.md", Checksum: "1"})
	_ = db.UpsertCard(&models.Card{ID: "m", Path: "sub/a.md", Checksum: "1"})

	sums, _ := db.AllChecksums()
	if _, ok := sums["a.md"]; ok {
		t.Error("old path still indexed")
	}
	if sums["sub/a.md"] != "1" {
		t.Errorf("checksums = %v", sums)
	}
}

func TestAllCards_Order(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(&models.Card{ID: "b", Path: "b.md", CreatedAt: "2025-02-01"})
	_ = db.UpsertCard(&models.Card{ID: "a", Path: "a.md", CreatedAt: "2025-03-01"})
	_ = db.UpsertCard(&models.Card{ID: "c", Path: "c.md", CreatedAt: "2025-02-01"})

	all, err := db.AllCards()
	if err != nil {
		t.Fatalf("AllCards: %v", err)
	}
	var ids []string
	for _, c := range all {
		ids = append(ids, c.ID)
	}
	if want := []string{"b", "c", "a"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("order = %v, want %v", ids, want)
	}
}

func TestDeleteCardByPath(t *testing.T) {
	db := testDB(t)
	_ = db.UpsertCard(&models.Card{ID: "d", Path: "del.md", Checksum: "x"})

	id, err := db.DeleteCardByPath("del.md")
	if err != nil || id != "d" {
		t.Fatalf("DeleteCardByPath = %q, %v", id, err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted card still has checksum %q", cs)
	}

	id, err = db.DeleteCardByPath("del.md")
	if err != nil || id != "" {
		t.Errorf("second delete = %q, %v", id, err)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestGroups_Lifecycle(t *testing.T) {
	db := testDB(t)
	g := &models.Group{ID: "g1", Name: "Thesis", CardIDs: []string{"a", "b"}}
	if err := db.CreateGroup(g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	if err := db.AddToGroup("g1", []string{"b", "c", "d"}); err != nil {
		t.Fatalf("AddToGroup: %v", err)
	}
	got, err := db.GetGroup("g1")
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if want := []string{"a", "b", "c", "d"}; !reflect.DeepEqual(got.CardIDs, want) {
		t.Errorf("members = %v, want %v", got.CardIDs, want)
	}

	if err := db.RemoveFromGroup("g1", []string{"b", "zzz"}); err != nil {
		t.Fatalf("RemoveFromGroup: %v", err)
	}
	if err := db.RenameGroup("g1", "Thesis v2"); err != nil {
		t.Fatalf("RenameGroup: %v", err)
	}
	got, _ = db.GetGroup("g1")
	if got.Name != "Thesis v2" || !reflect.DeepEqual(got.CardIDs, []string{"a", "c", "d"}) {
		t.Errorf("group = %+v", got)
	}

	if err := db.DeleteGroup("g1"); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := db.GetGroup("g1"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetGroup after delete = %v", err)
	}
	var n int
	_ = db.conn.QueryRow(`SELECT count(*) FROM group_members WHERE group_id = 'g1'`).Scan(&n)
	if n != 0 {
		t.Errorf("memberships left after delete: %d", n)
	}
}

func TestGroups_NotFound(t *testing.T) {
	db := testDB(t)
	if err := db.AddToGroup("missing", []string{"a"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("AddToGroup = %v", err)
	}
	if err := db.RemoveFromGroup("missing", []string{"a"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("RemoveFromGroup = %v", err)
	}
	if err := db.RenameGroup("missing", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("RenameGroup = %v", err)
	}
	if err := db.DeleteGroup("missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("DeleteGroup = %v", err)
	}
}

func TestListGroups(t *testing.T) {
	db := testDB(t)
	groups, err := db.ListGroups()
	if err != nil || groups == nil || len(groups) != 0 {
		t.Fatalf("empty ListGroups = %v, %v", groups, err)
	}

	_ = db.CreateGroup(&models.Group{ID: "2", Name: "beta", CardIDs: []string{"x"}})
	_ = db.CreateGroup(&models.Group{ID: "1", Name: "alpha"})

	groups, _ = db.ListGroups()
	if len(groups) != 2 || groups[0].Name != "alpha" || groups[1].Name != "beta" {
		t.Fatalf("groups = %+v", groups)
	}
	if len(groups[0].CardIDs) != 0 || !reflect.DeepEqual(groups[1].CardIDs, []string{"x"}) {
		t.Errorf("members = %v / %v", groups[0].CardIDs, groups[1].CardIDs)
	}
}

func TestRemoveFromAllGroups(t *testing.T) {
	db := testDB(t)
	_ = db.CreateGroup(&models.Group{ID: "1", Name: "a", CardIDs: []string{"x", "y"}})
	_ = db.CreateGroup(&models.Group{ID: "2", Name: "b", CardIDs: []string{"x"}})

	if err := db.RemoveFromAllGroups("x"); err != nil {
		t.Fatal(err)
	}
	g1, _ := db.GetGroup("1")
	g2, _ := db.GetGroup("2")
	if !reflect.DeepEqual(g1.CardIDs, []string{"y"}) || len(g2.CardIDs) != 0 {
		t.Errorf("members = %v / %v", g1.CardIDs, g2.CardIDs)
	}
}

func TestSync(t *testing.T) {
	db := testDB(t)
	vault := t.TempDir()
	store, err := storage.NewFS(vault)
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("a.md", []byte("---\nid: card-a\ntitle: A\n---\nalpha\n"))
	_ = store.Write("sub/b.md", []byte("beta #tagged\n"))

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	a, err := db.GetCard("card-a")
	if err != nil || a.Title != "A" || a.Path != "a.md" {
		t.Fatalf("card-a = %+v, %v", a, err)
	}
	b, err := db.GetCard("b")
	if err != nil || !reflect.DeepEqual(b.Tags, []string{"tagged"}) {
		t.Fatalf("b = %+v, %v", b, err)
	}

	_, _ = store.Trash("a.md")
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if _, err := db.GetCard("card-a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Error("stale card not removed")
	}
}

func TestSyncVault_ReportsEvents(t *testing.T) {
	db := testDB(t)
	store, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_ = store.Write("a.md", []byte("---\nid: card-a\n---\nalpha\n"))
	_ = store.Write("b.md", []byte("---\nid: card-b\n---\nbeta\n"))
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}

	_ = store.Write("a.md", []byte("---\nid: card-a\n---\nalpha v2\n"))
	_, _ = store.Trash("b.md")
	_ = store.Write("c.md", []byte("---\nid: card-c\n---\ngamma\n"))

	var got []Event
	if err := syncVault(db, store, quietLogger(), func(ev Event) { got = append(got, ev) }); err != nil {
		t.Fatal(err)
	}
	want := []Event{
		{Kind: EventUpdated, ID: "card-a", Path: "a.md"},
		{Kind: EventCreated, ID: "card-c", Path: "c.md"},
		{Kind: EventDeleted, ID: "card-b", Path: "b.md"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %+v, want %+v", got, want)
	}

	got = nil
	_ = syncVault(db, store, quietLogger(), func(ev Event) { got = append(got, ev) })
	if len(got) != 0 {
		t.Errorf("second pass events = %+v", got)
	}
}
