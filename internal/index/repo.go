package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/starford/mindvault/internal/apperr"
	"github.com/starford/mindvault/internal/models"
)

const cardColumns = `id, path, checksum, title, content, caption, comment, ocr_text,
	tags, semantic_tags, created_at, updated_at, type, copy_ref, copied_at, original_created_at`

// UpsertCard inserts or replaces a card. A different card previously indexed
// at the same path is dropped first, so a file whose id changed is re-keyed.
func (db *DB) UpsertCard(c *models.Card) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM cards WHERE path = ? AND id <> ?`, c.Path, c.ID); err != nil {
		return fmt.Errorf("index: clear path: %w", err)
	}

	tagsJSON, _ := json.Marshal(nonNil(c.Tags))
	semJSON, _ := json.Marshal(nonNil(c.SemanticTags))

	_, err = tx.Exec(`
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			path                = excluded.path,
			checksum            = excluded.checksum,
			title               = excluded.title,
			content             = excluded.content,
			caption             = excluded.caption,
			comment             = excluded.comment,
			ocr_text            = excluded.ocr_text,
			tags                = excluded.tags,
			semantic_tags       = excluded.semantic_tags,
			created_at          = excluded.created_at,
			updated_at          = excluded.updated_at,
			type                = excluded.type,
			copy_ref            = excluded.copy_ref,
			copied_at           = excluded.copied_at,
			original_created_at = excluded.original_created_at
	`, c.ID, c.Path, c.Checksum, c.Title, c.Content, c.Caption, c.Comment, c.OCRText,
		string(tagsJSON), string(semJSON), c.CreatedAt, c.UpdatedAt, c.Type,
		c.CopyRef, c.CopiedAt, c.OriginalCreatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert card: %w", err)
	}

	return tx.Commit()
}

// DeleteCard removes a card by id. Group memberships are kept.
func (db *DB) DeleteCard(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("index: delete card: %w", err)
	}
	return nil
}

// DeleteCardByPath removes the card indexed at path and returns its id, or
// "" when nothing was indexed there.
func (db *DB) DeleteCardByPath(path string) (string, error) {
	var id string
	err := db.conn.QueryRow(`DELETE FROM cards WHERE path = ? RETURNING id`, path).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: delete card by path: %w", err)
	}
	return id, nil
}

// GetCard returns one card or apperr.ErrNotFound.
func (db *DB) GetCard(id string) (*models.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	c, err := scanCard(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get card: %w", err)
	}
	return c, nil
}

// AllCards returns every card ordered by creation date, then id. This is the
// natural order search results keep.
func (db *DB) AllCards() ([]models.Card, error) {
	rows, err := db.conn.Query(`SELECT ` + cardColumns + ` FROM cards ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("index: all cards: %w", err)
	}
	defer rows.Close()

	out := []models.Card{}
	for rows.Next() {
		c, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan card: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetChecksum returns the stored checksum for a path, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM cards WHERE path = ?`, path).Scan(&cs)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("index: get checksum: %w", err)
	}
	return cs, nil
}

// AllChecksums returns path -> checksum for every indexed card.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM cards`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCard(s scanner) (*models.Card, error) {
	var (
		c             models.Card
		tags, semTags string
	)
	err := s.Scan(&c.ID, &c.Path, &c.Checksum, &c.Title, &c.Content, &c.Caption, &c.Comment, &c.OCRText,
		&tags, &semTags, &c.CreatedAt, &c.UpdatedAt, &c.Type, &c.CopyRef, &c.CopiedAt, &c.OriginalCreatedAt)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tags), &c.Tags)
	_ = json.Unmarshal([]byte(semTags), &c.SemanticTags)
	c.Tags = nonNil(c.Tags)
	c.SemanticTags = nonNil(c.SemanticTags)
	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
