package index

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/starford/mindvault/internal/apperr"
	"github.com/starford/mindvault/internal/models"
)

// CreateGroup inserts a group and its initial members.
func (db *DB) CreateGroup(g *models.Group) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(`INSERT INTO card_groups (id, name) VALUES (?, ?)`, g.ID, g.Name); err != nil {
		return fmt.Errorf("index: create group: %w", err)
	}
	if err := addMembers(tx, g.ID, g.CardIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// GetGroup returns a group with its members in insertion order, or
// apperr.ErrNotFound.
func (db *DB) GetGroup(id string) (*models.Group, error) {
	g := models.Group{ID: id}
	err := db.conn.QueryRow(`SELECT name FROM card_groups WHERE id = ?`, id).Scan(&g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get group: %w", err)
	}

	g.CardIDs, err = db.members(id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListGroups returns every group ordered by name.
func (db *DB) ListGroups() ([]models.Group, error) {
	rows, err := db.conn.Query(`SELECT id, name FROM card_groups ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("index: list groups: %w", err)
	}
	var out []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, g)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if out[i].CardIDs, err = db.members(out[i].ID); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []models.Group{}
	}
	return out, nil
}

// RenameGroup changes a group's display name.
func (db *DB) RenameGroup(id, name string) error {
	res, err := db.conn.Exec(`UPDATE card_groups SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("index: rename group: %w", err)
	}
	return requireRow(res)
}

// DeleteGroup removes a group and its memberships.
func (db *DB) DeleteGroup(id string) error {
	res, err := db.conn.Exec(`DELETE FROM card_groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("index: delete group: %w", err)
	}
	return requireRow(res)
}

// AddToGroup appends cards to a group. Cards already in it keep their place.
func (db *DB) AddToGroup(id string, cardIDs []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRow(`SELECT count(*) FROM card_groups WHERE id = ?`, id).Scan(&exists); err != nil {
		return fmt.Errorf("index: check group: %w", err)
	}
	if exists == 0 {
		return apperr.ErrNotFound
	}
	if err := addMembers(tx, id, cardIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveFromGroup drops cards from a group. Unknown ids are ignored.
func (db *DB) RemoveFromGroup(id string, cardIDs []string) error {
	if _, err := db.GetGroup(id); err != nil {
		return err
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.Prepare(`DELETE FROM group_members WHERE group_id = ? AND card_id = ?`)
	if err != nil {
		return fmt.Errorf("index: prepare member delete: %w", err)
	}
	defer stmt.Close()
	for _, cid := range cardIDs {
		if _, err := stmt.Exec(id, cid); err != nil {
			return fmt.Errorf("index: remove member: %w", err)
		}
	}
	return tx.Commit()
}

// RemoveFromAllGroups drops a card from every group it belongs to.
func (db *DB) RemoveFromAllGroups(cardID string) error {
	if _, err := db.conn.Exec(`DELETE FROM group_members WHERE card_id = ?`, cardID); err != nil {
		return fmt.Errorf("index: remove memberships: %w", err)
	}
	return nil
}

func (db *DB) members(groupID string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT card_id FROM group_members WHERE group_id = ? ORDER BY position`, groupID)
	if err != nil {
		return nil, fmt.Errorf("index: group members: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func addMembers(tx *sql.Tx, groupID string, cardIDs []string) error {
	if len(cardIDs) == 0 {
		return nil
	}
	var next int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(position), -1) + 1 FROM group_members WHERE group_id = ?`, groupID).Scan(&next); err != nil {
		return fmt.Errorf("index: next position: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO group_members (group_id, card_id, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare member insert: %w", err)
	}
	defer stmt.Close()

	for _, cid := range cardIDs {
		res, err := stmt.Exec(groupID, cid, next)
		if err != nil {
			return fmt.Errorf("index: insert member: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			next++
		}
	}
	return nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("index: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
