// Package models defines the domain types for Mindvault.
package models

// Card types.
const (
	CardTypeText   = "text"
	CardTypeImage  = "image"
	CardTypeZotero = "zotero"
)

// CardTypes lists every accepted card type.
var CardTypes = []string{CardTypeText, CardTypeImage, CardTypeZotero}

// Card is one record of the workspace, parsed from a Markdown file in the vault.
//
// Date fields are kept as the raw date-like strings found in the file. They may
// be empty or unparseable; consumers must not assume a layout.
type Card struct {
	ID                string   `json:"id"`
	Path              string   `json:"path"`
	Title             string   `json:"title,omitempty"`
	Content           string   `json:"content"`
	Caption           string   `json:"caption,omitempty"`
	Comment           string   `json:"comment,omitempty"`
	OCRText           string   `json:"ocr_text,omitempty"`
	Tags              []string `json:"tags"`
	SemanticTags      []string `json:"semantic_tags,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at,omitempty"`
	Type              string   `json:"type"`
	CopyRef           string   `json:"copy_ref,omitempty"`
	CopiedAt          string   `json:"copied_at,omitempty"`
	OriginalCreatedAt string   `json:"original_created_at,omitempty"`
	Checksum          string   `json:"checksum"`
}

// CardMetadata is a lightweight representation returned by vault listings.
type CardMetadata struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Group is a named subset of cards (a working session).
type Group struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	CardIDs []string `json:"card_ids"`
}

// Contains reports whether the card with the given ID belongs to the group.
func (g *Group) Contains(id string) bool {
	for _, c := range g.CardIDs {
		if c == id {
			return true
		}
	}
	return false
}
