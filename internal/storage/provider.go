// Package storage keeps card files in the vault directory.
package storage

import "github.com/starford/mindvault/internal/models"

// Provider is the card vault. Paths are slash-separated and relative to the
// vault root.
type Provider interface {
	// List returns path and checksum of every card file in the vault, in
	// lexical path order. Hidden directories, the trash included, are skipped.
	List() ([]models.CardMetadata, error)
	// Read returns the raw bytes of the card file at path.
	Read(path string) ([]byte, error)
	// Write atomically replaces the card file at path.
	Write(path string, content []byte) error
	// Trash moves the card file at path into the vault trash and returns
	// its new path.
	Trash(path string) (string, error)
	// Root returns the absolute vault directory.
	Root() string
}
