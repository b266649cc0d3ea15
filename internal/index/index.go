package index

import "github.com/starford/mindvault/internal/models"

// CardIndex defines the card and group operations backed by the index.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type CardIndex interface {
	UpsertCard(c *models.Card) error
	DeleteCard(id string) error
	DeleteCardByPath(path string) (string, error)
	GetCard(id string) (*models.Card, error)
	AllCards() ([]models.Card, error)
	GetChecksum(path string) (string, error)
	AllChecksums() (map[string]string, error)

	CreateGroup(g *models.Group) error
	GetGroup(id string) (*models.Group, error)
	ListGroups() ([]models.Group, error)
	RenameGroup(id, name string) error
	DeleteGroup(id string) error
	AddToGroup(id string, cardIDs []string) error
	RemoveFromGroup(id string, cardIDs []string) error
	RemoveFromAllGroups(cardID string) error

	Close() error
}

// Verify *DB satisfies CardIndex at compile time.
var _ CardIndex = (*DB)(nil)
