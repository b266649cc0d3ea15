// Package cardservice coordinates the vault, the index and the search
// facade. The REST API, the MCP server and the CLI all go through it.
package cardservice

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/mindvault/internal/apperr"
	"github.com/starford/mindvault/internal/checksum"
	"github.com/starford/mindvault/internal/index"
	"github.com/starford/mindvault/internal/logging"
	"github.com/starford/mindvault/internal/models"
	"github.com/starford/mindvault/internal/parser"
	"github.com/starford/mindvault/internal/search"
	"github.com/starford/mindvault/internal/storage"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishCardEvent(kind, id, path string)
	PublishGroupEvent(id string)
}

type nopPublisher struct{}

func (nopPublisher) PublishCardEvent(string, string, string) {}
func (nopPublisher) PublishGroupEvent(string)                {}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithPublisher sets where change events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.events = p
		}
	}
}

// WithClock overrides the time source used for created/updated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service is safe for concurrent use.
type Service struct {
	store    storage.Provider
	db       index.CardIndex
	searcher *search.Searcher
	events   Publisher
	logger   *slog.Logger
	now      func() time.Time
}

// New creates a card service.
func New(store storage.Provider, db index.CardIndex, searcher *search.Searcher, opts ...Option) *Service {
	s := &Service{
		store:    store,
		db:       db,
		searcher: searcher,
		events:   nopPublisher{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.searcher == nil {
		s.searcher = search.New(search.WithLogger(s.logger))
	}
	s.logger = logging.Component(s.logger, "cardservice")
	return s
}

// CardInput carries the writable card attributes.
type CardInput struct {
	Title        string   `json:"title"`
	Content      string   `json:"content"`
	Caption      string   `json:"caption"`
	Comment      string   `json:"comment"`
	OCRText      string   `json:"ocr_text"`
	Tags         []string `json:"tags"`
	SemanticTags []string `json:"semantic_tags"`
	Type         string   `json:"type"`
	CreatedAt    string   `json:"created_at"`
}

func (in CardInput) normalized() CardInput {
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if in.Type == "" {
		in.Type = models.CardTypeText
	}
	return in
}

// Validate implements validation.Validatable. Type is case-insensitive.
func (in CardInput) Validate() error {
	in = in.normalized()
	return validation.ValidateStruct(&in,
		validation.Field(&in.Type, validation.In(models.CardTypeText, models.CardTypeImage, models.CardTypeZotero)),
		validation.Field(&in.Tags, validation.Each(validation.Required, validation.Length(1, 128))),
	)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
}

// ListCards returns every card in natural order.
func (s *Service) ListCards(_ context.Context) ([]models.Card, error) {
	return s.db.AllCards()
}

// GetCard returns one card or apperr.ErrNotFound.
func (s *Service) GetCard(_ context.Context, id string) (*models.Card, error) {
	return s.db.GetCard(id)
}

// CreateCard writes a new card file with a generated id and indexes it.
func (s *Service) CreateCard(_ context.Context, in CardInput) (*models.Card, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	c := &models.Card{
		ID:        uuid.NewString(),
		CreatedAt: in.CreatedAt,
	}
	if c.CreatedAt == "" {
		c.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	applyInput(c, in)
	c.Path = parser.FileName(c.ID)

	if _, err := s.store.Read(c.Path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	saved, err := s.write(c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("card created", slog.String("id", saved.ID))
	s.events.PublishCardEvent(index.EventCreated, saved.ID, saved.Path)
	return saved, nil
}

// UpdateCard replaces the writable attributes of a card. ifMatch, when set,
// must name the current file checksum or apperr.ErrConflict is returned.
func (s *Service) UpdateCard(_ context.Context, id string, in CardInput, ifMatch string) (*models.Card, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}

	c, err := s.db.GetCard(id)
	if err != nil {
		return nil, err
	}
	current, err := s.store.Read(c.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if !checksum.Matches(ifMatch, current) {
		return nil, apperr.ErrConflict
	}

	if in.CreatedAt != "" {
		c.CreatedAt = in.CreatedAt
	}
	applyInput(c, in)
	c.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	saved, err := s.write(c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("card updated", slog.String("id", saved.ID))
	s.events.PublishCardEvent(index.EventUpdated, saved.ID, saved.Path)
	return saved, nil
}

// DeleteCard moves the card file to the vault trash and drops its index row
// and group memberships.
func (s *Service) DeleteCard(_ context.Context, id string) error {
	c, err := s.db.GetCard(id)
	if err != nil {
		return err
	}
	trashed, err := s.store.Trash(c.Path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := s.db.DeleteCard(id); err != nil {
		return err
	}
	if err := s.db.RemoveFromAllGroups(id); err != nil {
		return err
	}
	s.logger.Info("card deleted", slog.String("id", id), slog.String("trash", trashed))
	s.events.PublishCardEvent(index.EventDeleted, id, c.Path)
	return nil
}

func (s *Service) write(c *models.Card) (*models.Card, error) {
	data, err := parser.Render(c)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(c.Path, data); err != nil {
		return nil, err
	}
	return index.IndexFile(s.db, c.Path, data)
}

func applyInput(c *models.Card, in CardInput) {
	c.Title = in.Title
	c.Content = in.Content
	c.Caption = in.Caption
	c.Comment = in.Comment
	c.OCRText = in.OCRText
	c.Tags = in.Tags
	c.SemanticTags = in.SemanticTags
	c.Type = in.Type
}

// Search runs a workspace search. The visible set is every card, narrowed to
// groupID when set and then by tags. An unknown group is apperr.ErrNotFound.
func (s *Service) Search(ctx context.Context, query, groupID string, tags search.TagFilter) (search.Result, error) {
	all, err := s.db.AllCards()
	if err != nil {
		return search.Result{}, err
	}
	group, err := s.optionalGroup(ctx, groupID)
	if err != nil {
		return search.Result{}, err
	}
	visible := tags.Apply(search.InGroup(all, group))
	return s.searcher.Workspace(query, visible), nil
}

// SearchOutside finds the cards not yet in groupID that match query. An
// empty groupID means no active group and always yields an empty result.
func (s *Service) SearchOutside(ctx context.Context, query, groupID string) (search.Result, error) {
	group, err := s.optionalGroup(ctx, groupID)
	if err != nil {
		return search.Result{}, err
	}
	var all []models.Card
	if group != nil {
		if all, err = s.db.AllCards(); err != nil {
			return search.Result{}, err
		}
	}
	return s.searcher.OutsideGroup(query, all, group), nil
}

func (s *Service) optionalGroup(_ context.Context, id string) (*models.Group, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	return s.db.GetGroup(id)
}
