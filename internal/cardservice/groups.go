package cardservice

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/starford/mindvault/internal/apperr"
	"github.com/starford/mindvault/internal/models"
)

const maxGroupName = 200

func validateGroupName(name string) error {
	if err := validation.Validate(name, validation.Required, validation.Length(1, maxGroupName)); err != nil {
		return invalid(err)
	}
	return nil
}

func validateIDs(ids []string) error {
	if err := validation.Validate(ids, validation.Required, validation.Each(validation.Required)); err != nil {
		return invalid(err)
	}
	return nil
}

// ListGroups returns every group ordered by name.
func (s *Service) ListGroups(_ context.Context) ([]models.Group, error) {
	return s.db.ListGroups()
}

// GetGroup returns one group or apperr.ErrNotFound.
func (s *Service) GetGroup(_ context.Context, id string) (*models.Group, error) {
	return s.db.GetGroup(id)
}

// CreateGroup creates a named group with optional initial members.
func (s *Service) CreateGroup(_ context.Context, name string, cardIDs []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if err := validateGroupName(name); err != nil {
		return nil, err
	}
	g := &models.Group{ID: uuid.NewString(), Name: name, CardIDs: cardIDs}
	if err := s.db.CreateGroup(g); err != nil {
		return nil, err
	}
	s.logger.Info("group created", slog.String("id", g.ID), slog.String("name", name))
	s.events.PublishGroupEvent(g.ID)
	return s.db.GetGroup(g.ID)
}

// RenameGroup changes a group's name.
func (s *Service) RenameGroup(_ context.Context, id, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if err := validateGroupName(name); err != nil {
		return nil, err
	}
	if err := s.db.RenameGroup(id, name); err != nil {
		return nil, err
	}
	s.events.PublishGroupEvent(id)
	return s.db.GetGroup(id)
}

// DeleteGroup removes a group. Its cards are untouched.
func (s *Service) DeleteGroup(_ context.Context, id string) error {
	if err := s.db.DeleteGroup(id); err != nil {
		return err
	}
	s.logger.Info("group deleted", slog.String("id", id))
	s.events.PublishGroupEvent(id)
	return nil
}

// AddCards appends cards to a group, typically the ids confirmed from an
// outside-group search. Unknown card ids are rejected.
func (s *Service) AddCards(_ context.Context, id string, cardIDs []string) (*models.Group, error) {
	if err := validateIDs(cardIDs); err != nil {
		return nil, err
	}
	for _, cid := range cardIDs {
		if _, err := s.db.GetCard(cid); err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				return nil, invalid(validation.NewError("unknown_card", "unknown card "+cid))
			}
			return nil, err
		}
	}
	if err := s.db.AddToGroup(id, cardIDs); err != nil {
		return nil, err
	}
	s.events.PublishGroupEvent(id)
	return s.db.GetGroup(id)
}

// AddMatching adds every card outside the group that matches query and
// returns the ids that were added.
func (s *Service) AddMatching(ctx context.Context, id, query string) ([]string, error) {
	res, err := s.SearchOutside(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if res.Count == 0 {
		return res.IDs, nil
	}
	if err := s.db.AddToGroup(id, res.IDs); err != nil {
		return nil, err
	}
	s.logger.Info("group filled from query", slog.String("id", id), slog.Int("added", res.Count))
	s.events.PublishGroupEvent(id)
	return res.IDs, nil
}

// RemoveCards drops cards from a group.
func (s *Service) RemoveCards(_ context.Context, id string, cardIDs []string) (*models.Group, error) {
	if err := validateIDs(cardIDs); err != nil {
		return nil, err
	}
	if err := s.db.RemoveFromGroup(id, cardIDs); err != nil {
		return nil, err
	}
	s.events.PublishGroupEvent(id)
	return s.db.GetGroup(id)
}
