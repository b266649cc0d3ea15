package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/mindvault/internal/cardquery"
	"github.com/starford/mindvault/internal/cardservice"
	"github.com/starford/mindvault/internal/models"
	"github.com/starford/mindvault/internal/search"
)

// CardRequest is the request body for creating or updating a card.
type CardRequest = cardservice.CardInput

// CardListResponse wraps a card listing.
type CardListResponse struct {
	Cards []models.Card `json:"cards" validate:"required"`
	Total int           `json:"total" example:"42" validate:"required"`
}

// SearchResponse is the result of a workspace or outside-group search.
type SearchResponse = search.Result

// GroupListResponse wraps a group listing.
type GroupListResponse struct {
	Groups []models.Group `json:"groups" validate:"required"`
}

// CreateGroupRequest is the request body for creating a group.
type CreateGroupRequest struct {
	Name    string   `json:"name" example:"Thesis" validate:"required"`
	CardIDs []string `json:"card_ids"`
}

// Validate implements validation.Validatable.
func (r *CreateGroupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.CardIDs, validation.Each(validation.Required)),
	)
}

// RenameGroupRequest is the request body for renaming a group.
type RenameGroupRequest struct {
	Name string `json:"name" example:"Thesis v2" validate:"required"`
}

// Validate implements validation.Validatable.
func (r *RenameGroupRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
	)
}

// GroupCardsRequest lists card ids to add to or remove from a group.
type GroupCardsRequest struct {
	IDs []string `json:"ids" validate:"required"`
}

// Validate implements validation.Validatable.
func (r *GroupCardsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.IDs, validation.Required, validation.Each(validation.Required)),
	)
}

// AddMatchingRequest adds every outside card matching Query to a group.
type AddMatchingRequest struct {
	Query string `json:"query" example:"tag:thesis NOT draft" validate:"required"`
}

// Validate implements validation.Validatable.
func (r *AddMatchingRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Query, validation.Required),
	)
}

// AddMatchingResponse lists the ids added by AddMatchingRequest.
type AddMatchingResponse struct {
	Added []string `json:"added" validate:"required"`
	Count int      `json:"count" validate:"required"`
}

// QueryFieldsResponse is the alias table used for autocomplete hints.
type QueryFieldsResponse struct {
	Aliases []cardquery.Alias `json:"aliases" validate:"required"`
}

// QueryExplainResponse shows how a query compiles.
type QueryExplainResponse struct {
	Query   string `json:"query"`
	Postfix string `json:"postfix" example:"apple banana AND"`
	Empty   bool   `json:"empty"`
}
