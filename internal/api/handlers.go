package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mindvault/internal/cardservice"
	"github.com/starford/mindvault/internal/checksum"
	"github.com/starford/mindvault/internal/logging"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *cardservice.Service
	logger *slog.Logger
}

// NewHandler creates a new Handler. A nil logger discards.
func NewHandler(svc *cardservice.Service, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logging.Component(logger, "api")}
}

// ListCards handles GET /api/cards.
//
//	@Summary		List every card in natural order
//	@Tags			cards
//	@Produce		json
//	@Success		200	{object}	CardListResponse
//	@Security		BearerAuth
//	@Router			/cards [get]
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	cards, err := h.svc.ListCards(r.Context())
	if err != nil {
		h.writeError(w, "list cards", err)
		return
	}
	writeJSON(w, http.StatusOK, CardListResponse{Cards: cards, Total: len(cards)})
}

// GetCard handles GET /api/cards/{id}.
//
//	@Summary		Get a single card
//	@Tags			cards
//	@Produce		json
//	@Param			id	path		string	true	"Card id"
//	@Success		200	{object}	models.Card
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [get]
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.GetCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "get card", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusOK, card)
}

// CreateCard handles POST /api/cards.
//
//	@Summary		Create a card
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CardRequest	true	"Card to create"
//	@Success		201		{object}	models.Card
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards [post]
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	card, err := h.svc.CreateCard(r.Context(), req)
	if err != nil {
		h.writeError(w, "create card", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusCreated, card)
}

// UpdateCard handles PUT /api/cards/{id}.
//
//	@Summary		Update a card with optimistic concurrency
//	@Tags			cards
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string		true	"Card id"
//	@Param			If-Match	header		string		false	"Checksum of the version being replaced"
//	@Param			body		body		CardRequest	true	"Card attributes"
//	@Success		200			{object}	models.Card
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [put]
func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	var req CardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	card, err := h.svc.UpdateCard(r.Context(), chi.URLParam(r, "id"), req, r.Header.Get("If-Match"))
	if err != nil {
		h.writeError(w, "update card", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(card.Checksum))
	writeJSON(w, http.StatusOK, card)
}

// DeleteCard handles DELETE /api/cards/{id}.
//
//	@Summary		Delete a card
//	@Tags			cards
//	@Param			id	path	string	true	"Card id"
//	@Success		204	"Card deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/cards/{id} [delete]
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCard(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "delete card", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
