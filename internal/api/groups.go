package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ListGroups handles GET /api/groups.
//
//	@Summary		List groups
//	@Tags			groups
//	@Produce		json
//	@Success		200	{object}	GroupListResponse
//	@Security		BearerAuth
//	@Router			/groups [get]
func (h *Handler) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		h.writeError(w, "list groups", err)
		return
	}
	writeJSON(w, http.StatusOK, GroupListResponse{Groups: groups})
}

// CreateGroup handles POST /api/groups.
//
//	@Summary		Create a group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateGroupRequest	true	"Group to create"
//	@Success		201		{object}	models.Group
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups [post]
func (h *Handler) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req CreateGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.CreateGroup(r.Context(), req.Name, req.CardIDs)
	if err != nil {
		h.writeError(w, "create group", err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// GetGroup handles GET /api/groups/{id}.
//
//	@Summary		Get a group
//	@Tags			groups
//	@Produce		json
//	@Param			id	path		string	true	"Group id"
//	@Success		200	{object}	models.Group
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id} [get]
func (h *Handler) GetGroup(w http.ResponseWriter, r *http.Request) {
	g, err := h.svc.GetGroup(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, "get group", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// RenameGroup handles PATCH /api/groups/{id}.
//
//	@Summary		Rename a group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Group id"
//	@Param			body	body		RenameGroupRequest	true	"New name"
//	@Success		200		{object}	models.Group
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id} [patch]
func (h *Handler) RenameGroup(w http.ResponseWriter, r *http.Request) {
	var req RenameGroupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.RenameGroup(r.Context(), chi.URLParam(r, "id"), req.Name)
	if err != nil {
		h.writeError(w, "rename group", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteGroup handles DELETE /api/groups/{id}.
//
//	@Summary		Delete a group
//	@Tags			groups
//	@Param			id	path	string	true	"Group id"
//	@Success		204	"Group deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id} [delete]
func (h *Handler) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGroup(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, "delete group", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddGroupCards handles POST /api/groups/{id}/cards.
//
//	@Summary		Add cards to a group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Group id"
//	@Param			body	body		GroupCardsRequest	true	"Card ids"
//	@Success		200		{object}	models.Group
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id}/cards [post]
func (h *Handler) AddGroupCards(w http.ResponseWriter, r *http.Request) {
	var req GroupCardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.AddCards(r.Context(), chi.URLParam(r, "id"), req.IDs)
	if err != nil {
		h.writeError(w, "add group cards", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// RemoveGroupCards handles DELETE /api/groups/{id}/cards.
//
//	@Summary		Remove cards from a group
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Group id"
//	@Param			body	body		GroupCardsRequest	true	"Card ids"
//	@Success		200		{object}	models.Group
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id}/cards [delete]
func (h *Handler) RemoveGroupCards(w http.ResponseWriter, r *http.Request) {
	var req GroupCardsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	g, err := h.svc.RemoveCards(r.Context(), chi.URLParam(r, "id"), req.IDs)
	if err != nil {
		h.writeError(w, "remove group cards", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// AddMatching handles POST /api/groups/{id}/match.
//
//	@Summary		Add every outside card matching a query
//	@Tags			groups
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Group id"
//	@Param			body	body		AddMatchingRequest	true	"Card query"
//	@Success		200		{object}	AddMatchingResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/groups/{id}/match [post]
func (h *Handler) AddMatching(w http.ResponseWriter, r *http.Request) {
	var req AddMatchingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	added, err := h.svc.AddMatching(r.Context(), chi.URLParam(r, "id"), req.Query)
	if err != nil {
		h.writeError(w, "add matching", err)
		return
	}
	writeJSON(w, http.StatusOK, AddMatchingResponse{Added: added, Count: len(added)})
}
