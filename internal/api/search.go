package api

import (
	"net/http"

	"github.com/starford/mindvault/internal/cardquery"
	"github.com/starford/mindvault/internal/search"
)

// Search handles GET /api/search.
//
//	@Summary		Workspace search over the visible cards
//	@Description	The visible set is every card, narrowed to the active group and the tag filter. Matches keep natural order.
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Card query"
//	@Param			group	query		string	false	"Active group id"
//	@Param			include	query		string	false	"Comma separated tags to include"
//	@Param			exclude	query		string	false	"Comma separated tags to exclude"
//	@Success		200		{object}	SearchResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tags := search.TagFilter{
		Include: search.ParseTagList(q.Get("include")),
		Exclude: search.ParseTagList(q.Get("exclude")),
	}
	res, err := h.svc.Search(r.Context(), q.Get("q"), q.Get("group"), tags)
	if err != nil {
		h.writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// SearchOutside handles GET /api/search/outside.
//
//	@Summary		Find cards outside a group
//	@Description	Without a group the result is always empty.
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	false	"Card query"
//	@Param			group	query		string	false	"Active group id"
//	@Success		200		{object}	SearchResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search/outside [get]
func (h *Handler) SearchOutside(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.SearchOutside(r.Context(), q.Get("q"), q.Get("group"))
	if err != nil {
		h.writeError(w, "search outside", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// QueryFields handles GET /api/query/fields.
//
//	@Summary		Field alias table
//	@Tags			search
//	@Produce		json
//	@Success		200	{object}	QueryFieldsResponse
//	@Security		BearerAuth
//	@Router			/query/fields [get]
func (h *Handler) QueryFields(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, QueryFieldsResponse{Aliases: cardquery.Aliases()})
}

// QueryExplain handles GET /api/query/explain.
//
//	@Summary		Show the postfix program a query compiles to
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Card query"
//	@Success		200	{object}	QueryExplainResponse
//	@Security		BearerAuth
//	@Router			/query/explain [get]
func (h *Handler) QueryExplain(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")
	q := cardquery.Compile(raw)
	writeJSON(w, http.StatusOK, QueryExplainResponse{Query: raw, Postfix: q.String(), Empty: q.Empty()})
}
