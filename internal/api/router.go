package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mindvault/internal/cardservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *cardservice.Service, authEnabled bool, token string, sseHandler http.Handler, logger *slog.Logger) chi.Router {
	h := NewHandler(svc, logger)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Cards CRUD.
	r.Get("/cards", h.ListCards)
	r.Post("/cards", h.CreateCard)
	r.Get("/cards/{id}", h.GetCard)
	r.Put("/cards/{id}", h.UpdateCard)
	r.Delete("/cards/{id}", h.DeleteCard)

	// Search.
	r.Get("/search", h.Search)
	r.Get("/search/outside", h.SearchOutside)
	r.Get("/query/fields", h.QueryFields)
	r.Get("/query/explain", h.QueryExplain)

	// Groups.
	r.Get("/groups", h.ListGroups)
	r.Post("/groups", h.CreateGroup)
	r.Get("/groups/{id}", h.GetGroup)
	r.Patch("/groups/{id}", h.RenameGroup)
	r.Delete("/groups/{id}", h.DeleteGroup)
	r.Post("/groups/{id}/cards", h.AddGroupCards)
	r.Delete("/groups/{id}/cards", h.RemoveGroupCards)
	r.Post("/groups/{id}/match", h.AddMatching)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
