package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "chat-relay/internal/handler/chat"
	middlewarePkg "chat-relay/internal/middleware"
	"chat-relay/pkg/utils"
)

// NewRouter wires HTTP routes to the relay handler.
func NewRouter(chatH *chatHandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Route("/api", func(api chi.Router) {
		chatH.RegisterRoutes(api)
	})

	r.Get("/health", chatH.HandleHealth)

	// Keep error responses structured even off the routing table.
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.RespondError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}
