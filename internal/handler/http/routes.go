package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes builds the server's router. The sync group and /auth/me sit behind
// bearer auth; health and the two sign-in endpoints stay open.
func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(h.TraceIDMiddleware)
	router.Use(h.LoggingMiddleware)
	router.Use(h.GzipMiddleware)
	router.Use(h.BodyLimitMiddleware)

	router.Get("/health", h.Health)

	router.Group(func(r chi.Router) {
		r.Post("/auth/google", h.SignInGoogle)
		r.Post("/auth/internal", h.SignInInternal)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/auth/me", h.Me)

		r.Route("/sync", func(r chi.Router) {
			r.Post("/push", h.Push)
			r.Get("/pull", h.Pull)
			r.Get("/full", h.Full)
			r.Post("/resolve-conflict", h.ResolveConflict)
		})
	})

	return router
}
