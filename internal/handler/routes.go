package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkowalski/notekeeper/internal/service"
)

// NewRouter wires all HTTP routes. loginLimiter may be nil to disable
// login throttling.
func NewRouter(auth *service.AuthService, notes *service.NoteService, loginLimiter *service.TokenBucket) http.Handler {
	authHandler := NewAuthHandler(auth, loginLimiter)
	noteHandler := NewNoteHandler(notes)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", HandleHealthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users/register", authHandler.HandleRegister)
		r.Post("/users/login/access-token", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(auth))
			r.Get("/users/me", authHandler.HandleMe)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", noteHandler.HandleList)
				r.Post("/", noteHandler.HandleCreate)
				r.Get("/{id}", noteHandler.HandleGet)
				r.Put("/{id}", noteHandler.HandleUpdate)
				r.Delete("/{id}", noteHandler.HandleDelete)
			})
		})
	})

	return r
}
