package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/libris-project/libris-api/internal/api"
	"github.com/libris-project/libris-api/internal/api/middleware"
	"github.com/libris-project/libris-api/internal/api/shared"
)

// setupRouter builds the route table. Every mutating or parameterized route
// composes its validation middleware ahead of authentication, so malformed
// requests are rejected before any token work happens.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewTraceMiddleware(app.logger))

	v := shared.NewValidator()
	authn := middleware.NewAuthMiddleware(app.jwtService, app.userStore).Authenticate

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/books", func(r chi.Router) {
			r.With(middleware.ValidateQuery[api.ListBooksQuery](v)).
				Get("/", app.bookHandler.List)
			r.With(middleware.ValidateQuery[api.PageQuery](v)).
				Get("/available", app.bookHandler.ListAvailable)
			r.With(middleware.ValidateQuery[api.PageQuery](v)).
				Get("/genre/{genre}", app.bookHandler.ListByGenre)
			r.Get("/{id}", app.bookHandler.Get)

			r.With(middleware.ValidateBody[api.CreateBookRequest](v), authn).
				Post("/", app.bookHandler.Create)
			r.With(middleware.ValidateBody[api.UpdateBookRequest](v), authn).
				Put("/{id}", app.bookHandler.Update)
			r.With(authn).Delete("/{id}", app.bookHandler.Delete)
		})

		r.Route("/authors", func(r chi.Router) {
			r.With(middleware.ValidateQuery[api.ListAuthorsQuery](v)).
				Get("/", app.authorHandler.List)
			r.With(middleware.ValidateQuery[api.PageQuery](v)).
				Get("/active", app.authorHandler.ListActive)
			r.With(middleware.ValidateQuery[api.PageQuery](v)).
				Get("/nationality/{nationality}", app.authorHandler.ListByNationality)
			r.Get("/{id}", app.authorHandler.Get)

			r.With(middleware.ValidateBody[api.CreateAuthorRequest](v), authn).
				Post("/", app.authorHandler.Create)
			r.With(middleware.ValidateBody[api.UpdateAuthorRequest](v), authn).
				Put("/{id}", app.authorHandler.Update)
			r.With(authn).Delete("/{id}", app.authorHandler.Delete)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(middleware.ValidateBody[api.RegisterRequest](v)).
				Post("/register", app.authHandler.Register)
			r.With(middleware.ValidateBody[api.LoginRequest](v)).
				Post("/login", app.authHandler.Login)
			r.Post("/logout", app.authHandler.Logout)

			r.Get("/google", app.authHandler.GoogleRedirect)
			r.Get("/google/callback", app.authHandler.GoogleCallback)

			r.With(authn).Get("/me", app.authHandler.GetProfile)
			r.With(middleware.ValidateBody[api.UpdateProfileRequest](v), authn).
				Put("/me", app.authHandler.UpdateProfile)
			r.With(middleware.ValidateBody[api.ChangePasswordRequest](v), authn).
				Put("/change-password", app.authHandler.ChangePassword)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		shared.Respond(w, r, http.StatusOK, shared.Envelope{
			Message: "OK",
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		shared.Respond(w, r, http.StatusOK, shared.Envelope{
			Message: "Libris API",
			Data: map[string]string{
				"books":   "/api/v1/books",
				"authors": "/api/v1/authors",
				"auth":    "/api/v1/auth",
				"health":  "/health",
			},
		})
	})

	return r
}
