package middleware

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
)

// ValidateBody returns middleware that decodes the JSON body into T,
// normalizes it, and validates it, stashing the accepted value in the
// request context. Any failure short-circuits with a 400 envelope before
// later pipeline stages (including authentication) run.
func ValidateBody[T any](v *validator.Validate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := new(T)
			if err := shared.DecodeJSON(r, req); err != nil {
				shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
				return
			}

			if n, ok := any(req).(shared.Normalizer); ok {
				n.Normalize()
			}

			if err := v.Struct(req); err != nil {
				shared.RespondWithFieldErrors(w, r, http.StatusBadRequest,
					"Validation failed", shared.TranslateValidationErrors(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(shared.WithValidated(r.Context(), req)))
		})
	}
}

// ValidateQuery returns middleware that populates T from the URL query
// parameters and validates it, stashing the accepted value in the request
// context. T must implement shared.QueryParser.
func ValidateQuery[T any](v *validator.Validate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			req := new(T)
			if p, ok := any(req).(shared.QueryParser); ok {
				if err := p.ParseQuery(r.URL.Query()); err != nil {
					var verr *domain.ValidationError
					if errors.As(err, &verr) {
						shared.RespondWithFieldErrors(w, r, http.StatusBadRequest,
							"Validation failed",
							[]shared.FieldError{{Field: verr.Field, Message: verr.Message}})
						return
					}
					shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid query parameters")
					return
				}
			}

			if err := v.Struct(req); err != nil {
				shared.RespondWithFieldErrors(w, r, http.StatusBadRequest,
					"Validation failed", shared.TranslateValidationErrors(err))
				return
			}

			next.ServeHTTP(w, r.WithContext(shared.WithValidated(r.Context(), req)))
		})
	}
}
