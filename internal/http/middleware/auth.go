package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/auth"
	"github.com/tuanvumaihuynh/retail-pos/internal/http/apierr"
	"github.com/tuanvumaihuynh/retail-pos/internal/model"
)

// Authenticate validates the bearer token and puts the principal on the
// request context.
func Authenticate(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, apierr.New(apperr.UnauthorizedErr))
				return
			}

			principal, err := jwtManager.ValidateAccessToken(token)
			if err != nil {
				writeAuthError(w, apierr.New(apperr.UnauthorizedErr.WrapParent(err)))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.NewContext(r.Context(), principal)))
		})
	}
}

// RequireRole rejects authenticated callers whose role is not listed.
// It must run after Authenticate.
func RequireRole(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := auth.PrincipalFromContext(r.Context())
			if !ok {
				writeAuthError(w, apierr.New(apperr.UnauthorizedErr))
				return
			}

			for _, role := range roles {
				if principal.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeAuthError(w, apierr.New(apperr.ForbiddenErr))
		})
	}
}

func writeAuthError(w http.ResponseWriter, res apierr.ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.StatusCode)
	//nolint:errcheck
	json.NewEncoder(w).Encode(res)
}
