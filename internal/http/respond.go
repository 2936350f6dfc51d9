package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/auth"
	"github.com/tuanvumaihuynh/retail-pos/internal/http/apierr"
	"github.com/tuanvumaihuynh/retail-pos/pkg/validator"
)

// responder bundles the decode/encode plumbing shared by all handlers.
type responder struct {
	logger    *slog.Logger
	validator validator.Validator
}

// decode reads the JSON body into v and validates it.
func (rp *responder) decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.ValidationErr.WrapParent(fmt.Errorf("decode request body: %w", err))
	}

	if err := rp.validator.Validate(v); err != nil {
		return apperr.ValidationErr.WrapParent(err)
	}

	return nil
}

func (rp *responder) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		rp.logger.ErrorContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (rp *responder) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	rp.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	rp.writeJSON(w, r, res.StatusCode, res)
}

// principal returns the authenticated caller. The auth middleware
// guarantees it is present on guarded routes.
func principal(r *http.Request) auth.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

func uuidParam(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.ValidationErr.WrapParent(fmt.Errorf("parse %s: %w", name, err))
	}
	return id, nil
}
