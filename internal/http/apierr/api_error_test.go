package apierr_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/retail-pos/internal/apperr"
	"github.com/tuanvumaihuynh/retail-pos/internal/http/apierr"
	"github.com/tuanvumaihuynh/retail-pos/pkg/validator"
	"github.com/tuanvumaihuynh/retail-pos/pkg/zerror"
)

func TestNew(t *testing.T) {
	t.Run("Should map zerror status and code", func(t *testing.T) {
		res := apierr.New(apperr.ProductNotFoundErr)

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, apperr.ProductNotFoundCode, res.Code)
		assert.Equal(t, "Product not found", res.Message)
		assert.False(t, res.Success)
	})

	t.Run("Should extract field details from wrapped validation errors", func(t *testing.T) {
		v, err := validator.NewDefaultValidator()
		require.NoError(t, err)

		type payload struct {
			Email string `json:"email" validate:"required,email"`
		}
		err = v.Validate(payload{Email: "nope"})
		require.Error(t, err)

		res := apierr.New(apperr.ValidationErr.WrapParent(err))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, apperr.ValidationErrorCode, res.Code)
		require.Len(t, res.Details, 1)
		assert.Equal(t, "Email", res.Details[0].Field)
		assert.Equal(t, "must be a valid email address", res.Details[0].Message)
	})

	t.Run("Should fall back to internal server error", func(t *testing.T) {
		res := apierr.New(errors.New("boom"))

		assert.Equal(t, apierr.InternalServerErr, res)
	})
}

func TestZErrorStatusToHTTPStatus(t *testing.T) {
	tests := []struct {
		status zerror.Status
		want   int
	}{
		{zerror.StatusBadRequest, http.StatusBadRequest},
		{zerror.StatusValidationFailed, http.StatusBadRequest},
		{zerror.StatusUnauthorized, http.StatusUnauthorized},
		{zerror.StatusForbidden, http.StatusForbidden},
		{zerror.StatusNotFound, http.StatusNotFound},
		{zerror.StatusConflict, http.StatusConflict},
		{zerror.StatusInternalServerError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, apierr.ZErrorStatusToHTTPStatus(tc.status))
	}
}
