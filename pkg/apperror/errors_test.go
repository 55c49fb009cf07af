package apperror

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := BadRequest("amount must be positive")
	assert.Equal(t, "[BAD_REQUEST_ERROR] amount must be positive", e.Error())
	assert.Equal(t, http.StatusBadRequest, e.HTTPStatus)
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	e := Internal(inner)
	assert.Contains(t, e.Error(), "INTERNAL_ERROR")
	assert.Contains(t, e.Error(), "connection refused")
	assert.Equal(t, http.StatusInternalServerError, e.HTTPStatus)
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	e := Internal(inner)
	assert.True(t, errors.Is(e, inner))
}

func TestNotFound_NeverForbidden(t *testing.T) {
	e := NotFound("order")
	assert.Equal(t, http.StatusNotFound, e.HTTPStatus)
	assert.Equal(t, "order not found", e.Description)
}

func TestUnauthorized(t *testing.T) {
	e := Unauthorized()
	assert.Equal(t, CodeUnauthorized, e.Code)
	assert.Equal(t, http.StatusUnauthorized, e.HTTPStatus)
}
