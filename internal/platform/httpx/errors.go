package httpx

import (
	"errors"
	"net/http"
)

// Machine-readable error codes surfaced to API clients.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
)

// Sentinel errors for the domain layer.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate entry")
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrBadRequest   = errors.New("bad request")
)

// RespondError maps domain errors to the API error envelope.
func RespondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		Error(w, http.StatusNotFound, CodeNotFound, err.Error())
	case errors.Is(err, ErrDuplicate):
		Error(w, http.StatusConflict, CodeConflict, err.Error())
	case errors.Is(err, ErrValidation):
		Error(w, http.StatusUnprocessableEntity, CodeValidation, err.Error())
	case errors.Is(err, ErrForbidden):
		Error(w, http.StatusForbidden, CodeForbidden, err.Error())
	case errors.Is(err, ErrUnauthorized):
		Error(w, http.StatusUnauthorized, CodeUnauthorized, err.Error())
	case errors.Is(err, ErrBadRequest):
		Error(w, http.StatusBadRequest, CodeBadRequest, err.Error())
	default:
		Error(w, http.StatusInternalServerError, CodeInternal, "internal error")
	}
}
