// Package apperr holds the error taxonomy shared by every service.
package apperr

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrInvalidEnumValue    = errors.New("invalid enum value")
	ErrMalformedInput      = errors.New("malformed input")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrUnverifiedReference = errors.New("unverified reference")
	ErrReferenced          = errors.New("still referenced")
)

// FromDB translates driver level errors into the taxonomy.
func FromDB(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// HTTPStatus maps err to the response status used by the REST surface.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock), errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrReferenced),
		errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidEnumValue), errors.Is(err, ErrMalformedInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnverifiedReference):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
